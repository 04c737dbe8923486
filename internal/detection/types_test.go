package detection

import "testing"

func TestKindForContentType(t *testing.T) {
	cases := []struct {
		contentType string
		want        MediaKind
	}{
		{"video/mp4", MediaVideo},
		{"video/x-msvideo", MediaVideo},
		{"image/png", MediaImage},
		{"image/jpeg", MediaImage},
		{"application/octet-stream", MediaImage},
		{"", MediaImage},
	}

	for _, c := range cases {
		if got := KindForContentType(c.contentType); got != c.want {
			t.Errorf("KindForContentType(%q) = %q, want %q", c.contentType, got, c.want)
		}
	}
}

func TestContentTypeForPath(t *testing.T) {
	if got := ContentTypeForPath("/tmp/clip.MP4"); got != "video/mp4" {
		t.Errorf("expected video/mp4, got %q", got)
	}
	if got := ContentTypeForPath("face.jpeg"); got != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", got)
	}
	if ContentTypeForPath("notes.txt") != "" {
		t.Error("expected unsupported extension to map to empty content type")
	}
}

func TestSupportedMedia(t *testing.T) {
	if !SupportedMedia("a/b/selfie.png") {
		t.Error("png should be supported")
	}
	if SupportedMedia("archive.zip") {
		t.Error("zip should not be supported")
	}
}
