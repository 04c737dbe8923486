// Package export decodes the base64 heatmap overlays embedded in a stored
// result and writes them to disk as JPEG files with preview thumbnails.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/veriscope/veriscope/internal/detection"
)

const thumbnailSize = 128

// Heatmaps writes every heatmap overlay of result into dir, named
// heatmap_<n>.jpg plus heatmap_<n>_thumb.jpg, and returns the written paths.
func Heatmaps(result *detection.Result, dir string) ([]string, error) {
	if len(result.Heatmaps) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var written []string
	for i, dataURL := range result.Heatmaps {
		img, err := decodeDataURL(dataURL)
		if err != nil {
			return written, fmt.Errorf("heatmap %d: %w", i+1, err)
		}

		path := filepath.Join(dir, fmt.Sprintf("heatmap_%d.jpg", i+1))
		if err := imaging.Save(img, path, imaging.JPEGQuality(90)); err != nil {
			return written, fmt.Errorf("heatmap %d: %w", i+1, err)
		}
		written = append(written, path)

		thumb := imaging.Thumbnail(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
		thumbPath := filepath.Join(dir, fmt.Sprintf("heatmap_%d_thumb.jpg", i+1))
		if err := imaging.Save(thumb, thumbPath, imaging.JPEGQuality(85)); err != nil {
			return written, fmt.Errorf("heatmap %d thumbnail: %w", i+1, err)
		}
		written = append(written, thumbPath)
	}
	return written, nil
}

// decodeDataURL decodes a data:image/...;base64,... URL into an image.
func decodeDataURL(dataURL string) (image.Image, error) {
	_, encoded, found := strings.Cut(dataURL, ";base64,")
	if !found {
		return nil, fmt.Errorf("not a base64 data URL")
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("undecodable image: %w", err)
	}
	return img, nil
}
