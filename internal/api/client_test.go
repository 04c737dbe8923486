package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/veriscope/veriscope/internal/detection"
)

func TestUpload(t *testing.T) {
	t.Run("success sends file and derived type", func(t *testing.T) {
		var gotType string
		var gotFilename string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/api/upload", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(16<<20))
			gotType = r.FormValue("type")
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			gotFilename = header.Filename
			json.NewEncoder(w).Encode(UploadResponse{
				Message:  "File uploaded successfully to memory",
				Filename: "f8c3de3d-1fea-4d7c-a8b0-29f63c4c3454",
				Path:     "uploads/clip.mp4",
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL)
		resp, err := client.Upload(context.Background(), "clip.mp4", strings.NewReader("fake-bytes"), "video/mp4")
		require.NoError(t, err)
		require.Equal(t, "video", gotType)
		require.Equal(t, "clip.mp4", gotFilename)
		require.Equal(t, "f8c3de3d-1fea-4d7c-a8b0-29f63c4c3454", resp.Filename)
	})

	t.Run("image content type tagged as image", func(t *testing.T) {
		var gotType string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(16<<20))
			gotType = r.FormValue("type")
			json.NewEncoder(w).Encode(UploadResponse{Filename: "id"})
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Upload(context.Background(), "face.png", strings.NewReader("png"), "image/png")
		require.NoError(t, err)
		require.Equal(t, "image", gotType)
	})

	t.Run("service error body is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"File type not allowed"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Upload(context.Background(), "x.exe", strings.NewReader("x"), "application/octet-stream")
		var uploadErr *UploadError
		require.ErrorAs(t, err, &uploadErr)
		require.Equal(t, "File type not allowed", uploadErr.Message)
	})

	t.Run("unparseable error body degrades to generic message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("<html>boom</html>"))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Upload(context.Background(), "a.png", strings.NewReader("a"), "image/png")
		var uploadErr *UploadError
		require.ErrorAs(t, err, &uploadErr)
		require.Equal(t, "Upload failed", uploadErr.Message)
	})
}

func TestPredict(t *testing.T) {
	t.Run("success decodes result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/predict", r.URL.Path)
			var req struct {
				Filename string `json:"filename"`
				Type     string `json:"type"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "token-1", req.Filename)
			require.Equal(t, "video", req.Type)
			json.NewEncoder(w).Encode(detection.Result{
				InputType:       detection.MediaVideo,
				FinalPrediction: detection.VerdictFake,
				Confidence:      87.3,
				FramePredictions: []detection.FramePrediction{
					{ID: 1, Prob: 0.92},
				},
				Heatmaps: []string{"data:image/jpeg;base64,abc"},
			})
		}))
		defer srv.Close()

		result, err := NewClient(srv.URL).Predict(context.Background(), "token-1", detection.MediaVideo)
		require.NoError(t, err)
		require.Equal(t, detection.VerdictFake, result.FinalPrediction)
		require.InDelta(t, 87.3, result.Confidence, 0.001)
		require.Len(t, result.FramePredictions, 1)
	})

	t.Run("service error body is surfaced", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"unsupported format"}`))
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Predict(context.Background(), "token", detection.MediaImage)
		var predErr *PredictionError
		require.ErrorAs(t, err, &predErr)
		require.Equal(t, "unsupported format", predErr.Message)
	})

	t.Run("transport failure yields PredictionError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		_, err := NewClient(srv.URL).Predict(context.Background(), "token", detection.MediaImage)
		var predErr *PredictionError
		require.ErrorAs(t, err, &predErr)
		require.NotNil(t, errors.Unwrap(predErr))
	})
}

func TestCheckHealth(t *testing.T) {
	t.Run("true on 2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/health", r.URL.Path)
			w.Write([]byte(`{"status":"healthy"}`))
		}))
		defer srv.Close()

		require.True(t, NewClient(srv.URL).CheckHealth(context.Background()))
	})

	t.Run("false on 500", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		require.False(t, NewClient(srv.URL).CheckHealth(context.Background()))
	})

	t.Run("false when probe exceeds deadline", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer srv.Close()
		defer close(release)

		client := NewClient(srv.URL, WithHealthTimeout(50*time.Millisecond))
		start := time.Now()
		require.False(t, client.CheckHealth(context.Background()))
		require.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("false on connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		require.False(t, NewClient(srv.URL).CheckHealth(context.Background()))
	})
}
