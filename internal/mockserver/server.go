// Package mockserver is a local stand-in for the detection service. It
// implements the upload/predict/health HTTP contract with fabricated but
// deterministic verdicts so the dashboard can be developed and demoed without
// the real inference backend.
package mockserver

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/veriscope/veriscope/internal/detection"
)

const (
	// The real service holds uploads in memory and clears the store when it
	// grows past this many entries.
	maxStoredFiles = 50

	// Number of frames sampled from a video input.
	videoFrames = 20

	// Heatmap overlays are produced for at most this many suspicious frames.
	topKFakeFrames = 3

	maxUploadBytes = 100 << 20
)

// A 1x1 JPEG used as the fabricated heatmap overlay payload.
const heatmapStub = "data:image/jpeg;base64,/9j/4AAQSkZJRgABAQEAAAAAAAD/2wBDAAgGBgcGBQgHBwcJCQgKDBQNDAsLDBkSEw8UHRofHh0aHBwgJC4nICIsIxwcKDcpLDAxNDQ0Hyc5PTgyPC4zNDL/wAALCAABAAEBAREA/8QAFAABAAAAAAAAAAAAAAAAAAAACf/EABQQAQAAAAAAAAAAAAAAAAAAAAD/2gAIAQEAAD8AVN//2Q=="

type storedFile struct {
	name        string
	contentType string
}

// Server fabricates detection results behind the service's HTTP contract.
type Server struct {
	router *mux.Router

	mu    sync.Mutex
	files map[string]storedFile
}

func NewServer() *Server {
	s := &Server{files: make(map[string]storedFile)}

	router := mux.NewRouter()
	router.HandleFunc("/api/upload", s.handleUpload).Methods("POST")
	router.HandleFunc("/api/predict", s.handlePredict).Methods("POST")
	router.HandleFunc("/api/health", s.handleHealth).Methods("GET")
	s.router = router

	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !allowedFile(header.Filename) {
		writeError(w, http.StatusBadRequest, "File type not allowed. Supported: png, jpg, jpeg, mp4, avi")
		return
	}

	id := uuid.New().String()

	s.mu.Lock()
	if len(s.files) >= maxStoredFiles {
		s.files = make(map[string]storedFile)
	}
	s.files[id] = storedFile{
		name:        header.Filename,
		contentType: r.FormValue("type"),
	}
	s.mu.Unlock()

	log.Debug("stored upload", "id", id, "name", header.Filename)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "File uploaded successfully to memory",
		"filename": id,
		"path":     "memory/" + id,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filename string `json:"filename"`
		Type     string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	stored, ok := s.files[req.Filename]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "File not found in memory")
		return
	}

	kind := detection.MediaKind(req.Type)
	if kind != detection.MediaVideo {
		kind = detection.MediaImage
	}
	writeJSON(w, http.StatusOK, fabricateResult(stored.name, kind))
}

// fabricateResult produces a deterministic pseudo-analysis seeded by the
// original file name, so repeated runs of the same file agree.
func fabricateResult(name string, kind detection.MediaKind) *detection.Result {
	seed := fnv.New64a()
	seed.Write([]byte(strings.ToLower(name)))
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	frames := 1
	if kind == detection.MediaVideo {
		frames = videoFrames
	}

	// Bias the whole clip fake or real, with per-frame jitter.
	bias := rng.Float64()
	probs := make([]float64, frames)
	predictions := make([]detection.FramePrediction, frames)
	for i := range probs {
		p := bias + rng.NormFloat64()*0.12
		p = math.Max(0.01, math.Min(0.99, p))
		probs[i] = p
		predictions[i] = detection.FramePrediction{ID: i + 1, Prob: round3(p)}
	}

	finalProb, verdict, confidence := aggregate(probs)

	// Heatmaps only exist for the most suspicious frames.
	var heatmaps []string
	sorted := append([]float64(nil), probs...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	for i := 0; i < len(sorted) && i < topKFakeFrames; i++ {
		if sorted[i] >= 0.5 {
			heatmaps = append(heatmaps, heatmapStub)
		}
	}

	log.Debug("fabricated result", "name", name, "prob", finalProb, "verdict", verdict)
	return &detection.Result{
		InputType:        kind,
		FinalPrediction:  verdict,
		Confidence:       round3(confidence),
		FramePredictions: predictions,
		Heatmaps:         heatmaps,
	}
}

// aggregate folds frame probabilities into a final verdict the way the real
// service does: average the top 30% most suspicious frames, so a short
// manipulated segment is not diluted by long real stretches.
func aggregate(probs []float64) (float64, detection.Verdict, float64) {
	sorted := append([]float64(nil), probs...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	topK := len(sorted) * 3 / 10
	if topK < 1 {
		topK = 1
	}
	var sum float64
	for _, p := range sorted[:topK] {
		sum += p
	}
	finalProb := sum / float64(topK)

	verdict := detection.VerdictReal
	confidence := 1 - finalProb
	if finalProb >= 0.5 {
		verdict = detection.VerdictFake
		confidence = finalProb
	}
	return finalProb, verdict, confidence * 100
}

func allowedFile(name string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "png", "jpg", "jpeg", "mp4", "avi":
		return true
	}
	return false
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// ListenAndServe runs the mock service on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Info("mock detection service listening", "addr", addr)
	if err := http.ListenAndServe(addr, s.router); err != nil {
		return fmt.Errorf("mock server: %w", err)
	}
	return nil
}
