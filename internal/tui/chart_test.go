package tui

import (
	"strings"
	"testing"

	"github.com/veriscope/veriscope/internal/detection"
)

func TestRenderSparkline(t *testing.T) {
	t.Run("empty input renders nothing", func(t *testing.T) {
		if got := renderSparkline(nil, 40); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("one glyph per frame", func(t *testing.T) {
		preds := []detection.FramePrediction{
			{ID: 1, Prob: 0.05},
			{ID: 2, Prob: 0.5},
			{ID: 3, Prob: 0.99},
		}
		got := renderSparkline(preds, 40)
		var glyphs int
		for _, r := range got {
			for _, s := range sparkGlyphs {
				if r == s {
					glyphs++
				}
			}
		}
		if glyphs != 3 {
			t.Errorf("expected 3 spark glyphs, found %d in %q", glyphs, got)
		}
	})

	t.Run("truncates to width", func(t *testing.T) {
		preds := make([]detection.FramePrediction, 100)
		for i := range preds {
			preds[i] = detection.FramePrediction{ID: i + 1, Prob: 0.3}
		}
		got := renderSparkline(preds, 10)
		var glyphs int
		for _, r := range got {
			if r == '▃' || r == '▂' {
				glyphs++
			}
		}
		if glyphs != 10 {
			t.Errorf("expected 10 glyphs after truncation, found %d", glyphs)
		}
	})
}

func TestRenderChart(t *testing.T) {
	preds := []detection.FramePrediction{
		{ID: 1, Prob: 0.12},
		{ID: 2, Prob: 0.87},
	}
	got := renderChart(preds, 40)
	if !strings.Contains(got, "2 frames") {
		t.Errorf("chart should mention frame count: %q", got)
	}
	if !strings.Contains(got, "min 0.12") || !strings.Contains(got, "max 0.87") {
		t.Errorf("chart should mention min/max: %q", got)
	}
}

func TestRenderConfidenceBar(t *testing.T) {
	full := renderConfidenceBar(100, 20)
	if strings.Contains(full, "░") {
		t.Error("full bar should have no empty cells")
	}
	empty := renderConfidenceBar(0, 20)
	if strings.Contains(empty, "█") {
		t.Error("empty bar should have no filled cells")
	}
}
