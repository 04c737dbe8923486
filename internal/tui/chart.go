package tui

import (
	"fmt"
	"strings"

	"github.com/veriscope/veriscope/internal/detection"
)

var sparkGlyphs = []rune("▁▂▃▄▅▆▇█")

// renderSparkline draws the per-frame fake probabilities as a one-line
// sparkline, red for frames at or above the 0.5 threshold.
func renderSparkline(preds []detection.FramePrediction, width int) string {
	if len(preds) == 0 {
		return ""
	}

	shown := preds
	if width > 0 && len(shown) > width {
		shown = shown[:width]
	}

	var b strings.Builder
	for _, p := range shown {
		level := int(p.Prob * float64(len(sparkGlyphs)))
		if level >= len(sparkGlyphs) {
			level = len(sparkGlyphs) - 1
		}
		glyph := string(sparkGlyphs[level])
		if p.Prob >= 0.5 {
			b.WriteString(fakeFrameStyle.Render(glyph))
		} else {
			b.WriteString(realFrameStyle.Render(glyph))
		}
	}
	return b.String()
}

// renderChart builds the frame probability section for video results.
func renderChart(preds []detection.FramePrediction, width int) string {
	if len(preds) == 0 {
		return ""
	}

	minProb, maxProb := preds[0].Prob, preds[0].Prob
	for _, p := range preds {
		if p.Prob < minProb {
			minProb = p.Prob
		}
		if p.Prob > maxProb {
			maxProb = p.Prob
		}
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render("FRAME PROBABILITIES"))
	b.WriteString("\n")
	b.WriteString(renderSparkline(preds, width))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d frames · min %.2f · max %.2f · threshold 0.50",
		len(preds), minProb, maxProb)))
	return b.String()
}

// renderConfidenceBar draws confidence (0-100) as a fixed-width meter.
func renderConfidenceBar(confidence float64, width int) string {
	if width < 10 {
		width = 10
	}
	filled := int(confidence / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return barFillStyle.Render(strings.Repeat("█", filled)) +
		barEmptyStyle.Render(strings.Repeat("░", width-filled))
}
