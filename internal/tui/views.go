package tui

import (
	"fmt"
	"strings"

	"github.com/veriscope/veriscope/internal/analysis"
	"github.com/veriscope/veriscope/internal/detection"
)

// renderStatusCard shows the verdict and confidence for the current result.
func renderStatusCard(result *detection.Result, width int) string {
	verdict := realStyle.Render("✔ AUTHENTIC")
	if result.FinalPrediction == detection.VerdictFake {
		verdict = fakeStyle.Render("⚠ DEEPFAKE DETECTED")
	}

	var b strings.Builder
	b.WriteString(verdict)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Confidence %5.1f%%\n", result.Confidence))
	b.WriteString(renderConfidenceBar(result.Confidence, width-8))

	return cardStyle.Width(width).Render(b.String())
}

// renderHeatmapSummary summarizes the localization overlays of a result.
func renderHeatmapSummary(result *detection.Result) string {
	if len(result.Heatmaps) == 0 {
		return dimStyle.Render("No localization heatmaps available for this input.")
	}
	return fmt.Sprintf("%s %d heatmap overlay(s) captured · %s",
		accentStyle.Render("◉"),
		len(result.Heatmaps),
		dimStyle.Render("press e to export as JPEG"))
}

// renderResultPanel builds the right-hand metrics panel from the current
// display state.
func (m *Model) renderResultPanel(width, height int) string {
	var sections []string
	sections = append(sections, dimStyle.Render("REAL-TIME METRICS"))

	snap := m.orch.Snapshot()
	switch {
	case m.busy:
		sections = append(sections, fmt.Sprintf("%s %s", m.spinner.View(), phaseText(snap.Phase)))

	case snap.Result != nil:
		sections = append(sections, renderStatusCard(snap.Result, width-4))
		sections = append(sections, renderHeatmapSummary(snap.Result))
		if snap.Result.InputType == detection.MediaVideo {
			if chart := renderChart(snap.Result.FramePredictions, width-6); chart != "" {
				sections = append(sections, chart)
			}
		}

	case snap.Phase == analysis.PhaseFailed && snap.Err != "":
		sections = append(sections, errorStyle.Render("✘ "+snap.Err))
		sections = append(sections, dimStyle.Render("Press u to try another file."))

	default:
		sections = append(sections, dimStyle.Render("Upload an image or video to begin deepfake analysis."))
	}

	return panelStyle.Width(width).Height(height).Render(strings.Join(sections, "\n\n"))
}

func phaseText(phase analysis.Phase) string {
	switch phase {
	case analysis.PhaseUploading:
		return "Uploading media..."
	case analysis.PhasePredicting:
		return "Processing frames and running inference..."
	default:
		return "Working..."
	}
}
