package export

import (
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/vanderheijden86/jamgantt/pkg/chart"
	"github.com/vanderheijden86/jamgantt/pkg/model"
)

// sanitizeMermaidText prepares text for a Mermaid gantt task name. Colons
// and hashes end the name in gantt syntax.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		":", " ",
		"#", " ",
		";", ",",
		"\"", "'",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)

	result = strings.Join(strings.Fields(result), " ")

	// Truncate if too long (UTF-8 safe using runes)
	runes := []rune(result)
	if len(runes) > 40 {
		result = string(runes[:37]) + "..."
	}
	if result == "" {
		return "task"
	}
	return result
}

// escapeCell makes s safe inside a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}

// GenerateReport renders f as a markdown plan report: a summary, the band
// catalogue with task counts, the task table and a Mermaid gantt chart.
func GenerateReport(f chart.Frame, title string) string {
	var sb strings.Builder
	tasks := frameTasks(f)

	if title == "" {
		title = "Jamming plan"
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", time.Now().Format(time.RFC1123)))

	// Summary
	zoom := "all bands"
	if f.ZoomBand != nil {
		zoom = model.Bands()[*f.ZoomBand].Label()
	}
	last := f.LastApplied
	if last == "" {
		last = "-"
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Tasks** | %d |\n", f.TaskCount))
	sb.WriteString(fmt.Sprintf("| Updates | %d |\n", f.Applied))
	sb.WriteString(fmt.Sprintf("| Last update | %s |\n", escapeCell(last)))
	sb.WriteString(fmt.Sprintf("| Scale | %s |\n", f.Mode))
	sb.WriteString(fmt.Sprintf("| View | %s |\n", escapeCell(zoom)))
	if f.FeedDisconnected {
		sb.WriteString("| Feed | disconnected |\n")
	}
	sb.WriteString("\n")

	// Bands
	counts := make(map[model.Band]int, model.BandCount())
	for _, t := range tasks {
		counts[t.Band]++
	}
	sb.WriteString("## Bands\n\n")
	sb.WriteString("| # | Band | Range | Tasks |\n|---|------|-------|-------|\n")
	for i, b := range model.Bands() {
		lo, hi := b.Range()
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d |\n",
			i+1, escapeCell(b.Label()), freqRange(lo, hi), counts[b]))
	}
	sb.WriteString("\n")

	// Tasks
	sb.WriteString("## Tasks\n\n")
	if len(tasks) == 0 {
		sb.WriteString("*No tasks scheduled.*\n\n")
		return sb.String()
	}
	sb.WriteString("| Task | Band | Frequency | Time |\n|------|------|-----------|------|\n")
	for _, t := range tasks {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			escapeCell(t.Name), t.Band, freqRange(t.FreqStart, t.FreqEnd), timeRange(t.TimeStart, t.TimeEnd)))
	}
	sb.WriteString("\n")

	// Timeline (Mermaid)
	sb.WriteString("## Timeline\n\n")
	sb.WriteString("```mermaid\n")
	sb.WriteString(GenerateMermaidGantt(tasks, title))
	sb.WriteString("```\n")
	return sb.String()
}

// GenerateMermaidGantt lays tasks out on a millisecond axis, one section per
// band in catalogue order. Bands without tasks are omitted.
func GenerateMermaidGantt(tasks []model.Task, title string) string {
	var sb strings.Builder
	sb.WriteString("gantt\n")
	sb.WriteString(fmt.Sprintf("    title %s\n", sanitizeMermaidText(title)))
	sb.WriteString("    dateFormat x\n")
	sb.WriteString("    axisFormat %L ms\n")

	id := 0
	for _, b := range model.Bands() {
		var inBand []model.Task
		for _, t := range tasks {
			if t.Band == b {
				inBand = append(inBand, t)
			}
		}
		if len(inBand) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("    section %s\n", sanitizeMermaidText(b.Label())))
		for _, t := range inBand {
			sb.WriteString(fmt.Sprintf("    %s %s :t%d, %d, %d\n",
				sanitizeMermaidText(t.Name),
				sanitizeMermaidText(freqRange(t.FreqStart, t.FreqEnd)),
				id, int64(t.TimeStart), int64(t.TimeEnd)))
			id++
		}
	}
	return sb.String()
}

// SaveReport writes the markdown report of f to path.
func SaveReport(f chart.Frame, title, path string) error {
	if err := os.WriteFile(path, []byte(GenerateReport(f, title)), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func frameTasks(f chart.Frame) []model.Task {
	tasks := make([]model.Task, 0, len(f.Tasks))
	for _, s := range f.Tasks {
		tasks = append(tasks, s.Task)
	}
	return tasks
}

func freqRange(lo, hi float64) string {
	return fmt.Sprintf("%g-%g MHz", lo, hi)
}

func timeRange(lo, hi float64) string {
	return fmt.Sprintf("%g-%g ms", lo, hi)
}
