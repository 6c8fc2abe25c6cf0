package analysis

import (
	"fmt"
	"io"
	"strings"

	"cantrace/pkg/markdown"
)

// ReportFormat selects how a Summary is printed.
type ReportFormat string

const (
	ReportText     ReportFormat = "text"
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
)

// ParseReportFormat validates a report format name.
func ParseReportFormat(name string) (ReportFormat, error) {
	switch f := ReportFormat(name); f {
	case ReportText, ReportMarkdown, ReportHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown report format %q: expected text, markdown or html", name)
	}
}

// Write prints the summary in the given format.
func (s *Summary) Write(w io.Writer, format ReportFormat) error {
	var out string
	switch format {
	case ReportText:
		out = s.Text()
	case ReportMarkdown:
		out = s.Markdown()
	case ReportHTML:
		out = markdown.Document("CAN traffic", s.Markdown())
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	_, err := io.WriteString(w, out)
	return err
}

// Text renders a fixed width table.
func (s *Summary) Text() string {
	var b strings.Builder
	if s.Timed {
		fmt.Fprintf(&b, "%-10s %-7s %10s %10s %10s %10s\n", "ID", "Count", "Mean ms", "StdDev ms", "Min ms", "Max ms")
		b.WriteString(strings.Repeat("-", 62) + "\n")
		for _, id := range s.IDs {
			if id.Periods == 0 {
				fmt.Fprintf(&b, "%-10s %-7d %10s %10s %10s %10s\n", id.ID, id.Count, "-", "-", "-", "-")
				continue
			}
			fmt.Fprintf(&b, "%-10s %-7d %10.3f %10.3f %10.3f %10.3f\n",
				id.ID, id.Count, id.PeriodMean, id.PeriodStdDev, id.PeriodMin, id.PeriodMax)
		}
	} else {
		fmt.Fprintf(&b, "%-10s %s\n", "ID", "Count")
		b.WriteString(strings.Repeat("-", 20) + "\n")
		for _, id := range s.IDs {
			fmt.Fprintf(&b, "%-10s %d\n", id.ID, id.Count)
		}
	}
	fmt.Fprintf(&b, "\n%d frames, %d ids, %d of %d lines skipped\n", s.Frames, len(s.IDs), s.Skipped, s.Lines)
	return b.String()
}

// Markdown renders a markdown document with one table.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("# CAN traffic\n\n")
	fmt.Fprintf(&b, "%d frames, %d ids, %d of %d lines skipped.\n\n", s.Frames, len(s.IDs), s.Skipped, s.Lines)
	if s.Timed {
		b.WriteString("| ID | Count | Mean ms | StdDev ms | Min ms | Max ms |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, id := range s.IDs {
			if id.Periods == 0 {
				fmt.Fprintf(&b, "| %s | %d | - | - | - | - |\n", cell(id.ID), id.Count)
				continue
			}
			fmt.Fprintf(&b, "| %s | %d | %.3f | %.3f | %.3f | %.3f |\n",
				cell(id.ID), id.Count, id.PeriodMean, id.PeriodStdDev, id.PeriodMin, id.PeriodMax)
		}
	} else {
		b.WriteString("| ID | Count |\n")
		b.WriteString("|---|---:|\n")
		for _, id := range s.IDs {
			fmt.Fprintf(&b, "| %s | %d |\n", cell(id.ID), id.Count)
		}
	}
	return b.String()
}

// cell quotes an id for a markdown table. Ids of the candump dialect are
// copied from the input and may contain anything.
func cell(id string) string {
	return "`" + strings.NewReplacer("|", "\\|", "`", "'").Replace(id) + "`"
}
