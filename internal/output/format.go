// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"taskmgr/internal/due"
	"taskmgr/internal/progress"
	"taskmgr/internal/service"
	"taskmgr/internal/taskfilter"
)

const (
	// Separator is the separator line for sections.
	Separator = "------------"

	// BarWidth is the number of cells in a progress bar.
	BarWidth = 20
)

// Printer writes formatted output. Styling is applied only when w is a
// terminal that supports it.
type Printer struct {
	w io.Writer

	overdue  lipgloss.Style
	today    lipgloss.Style
	tomorrow lipgloss.Style
	done     lipgloss.Style
	bar      lipgloss.Style
	heading  lipgloss.Style
}

// New creates a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		overdue:  r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		today:    r.NewStyle().Foreground(lipgloss.Color("11")),
		tomorrow: r.NewStyle().Foreground(lipgloss.Color("14")),
		done:     r.NewStyle().Faint(true),
		bar:      r.NewStyle().Foreground(lipgloss.Color("10")),
		heading:  r.NewStyle().Bold(true),
	}
}

// Task formats a task line.
// Format: "{N:>4}  [x] {TITLE}" followed by "  ({due label})" for pending
// tasks that have a due date.
func (p *Printer) Task(num int, task service.Task, today time.Time) {
	title := normalizeTitle(task.Title)
	if task.Completed {
		fmt.Fprintf(p.w, "%4d  [x] %s\n", num, p.done.Render(title))
		return
	}
	line := fmt.Sprintf("%4d  [ ] %s", num, title)
	if task.DueDate != nil {
		d := task.DueDate.Time
		c := due.Classify(&d, today)
		line += "  (" + p.urgency(c) + ")"
	}
	fmt.Fprintln(p.w, line)
}

// Tasks formats a numbered, filtered task list.
func (p *Printer) Tasks(tasks []taskfilter.Numbered, today time.Time) {
	for _, n := range tasks {
		p.Task(n.Num, n.Task, today)
	}
}

// Header formats a section header.
func (p *Printer) Header(title string) {
	fmt.Fprintln(p.w, Separator)
	fmt.Fprintln(p.w, p.heading.Render(normalizeTitle(title)))
	fmt.Fprintln(p.w, Separator)
}

// Project formats a project line with its progress.
// Format: "{ID:>4}  {TITLE}  {BAR}"
func (p *Printer) Project(proj service.Project, pct int, snap service.Progress) {
	fmt.Fprintf(p.w, "%4d  %s  %s\n", proj.ID, normalizeTitle(proj.Title), p.Bar(pct, snap.CompletedTasks, snap.TotalTasks))
}

// ProjectDetail formats a project's title, description and progress.
func (p *Printer) ProjectDetail(proj service.Project, pct int, snap service.Progress) {
	p.Header(proj.Title)
	if d := strings.TrimSpace(proj.Description); d != "" {
		fmt.Fprintln(p.w, d)
	}
	fmt.Fprintf(p.w, "Progress  %s\n", p.Bar(pct, snap.CompletedTasks, snap.TotalTasks))
}

// Bar renders "[#####---------------]  25%  (1/4)".
func (p *Printer) Bar(pct, completed, total int) string {
	filled := pct * BarWidth / 100
	if filled < 0 {
		filled = 0
	}
	if filled > BarWidth {
		filled = BarWidth
	}
	bar := p.bar.Render(strings.Repeat("#", filled)) + strings.Repeat("-", BarWidth-filled)
	return fmt.Sprintf("[%s] %3d%%  (%d/%d)", bar, pct, completed, total)
}

// Dashboard formats aggregate stats.
func (p *Printer) Dashboard(s progress.Summary) {
	fmt.Fprintf(p.w, "Projects   %d\n", s.Projects)
	fmt.Fprintf(p.w, "Tasks      %d\n", s.TotalTasks)
	fmt.Fprintf(p.w, "Completed  %d\n", s.CompletedTasks)
	fmt.Fprintf(p.w, "Progress   %s\n", p.Bar(s.Percentage, s.CompletedTasks, s.TotalTasks))
}

func (p *Printer) urgency(c due.Classification) string {
	switch c.Urgency {
	case due.Overdue:
		return p.overdue.Render(c.Label)
	case due.Today:
		return p.today.Render(c.Label)
	case due.Tomorrow:
		return p.tomorrow.Render(c.Label)
	}
	return c.Label
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
