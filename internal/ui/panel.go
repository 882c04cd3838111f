package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Frame wraps inner in the theme's border.
func Frame(inner string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(inner)
}

// Panel draws a framed box to stdout.
func Panel(lines []string) { FPanel(os.Stdout, lines) }

// FPanel draws a framed box to w.
func FPanel(w io.Writer, lines []string) {
	fmt.Fprintln(w, Frame(strings.Join(lines, "\n")))
}

// Header is "Todo List  ✔ 1  • 2  Total 3".
func Header(items []model.Item) string {
	t := Current()
	d, p := model.Stats(items)
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render(HeaderTitle),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)
}

// ItemLine renders one row: "[ 1.] ☐ title". index is 1-based; 0 omits it.
func ItemLine(index int, it model.Item, width int) string {
	t := Current()
	box, text := t.Muted.Render(t.BoxUnchecked), it.Title
	if it.Done {
		box, text = t.Success.Render(t.BoxChecked), t.Done.Render(it.Title)
	}
	if width > 3 && len(it.Title) > width {
		short := it.Title[:width-3] + "..."
		text = short
		if it.Done {
			text = t.Done.Render(short)
		}
	}
	if index <= 0 {
		return box + " " + text
	}
	return fmt.Sprintf("%s %s %s", t.Muted.Render(fmt.Sprintf("%2d.", index)), box, text)
}

// FlatLines renders items in order, numbered from 1.
func FlatLines(items []model.Item) []string {
	if len(items) == 0 {
		return []string{Current().Muted.Render(EmptyList)}
	}
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, ItemLine(i+1, it, 80))
	}
	return out
}

// GroupLines renders pending then done items. Numbers keep referring to
// the position in items so they stay valid for done/rm.
func GroupLines(items []model.Item) []string {
	t := Current()
	var pend, done []string
	for i, it := range items {
		if it.Done {
			done = append(done, ItemLine(i+1, it, 80))
		} else {
			pend = append(pend, ItemLine(i+1, it, 80))
		}
	}
	section := func(title string, rows []string) []string {
		out := []string{t.Accent.Render(title)}
		if len(rows) == 0 {
			return append(out, t.Muted.Render("(none)"))
		}
		return append(out, rows...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

// Completed is "N of M completed".
func Completed(items []model.Item) string {
	d, _ := model.Stats(items)
	return fmt.Sprintf("%d of %d completed", d, len(items))
}

func OK(msg string)   { fmt.Println(Current().Success.Render(Current().SymDone + " " + msg)) }
func Fail(msg string) { fmt.Fprintln(os.Stderr, Current().Error.Render("✖ "+msg)) }
