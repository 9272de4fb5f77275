package progress

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"cpbar/internal/speed"
)

// ANSI escape sequences for styling and cursor control.
const (
	colReset  = "\033[0m"
	colBold   = "\033[1m"
	colGreen  = "\033[32m"
	colCyan   = "\033[36m"
	colYellow = "\033[33m"
	colRed    = "\033[31m"
	colDim    = "\033[2m"

	cursorHide = "\033[?25l"
	cursorShow = "\033[?25h"
	clearLine  = "\033[2K"
)

const (
	// filenameWidth keeps the name field constant so the bar width never
	// jitters between frames.
	filenameWidth = 20

	minBarWidth = 10
)

func moveTo(row int) string {
	return fmt.Sprintf("\033[%d;1H", row)
}

// termSize returns the terminal dimensions, defaulting to 80x24 when the
// size cannot be determined.
func (t *Tracker) termSize() (cols, rows int) {
	cols, rows, err := term.GetSize(int(t.out.Fd()))
	if err != nil || cols <= 0 || rows <= 0 {
		return 80, 24
	}

	return cols, rows
}

// render draws one frame at the bottom of the terminal. Called without the
// progress lock held.
func (t *Tracker) render(snap snapshot) {
	if !t.interactive {
		return
	}

	cols, rows := t.termSize()

	var fraction float64

	switch {
	case snap.totalBytes > 0:
		fraction = float64(snap.completedBytes) / float64(snap.totalBytes)
	case snap.totalItems > 0:
		fraction = float64(snap.completedItems) / float64(snap.totalItems)
	default:
		fraction = 1.0
	}

	if fraction > 1.0 {
		fraction = 1.0
	}

	icon := "📋"
	if snap.kind == speed.Remove {
		icon = "🗑 "
	}

	pct := fmt.Sprintf("%5.1f%%", fraction*100)
	items := fmt.Sprintf("%d/%d", snap.completedItems, snap.totalItems)
	sizes := humanize.IBytes(uint64(snap.completedBytes)) + "/" + humanize.IBytes(uint64(snap.totalBytes))

	speedStr := "---"
	if snap.speed > 0 {
		speedStr = humanize.IBytes(uint64(snap.speed)) + "/s"
	}

	timing := speed.FormatDuration(snap.elapsed) + " @ " + speedStr
	name := padName(snap.label)

	// Everything on the line except the bar itself; the bar fills whatever
	// width remains so the layout survives resizes.
	fixed := 2 + 1 + len(pct) + 1 + 2 + 1 + len(items) + 3 + len(sizes) + 3 + len(timing) + 3 + filenameWidth

	barWidth := cols - fixed - 5
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}

	filled := int(float64(barWidth) * fraction)
	if filled > barWidth {
		filled = barWidth
	}

	bar := colGreen + strings.Repeat("█", filled) + colDim + strings.Repeat("░", barWidth-filled) + colReset

	line := fmt.Sprintf("%s %s%s%s [%s] %s | %s | %s%s%s | %s%s%s",
		icon, colBold, pct, colReset, bar, items, sizes, colDim, timing, colReset, colCyan, name, colReset)

	fmt.Fprint(t.out, moveTo(rows)+clearLine+line+moveTo(rows-1))
}

// padName truncates the label from the left with an ellipsis prefix, or pads
// it, to exactly filenameWidth columns.
func padName(name string) string {
	if len(name) > filenameWidth {
		return "..." + name[len(name)-(filenameWidth-3):]
	}

	return name + strings.Repeat(" ", filenameWidth-len(name))
}

func (t *Tracker) printSummary(snap snapshot, skipped int64) {
	verb, icon := "Copied", "✅"
	if snap.kind == speed.Remove {
		verb, icon = "Deleted", "🗑 "
	}

	summary := fmt.Sprintf("%s %s%s: %d files (%s)%s",
		icon, colGreen, verb, snap.completedItems, humanize.IBytes(uint64(snap.completedBytes)), colReset)

	if skipped > 0 {
		summary += fmt.Sprintf(" %s(Skipped: %d)%s", colYellow, skipped, colReset)
	}

	if !t.interactive {
		fmt.Fprintln(t.out, summary)
		return
	}

	_, rows := t.termSize()
	fmt.Fprint(t.out, moveTo(rows)+clearLine+summary+"\n"+cursorShow)
}
