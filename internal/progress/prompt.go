package progress

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"cpbar/internal/engine"
)

// AskOverwrite prompts on the line above the progress bar and blocks for an
// answer. "a" latches overwrite-all for the rest of the operation.
func (t *Tracker) AskOverwrite(dst string) engine.Decision {
	t.mu.Lock()
	all := t.overwriteAll
	t.mu.Unlock()

	if all {
		return engine.Proceed
	}

	if !t.interactive {
		return engine.Proceed
	}

	if t.stdin == nil {
		t.stdin = bufio.NewReader(os.Stdin)
	}

	_, rows := t.termSize()
	promptRow := moveTo(rows-1) + clearLine

	fmt.Fprint(t.out, promptRow+cursorShow)

	for {
		fmt.Fprint(t.out, promptRow)
		fmt.Fprintf(t.out, "%sOverwrite '%s'? [y/n/a/q]: %s", colYellow, dst, colReset)

		line, err := t.stdin.ReadString('\n')
		if err != nil {
			fmt.Fprint(t.out, promptRow+cursorHide)
			return engine.Skip
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			fmt.Fprint(t.out, promptRow+cursorHide)
			return engine.Proceed
		case "n", "no":
			t.mu.Lock()
			t.skippedItems++
			t.mu.Unlock()

			fmt.Fprint(t.out, promptRow+cursorHide)

			return engine.Skip
		case "a", "all":
			t.mu.Lock()
			t.overwriteAll = true
			t.mu.Unlock()

			fmt.Fprint(t.out, promptRow+cursorHide)

			return engine.ProceedAll
		case "q", "quit":
			fmt.Fprint(t.out, cursorShow)
			return engine.Abort
		default:
			fmt.Fprint(t.out, promptRow)
			fmt.Fprintf(t.out, "%sInvalid option. Use: y (yes), n (no), a (all), q (quit)%s", colRed, colReset)
			time.Sleep(1500 * time.Millisecond)
		}
	}
}
