package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

var spinnerFrames = [...]string{"◐", "◓", "◑", "◒"}

const spinnerInterval = 100 * time.Millisecond

// spinner animates a status line on stderr while the pipeline runs. It draws
// nothing unless stderr is a terminal, and erases itself when stopped or when
// its context ends.
type spinner struct {
	out     io.Writer
	message string
	quit    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// startSpinner starts a spinner on stderr.
func startSpinner(ctx context.Context, message string) *spinner {
	fd := os.Stderr.Fd()
	return startSpinnerTo(ctx, os.Stderr, message, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

func startSpinnerTo(ctx context.Context, out io.Writer, message string, animated bool) *spinner {
	s := &spinner{out: out, message: message, quit: make(chan struct{})}
	if animated {
		s.wg.Add(1)
		go s.run(ctx)
	}
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer s.wg.Done()
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.out, "\r%s %s", StyleNumber.Render(spinnerFrames[i%len(spinnerFrames)]), StyleDim.Render(s.message))
		select {
		case <-ctx.Done():
		case <-s.quit:
		case <-tick.C:
			continue
		}
		fmt.Fprint(s.out, "\r\x1b[K")
		return
	}
}

// stop erases the spinner. Later calls do nothing.
func (s *spinner) stop() {
	s.once.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
}

// fail stops the spinner and leaves a failure line in its place.
func (s *spinner) fail(message string) {
	s.stop()
	newPrinter(s.out).failure("%s", message)
}
