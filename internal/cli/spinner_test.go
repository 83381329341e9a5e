package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinnerDrawsAndErases(t *testing.T) {
	var out bytes.Buffer
	s := startSpinnerTo(context.Background(), &out, "Settling bricks...", true)
	time.Sleep(3 * spinnerInterval / 2)
	s.stop()

	got := out.String()
	assert.Contains(t, got, "Settling bricks...")
	assert.True(t, strings.HasSuffix(got, "\r\x1b[K"), "spinner should erase its line, got %q", got)
}

func TestSpinnerSilentOffTerminal(t *testing.T) {
	var out bytes.Buffer
	s := startSpinnerTo(context.Background(), &out, "Settling bricks...", false)
	s.stop()
	assert.Empty(t, out.String())
}

func TestSpinnerFail(t *testing.T) {
	var out bytes.Buffer
	s := startSpinnerTo(context.Background(), &out, "Rendering...", false)
	s.fail("Render failed")
	assert.Contains(t, out.String(), markFail+" Render failed")
}

func TestSpinnerStopsWithContext(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinnerTo(ctx, &out, "Settling bricks...", true)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spinner kept running after its context ended")
	}
	s.stop()
	s.stop()
}
