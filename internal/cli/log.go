package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// newLogger returns the CLI's stderr logger: wall-clock timestamps with
// centiseconds, and level badges in the CLI palette.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(colorAccent)
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(colorWarn)
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(colorBad)
	styles.Keys["took"] = lipgloss.NewStyle().Foreground(colorMuted)
	l.SetStyles(styles)
	return l
}

// logDone logs msg at info level with the time elapsed since start.
func logDone(l *log.Logger, start time.Time, msg string, keyvals ...any) {
	keyvals = append(keyvals, "took", time.Since(start).Round(time.Millisecond))
	l.Info(msg, keyvals...)
}
