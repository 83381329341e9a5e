package brick

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// ErrSyntax is returned when a line does not match x1,y1,z1~x2,y2,z2.
var ErrSyntax = errors.New("malformed brick")

// LineError reports a parse failure on a specific input line.
type LineError struct {
	Line int    // 1-based line number
	Text string // offending line, trimmed
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

type corners struct {
	From point `parser:"@@ '~'"`
	To   point `parser:"@@"`
}

type point struct {
	X int `parser:"@Int ','"`
	Y int `parser:"@Int ','"`
	Z int `parser:"@Int"`
}

var lineParser = participle.MustBuild[corners]()

// Parse reads a single brick in "x1,y1,z1~x2,y2,z2" form. The corners may
// come in either order; the smaller coordinate on each axis becomes the origin
// and the extent is the absolute difference plus one. The trimmed line is
// used as the brick's Ref.
func Parse(line string) (Brick, error) {
	line = strings.TrimSpace(line)
	c, err := lineParser.ParseString("", line)
	if err != nil {
		return Brick{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	return New(line,
		min(c.From.X, c.To.X),
		min(c.From.Y, c.To.Y),
		min(c.From.Z, c.To.Z),
		extent(c.From.X, c.To.X),
		extent(c.From.Y, c.To.Y),
		extent(c.From.Z, c.To.Z),
	)
}

func extent(a, b int) int {
	if a > b {
		return a - b + 1
	}
	return b - a + 1
}

// ReadAll parses one brick per line from r, skipping blank lines.
// The first malformed line aborts the read with a *LineError; no partial
// result is returned.
func ReadAll(r io.Reader) ([]Brick, error) {
	var bricks []Brick
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		b, err := Parse(text)
		if err != nil {
			return nil, &LineError{Line: n, Text: text, Err: err}
		}
		bricks = append(bricks, b)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read bricks: %w", err)
	}
	return bricks, nil
}

// Format writes b back in input form, origin corner first.
func Format(b Brick) string {
	return fmt.Sprintf("%d,%d,%d~%d,%d,%d",
		b.X, b.Y, b.Z, b.Right()-1, b.Back()-1, b.Top()-1)
}

// WriteAll writes bricks to w in input form, one per line.
func WriteAll(w io.Writer, bricks []Brick) error {
	bw := bufio.NewWriter(w)
	for _, b := range bricks {
		if _, err := fmt.Fprintln(bw, Format(b)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
