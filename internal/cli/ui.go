package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/pipeline"
)

// Terminal palette, ANSI 256 codes.
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorBad    = lipgloss.Color("167")
	colorCmd    = lipgloss.Color("75")
	colorText   = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorFaint)

	// StyleValue for refs and paths.
	StyleValue = lipgloss.NewStyle().Foreground(colorText)

	// StyleNumber for counts.
	StyleNumber = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	StyleSuccess = lipgloss.NewStyle().Foreground(colorOK)
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)

	// StyleUnsafe marks bricks whose removal topples others.
	StyleUnsafe = lipgloss.NewStyle().Foreground(colorBad)
)

var (
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleLabel   = lipgloss.NewStyle().Foreground(colorMuted).Width(13)
	styleCommand = lipgloss.NewStyle().Foreground(colorCmd)
)

// Line markers.
const (
	markOK    = "✓"
	markFail  = "✗"
	markWarn  = "!"
	markInfo  = "›"
	markArrow = "→"
)

// printer writes styled status lines for humans. Machine-readable output
// (JSON, DOT, settled snapshots) bypasses it.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) printer {
	return printer{w: w}
}

func (p printer) mark(style lipgloss.Style, icon, msg string) {
	fmt.Fprintln(p.w, style.Render(icon)+" "+msg)
}

func (p printer) success(format string, args ...any) {
	p.mark(StyleSuccess, markOK, fmt.Sprintf(format, args...))
}

func (p printer) failure(format string, args ...any) {
	p.mark(StyleUnsafe, markFail, fmt.Sprintf(format, args...))
}

func (p printer) warn(format string, args ...any) {
	p.mark(StyleWarning, markWarn, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func (p printer) info(format string, args ...any) {
	p.mark(styleMuted, markInfo, fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (p printer) detail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func (p printer) file(path string) {
	fmt.Fprintln(p.w, "  "+StyleDim.Render(markArrow)+" "+StyleValue.Render(path))
}

func (p printer) field(label, value string) {
	fmt.Fprintln(p.w, styleLabel.Render(label)+" "+value)
}

func (p printer) nextStep(description, cmd string) {
	fmt.Fprintln(p.w, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func (p printer) blank() {
	fmt.Fprintln(p.w)
}

// summary prints the brick and support counts and whether the result came
// from the cache.
func (p printer) summary(bricks, edges int, cached bool) {
	sep := StyleDim.Render(" · ")
	line := "  " + StyleDim.Render(fmt.Sprintf("%d bricks", bricks))
	if edges > 0 {
		line += sep + StyleDim.Render(fmt.Sprintf("%d supports", edges))
	}
	source := styleMuted.Render("fresh")
	if cached {
		source = StyleSuccess.Render("cached")
	}
	fmt.Fprintln(p.w, line+sep+source)
}

// report prints the headline numbers of an analysis.
func (p printer) report(r analysis.Report, moved int) {
	num := func(n int) string { return StyleNumber.Render(strconv.Itoa(n)) }
	p.field("Bricks", num(r.Bricks))
	p.field("Moved", num(moved))
	p.field("Height", num(r.Height))
	p.field("Safe", num(r.Safe))
	p.field("Chain total", num(r.ChainTotal))
	if r.Worst != nil {
		p.field("Worst", StyleUnsafe.Render(r.Worst.Ref)+" "+
			StyleDim.Render(fmt.Sprintf("(topples %d)", r.Worst.Falls)))
	}
}

// removable lists the bricks that can be taken out without anything falling.
func (p printer) removable(r analysis.Report) {
	p.info("Safe to remove:")
	for _, d := range r.Details {
		if d.Safe {
			p.detail("%s", d.Ref)
		}
	}
}

// unsafe lists the bricks that cannot be removed safely with the size of
// their chain reaction.
func (p printer) unsafe(r analysis.Report) {
	unsafe := r.Unsafe()
	if len(unsafe) == 0 {
		return
	}
	p.info("Unsafe to remove:")
	for _, d := range unsafe {
		p.detail("%-24s topples %d", d.Ref, d.Falls)
	}
}

// chain prints the bricks that fall when c.Ref is removed.
func (p printer) chain(c pipeline.Chain) {
	if c.Falls == 0 {
		p.success("Removing %s topples nothing", StyleValue.Render(c.Ref))
		return
	}
	p.info("Removing %s topples %s:", StyleValue.Render(c.Ref), StyleNumber.Render(strconv.Itoa(c.Falls)))
	for _, ref := range c.Toppled {
		p.detail("%s", ref)
	}
}
