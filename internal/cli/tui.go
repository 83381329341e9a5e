package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/support"
)

// =============================================================================
// InspectModel - Interactive brick browser
// =============================================================================

// InspectModel is the bubbletea model for browsing a settled snapshot. The
// table lists every brick; enter shows which bricks would fall if the
// selected one were removed.
type InspectModel struct {
	Graph  *support.Graph
	Report analysis.Report
	Cursor int
	Height int
	Offset int

	// UnsafeOnly hides the bricks that can be removed safely.
	UnsafeOnly bool

	// Chain holds the chain reaction of the brick under Chain.From, or nil
	// when no brick has been expanded.
	Chain *chainView

	rows []int // indexes into Report.Details that are currently shown
}

type chainView struct {
	From  support.ID
	Falls []support.ID
}

// NewInspectModel creates a model for g. The report must carry per-brick
// details.
func NewInspectModel(g *support.Graph, report analysis.Report) InspectModel {
	m := InspectModel{
		Graph:  g,
		Report: report,
		Height: 15,
	}
	m.filter()
	return m
}

func (m *InspectModel) filter() {
	m.rows = make([]int, 0, len(m.Report.Details))
	for i, d := range m.Report.Details {
		if m.UnsafeOnly && d.Safe {
			continue
		}
		m.rows = append(m.rows, i)
	}
	m.Cursor = min(m.Cursor, max(len(m.rows)-1, 0))
	m.Offset = min(m.Offset, m.Cursor)
}

// Selected returns the detail under the cursor.
func (m InspectModel) Selected() (analysis.BrickReport, bool) {
	if m.Cursor >= len(m.rows) {
		return analysis.BrickReport{}, false
	}
	return m.Report.Details[m.rows[m.Cursor]], true
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.Chain == nil {
				return m, tea.Quit
			}
			m.Chain = nil
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "u":
			m.UnsafeOnly = !m.UnsafeOnly
			m.Chain = nil
			m.filter()
		case "enter":
			if d, ok := m.Selected(); ok {
				m.Chain = &chainView{From: d.ID, Falls: analysis.ChainReactionSet(m.Graph, d.ID)}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Settled Bricks"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d bricks · %d safe · chain total %d",
		m.Report.Bricks, m.Report.Safe, m.Report.ChainTotal)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ chain reaction  u unsafe only  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Report.Details[m.rows[i]]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		safe := "✓"
		if !d.Safe {
			safe = "✗"
		}
		rows = append(rows, []string{
			cursor,
			d.Ref,
			fmt.Sprintf("%d-%d", d.Z, d.Top-1),
			strconv.Itoa(len(d.SupportedBy)),
			strconv.Itoa(len(d.Supports)),
			safe,
			strconv.Itoa(d.Falls),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("", "Brick", "Z", "Below", "Above", "Safe", "Falls").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleMuted.Bold(true)
			}
			idx := m.Offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			d := m.Report.Details[m.rows[idx]]
			base := lipgloss.NewStyle()
			if !d.Safe {
				base = StyleUnsafe
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.rows)), len(m.rows))))
	b.WriteString("\n")

	if m.Chain != nil {
		b.WriteString("\n")
		b.WriteString(m.chainView())
	}
	return b.String()
}

func (m InspectModel) chainView() string {
	from := m.Graph.Brick(m.Chain.From)
	if len(m.Chain.Falls) == 0 {
		return StyleSuccess.Render(fmt.Sprintf("Removing %s topples nothing", from.Ref))
	}
	var b strings.Builder
	b.WriteString(StyleWarning.Render(fmt.Sprintf("Removing %s topples %d bricks:", from.Ref, len(m.Chain.Falls))))
	b.WriteString("\n")
	for _, id := range m.Chain.Falls {
		b.WriteString("  " + StyleDim.Render(markArrow) + " " + StyleValue.Render(m.Graph.Brick(id).Ref) + "\n")
	}
	return b.String()
}
