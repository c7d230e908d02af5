package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/taxotree/pkg/taxon"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// TaxonListModel - Interactive taxon selection
// =============================================================================

// taxonRow is a visible line of the taxon list.
type taxonRow struct {
	node  *taxon.Node
	depth int
}

// TaxonListModel is the bubbletea model for picking a taxon of a tree.
// Subtrees are folded until expanded.
type TaxonListModel struct {
	Root     *taxon.Node
	Cursor   int
	Offset   int
	Height   int
	Selected *taxon.Node

	expanded map[*taxon.Node]bool
	rows     []taxonRow
}

// NewTaxonListModel creates a list with the root and its children visible.
func NewTaxonListModel(root *taxon.Node) TaxonListModel {
	m := TaxonListModel{
		Root:     root,
		Height:   15,
		expanded: map[*taxon.Node]bool{root: true},
	}
	m.rows = m.visibleRows()
	return m
}

func (m TaxonListModel) visibleRows() []taxonRow {
	var rows []taxonRow
	m.Root.Walk(func(n *taxon.Node, depth int) bool {
		rows = append(rows, taxonRow{node: n, depth: depth})
		return m.expanded[n]
	})
	return rows
}

func (m TaxonListModel) Init() tea.Cmd {
	return nil
}

func (m TaxonListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "right", "l":
			if n := m.rows[m.Cursor].node; !n.IsLeaf() {
				m.setExpanded(n, true)
			}
		case " ":
			if n := m.rows[m.Cursor].node; !n.IsLeaf() {
				m.setExpanded(n, !m.expanded[n])
			}
		case "left", "h":
			n := m.rows[m.Cursor].node
			if !m.expanded[n] && n.Parent() != nil {
				n = n.Parent()
			}
			m.setExpanded(n, false)
			for i, r := range m.rows {
				if r.node == n {
					m.Cursor = i
				}
			}
		case "enter":
			m.Selected = m.rows[m.Cursor].node
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	m.scroll()
	return m, nil
}

// setExpanded folds or unfolds n and rebuilds the visible rows. The expanded
// set is shared between model copies, so it is copied before writing.
func (m *TaxonListModel) setExpanded(n *taxon.Node, open bool) {
	expanded := make(map[*taxon.Node]bool, len(m.expanded)+1)
	for k, v := range m.expanded {
		expanded[k] = v
	}
	expanded[n] = open
	m.expanded = expanded
	m.rows = m.visibleRows()
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
}

func (m *TaxonListModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TaxonListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Taxon"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  →/← expand/fold  space toggle  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		fold := "  "
		switch {
		case r.node.IsLeaf():
		case m.expanded[r.node]:
			fold = "▾ "
		default:
			fold = "▸ "
		}
		name := strings.Repeat("  ", r.depth) + fold + r.node.Name
		rows = append(rows, []string{cursor, name, r.node.Rank, strconv.Itoa(r.node.Count), strconv.Itoa(len(r.node.Members()))})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Taxon", "Rank", "Count", "Queries").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Align(lipgloss.Right)
			}
			if m.Offset+row == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}

// pickTaxon runs the picker and returns the chosen node, or nil when the
// user quits.
func pickTaxon(root *taxon.Node) (*taxon.Node, error) {
	final, err := tea.NewProgram(NewTaxonListModel(root)).Run()
	if err != nil {
		return nil, err
	}
	return final.(TaxonListModel).Selected, nil
}
