package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/xkcdify/pkg/errors"
	"github.com/matzehuels/xkcdify/pkg/outline"
	"github.com/matzehuels/xkcdify/pkg/svg"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PickerModel - Interactive element selection
// =============================================================================

// pickItem is one element with an id that the picker offers.
type pickItem struct {
	ID    string
	Label string
	Depth int
	Paths int
	Texts int
}

// PickerModel is the bubbletea model for choosing the elements to sketch.
type PickerModel struct {
	Items  []pickItem
	Cursor int
	Offset int
	Height int
	Chosen map[int]bool
	Done   bool // confirmed with enter
}

// NewPickerModel lists the elements of doc that have an id. Elements whose
// id is in preselected start out chosen.
func NewPickerModel(doc *svg.Document, preselected []string) PickerModel {
	pre := make(map[string]bool, len(preselected))
	for _, id := range preselected {
		pre[id] = true
	}

	m := PickerModel{Height: 15, Chosen: make(map[int]bool)}
	for _, en := range outline.Walk(doc, []*svg.Element{doc.Root}, outline.Options{Fonts: true}) {
		e := en.Element
		if e.ID() == "" {
			continue
		}
		item := pickItem{ID: e.ID(), Label: outline.Label(e, false), Depth: en.Depth}
		for range svg.FindRecursive([]*svg.Element{e}, svg.IsPath) {
			item.Paths++
		}
		for range svg.FindRecursive([]*svg.Element{e}, func(e *svg.Element) bool { return e.Kind == svg.KindText }) {
			item.Texts++
		}
		if pre[item.ID] {
			m.Chosen[len(m.Items)] = true
		}
		m.Items = append(m.Items, item)
	}
	return m
}

// Selected returns the chosen ids in document order.
func (m PickerModel) Selected() []string {
	var ids []string
	for i, item := range m.Items {
		if m.Chosen[i] {
			ids = append(ids, item.ID)
		}
	}
	return ids
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Items)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Items) > 0 {
				m.Chosen[m.Cursor] = !m.Chosen[m.Cursor]
			}
		case "a":
			all := len(m.Selected()) < len(m.Items)
			for i := range m.Items {
				m.Chosen[i] = all
			}
		case "enter":
			m.Done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m PickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Elements"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ sketch  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Items))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		item := m.Items[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		check := "[ ]"
		if m.Chosen[i] {
			check = "[x]"
		}
		rows = append(rows, []string{
			cursor + check,
			strings.Repeat("  ", item.Depth) + item.Label,
			strconv.Itoa(item.Paths),
			strconv.Itoa(item.Texts),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Element", "Paths", "Texts").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case m.Chosen[idx]:
				return StyleSuccess
			case m.Items[idx].Paths == 0 && m.Items[idx].Texts == 0:
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	summary := "whole document"
	if n := len(m.Selected()); n > 0 {
		summary = fmt.Sprintf("%d selected", n)
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %s", m.Cursor+1, len(m.Items), summary)))

	return b.String()
}

// pickElements runs the picker over doc. ok is false when the user quit
// without confirming.
func pickElements(ctx context.Context, doc *svg.Document, preselected []string) (ids []string, ok bool, err error) {
	m := NewPickerModel(doc, preselected)
	if len(m.Items) == 0 {
		return nil, false, errors.New(errors.ErrCodeNotFound, "no element in the document has an id")
	}

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	finalModel, err := p.Run()
	if err != nil {
		return nil, false, err
	}
	fm, isPicker := finalModel.(PickerModel)
	if !isPicker || !fm.Done {
		return nil, false, nil
	}
	return fm.Selected(), true, nil
}
