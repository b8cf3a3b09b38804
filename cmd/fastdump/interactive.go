package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/wippyai/fastcodec/stream"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	offsetStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	hexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const listHeight = 20

type modelState int

const (
	stateList modelState = iota
	stateFilter
	stateDetail
)

type interactiveModel struct {
	err      error
	d        *dumper
	data     []byte
	filename string
	entries  []entry
	visible  []int // indexes into entries that pass the filter
	selected int
	top      int
	filter   textinput.Model
	detail   viewport.Model
	width    int
	height   int
	loaded   bool
	state    modelState
}

type loadedMsg struct {
	err     error
	entries []entry
}

func newInteractiveModel(d *dumper, filename string, data []byte) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "template name"
	ti.Prompt = "/"
	ti.Width = 40

	return &interactiveModel{
		d:        d,
		data:     data,
		filename: filename,
		filter:   ti,
		detail:   viewport.New(80, listHeight),
		width:    80,
		height:   listHeight + 6,
		state:    stateList,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadMessages
}

// loadMessages decodes the whole input. A decode failure keeps the
// messages read before it and is shown above the list.
func (m *interactiveModel) loadMessages() tea.Msg {
	var entries []entry
	m.d.emit = func(e entry) error {
		entries = append(entries, e)
		return nil
	}
	_, err := m.d.run(stream.NewBufferSource(m.data), m.data)
	return loadedMsg{err: err, entries: entries}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-6, 3)
		return m, nil

	case loadedMsg:
		m.err = msg.err
		m.entries = msg.entries
		m.loaded = true
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilter:
			return m.updateFilter(msg)
		case stateDetail:
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *interactiveModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.visible)-1 {
			m.selected++
		}

	case "/":
		m.state = stateFilter
		return m, m.filter.Focus()

	case "esc":
		m.filter.SetValue("")
		m.applyFilter()

	case "enter":
		if len(m.visible) > 0 {
			m.detail.SetContent(renderDetail(m.entries[m.visible[m.selected]]))
			m.detail.GotoTop()
			m.state = stateDetail
		}
	}
	m.scroll()
	return m, nil
}

func (m *interactiveModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.filter.Blur()
		m.state = stateList
		return m, nil
	case "esc":
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		m.state = stateList
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "enter":
		m.state = stateList
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m *interactiveModel) applyFilter() {
	needle := strings.ToLower(m.filter.Value())
	m.visible = m.visible[:0]
	for i, e := range m.entries {
		if needle == "" || strings.Contains(strings.ToLower(e.record.TemplateName), needle) {
			m.visible = append(m.visible, i)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
	m.scroll()
}

func (m *interactiveModel) scroll() {
	rows := m.listRows()
	if m.selected < m.top {
		m.top = m.selected
	}
	if m.selected >= m.top+rows {
		m.top = m.selected - rows + 1
	}
}

func (m *interactiveModel) listRows() int {
	return max(m.height-8, 1)
}

func (m *interactiveModel) View() string {
	if !m.loaded {
		return "Decoding stream..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("FAST Dump"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString(fmt.Sprintf("  %d messages\n", len(m.entries)))
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateDetail {
		e := m.entries[m.visible[m.selected]]
		b.WriteString(fmt.Sprintf("Message %d %s\n\n", e.index, nameStyle.Render(e.record.TemplateName)))
		b.WriteString(m.detail.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
		return b.String()
	}

	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	end := min(m.top+m.listRows(), len(m.visible))
	for i := m.top; i < end; i++ {
		line := formatEntry(m.entries[m.visible[i]])
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select • enter inspect • / filter • esc clear • q quit"))

	return b.String()
}

func formatEntry(e entry) string {
	return fmt.Sprintf("%5d %-24s %s %d bytes",
		e.index,
		nameStyle.Render(e.record.TemplateName),
		offsetStyle.Render(fmt.Sprintf("@%d", e.offset)),
		e.size,
	)
}

func renderDetail(e entry) string {
	var b strings.Builder

	raw, err := e.record.MarshalJSON()
	if err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	} else {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			pretty.Reset()
			pretty.Write(raw)
		}
		b.Write(pretty.Bytes())
	}
	b.WriteString("\n\n")
	b.WriteString(hexStyle.Render(hex.Dump(e.raw)))
	return b.String()
}

func runInteractive(d *dumper, filename string, data []byte) error {
	p := tea.NewProgram(newInteractiveModel(d, filename, data), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
