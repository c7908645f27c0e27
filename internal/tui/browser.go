// Package tui is an interactive browser for the virtual media tree,
// useful for checking how the library organizes before pointing a media
// server at it.
package tui

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/ebrainte/rd-dav-server/internal/vfs"
)

// Entry is the node payload carried through the tree view.
type Entry struct {
	Path  string
	Size  int64
	IsDir bool
}

var (
	colorPrimary    = lipgloss.Color("#7D56F4")
	colorSecondary  = lipgloss.Color("#5A4FCF")
	colorBackground = lipgloss.Color("#FAFAFA")

	headerStyleBase = lipgloss.NewStyle().
			Bold(true).
			Background(colorPrimary).
			Foreground(colorBackground).
			Align(lipgloss.Center)

	statusStyleBase = lipgloss.NewStyle().
			Background(colorSecondary).
			Foreground(colorBackground).
			Padding(0, 1)

	detailStyleBase = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)

const detailHeight = 4

// BuildTree converts a snapshot into treeview nodes.
func BuildTree(snapshot *vfs.Snapshot) *treeview.Tree[Entry] {
	var roots []*treeview.Node[Entry]
	for _, top := range snapshot.Root.Children() {
		roots = append(roots, buildNode(top, "/"+top.Name))
	}
	return treeview.NewTree(roots, treeview.WithExpandAll[Entry]())
}

func buildNode(n *vfs.Node, path string) *treeview.Node[Entry] {
	node := treeview.NewNode(path, n.Name, Entry{Path: path, Size: n.Size, IsDir: n.IsDir})
	for _, child := range n.Children() {
		node.AddChild(buildNode(child, path+"/"+child.Name))
	}
	return node
}

// BrowserModel wraps the treeview TUI model with a details panel for
// the focused entry.
type BrowserModel struct {
	*treeview.TuiTreeModel[Entry]
	details viewport.Model
	width   int
	height  int
}

// NewBrowserModel returns an initialized browser with default
// dimensions, adjusted on the first WindowSize message.
func NewBrowserModel(tree *treeview.Tree[Entry]) *BrowserModel {
	m := &BrowserModel{width: 80, height: 24}
	m.details = viewport.New(m.width-4, detailHeight-2)
	m.TuiTreeModel = m.createSizedTuiModel(tree)
	return m
}

func (m *BrowserModel) createSizedTuiModel(tree *treeview.Tree[Entry]) *treeview.TuiTreeModel[Entry] {
	keyMap := treeview.DefaultKeyMap()
	keyMap.Reset = []string{}

	return treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[Entry](m.width),
		treeview.WithTuiHeight[Entry](m.treeHeight()),
		treeview.WithTuiAllowResize[Entry](true),
		treeview.WithTuiDisableNavBar[Entry](true),
		treeview.WithTuiKeyMap[Entry](keyMap),
	)
}

// treeHeight is what remains after the header, details panel, and
// status line.
func (m *BrowserModel) treeHeight() int {
	h := m.height - 1 - detailHeight - 1
	if h < 3 {
		h = 3
	}
	return h
}

func (m *BrowserModel) Init() tea.Cmd {
	return tea.Batch(m.TuiTreeModel.Init(), tea.WindowSize())
}

func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.details.Width = m.width - 4
		m.details.Height = detailHeight - 2
		internal := tea.WindowSizeMsg{Width: m.width, Height: m.treeHeight()}
		updated, cmd := m.TuiTreeModel.Update(internal)
		if tm, ok := updated.(*treeview.TuiTreeModel[Entry]); ok {
			m.TuiTreeModel = tm
		}
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	updated, cmd := m.TuiTreeModel.Update(msg)
	if tm, ok := updated.(*treeview.TuiTreeModel[Entry]); ok {
		m.TuiTreeModel = tm
	}
	return m, cmd
}

func (m *BrowserModel) View() string {
	header := headerStyleBase.Width(m.width).Render("rd-dav-server library")

	m.details.SetContent(m.focusedDetails())
	details := detailStyleBase.Width(m.width - 2).Render(m.details.View())

	status := statusStyleBase.Width(m.width).Render(
		runewidth.Truncate("↑/↓ navigate · / search · q quit", m.width-2, "…"))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.TuiTreeModel.View(),
		details,
		status,
	)
}

func (m *BrowserModel) focusedDetails() string {
	node := m.Tree.GetFocusedNode()
	if node == nil {
		return "nothing focused"
	}
	e := node.Data()

	var b strings.Builder
	b.WriteString(runewidth.Truncate(e.Path, m.details.Width, "…"))
	b.WriteString("\n")
	if e.IsDir {
		b.WriteString(fmt.Sprintf("directory · %d entries", len(node.Children())))
	} else {
		b.WriteString(fmt.Sprintf("file · %s", humanSize(e.Size)))
	}
	return b.String()
}

// humanSize renders a byte count the way ls -h does.
func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
