package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/svg2png/pkg/convert"
	"github.com/matzehuels/svg2png/pkg/dispatch"
)

var (
	styleRowCurrent = lipgloss.NewStyle().Bold(true).Foreground(colorOK)
	styleRowMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleHeader     = lipgloss.NewStyle().Bold(true).Foreground(colorLabel)
)

// svgFile is one candidate in the file list.
type svgFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time

	// TooLarge marks files over the intake limit; they cannot be selected.
	TooLarge bool
}

// listSVGFiles returns the .svg files directly in dir, newest first.
func listSVGFiles(dir string, maxBytes int64) ([]svgFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []svgFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".svg") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, svgFile{
			Path:     filepath.Join(dir, name),
			Name:     name,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			TooLarge: maxBytes > 0 && info.Size() > maxBytes,
		})
	}
	slices.SortStableFunc(files, func(a, b svgFile) int {
		return b.ModTime.Compare(a.ModTime)
	})
	return files, nil
}

// listCursor tracks the highlighted row and, when Height is set, the first
// visible row of a scrolling window.
type listCursor struct {
	Cursor int
	Offset int
	Height int
}

func (c *listCursor) move(delta, n int) {
	c.Cursor = max(0, min(c.Cursor+delta, n-1))
	if c.Height <= 0 {
		return
	}
	if c.Cursor < c.Offset {
		c.Offset = c.Cursor
	}
	if c.Cursor >= c.Offset+c.Height {
		c.Offset = c.Cursor - c.Height + 1
	}
}

// listKey classifies a key press shared by both pickers.
type listKey int

const (
	keyNone listKey = iota
	keyQuit
	keyPick
	keyMove
)

func classify(msg tea.KeyMsg, page int) (listKey, int) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return keyQuit, 0
	case "enter":
		return keyPick, 0
	case "up", "k":
		return keyMove, -1
	case "down", "j":
		return keyMove, 1
	case "pgup":
		return keyMove, -page
	case "pgdown":
		return keyMove, page
	case "home", "g":
		return keyMove, -1 << 30
	case "end", "G":
		return keyMove, 1 << 30
	}
	return keyNone, 0
}

// FileListModel lets the user pick one SVG from a directory listing.
type FileListModel struct {
	listCursor
	Files    []svgFile
	Selected *svgFile
}

func NewFileListModel(files []svgFile) FileListModel {
	return FileListModel{Files: files, listCursor: listCursor{Height: 15}}
}

func (m FileListModel) Init() tea.Cmd { return nil }

func (m FileListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		kind, delta := classify(msg, m.Height)
		switch kind {
		case keyQuit:
			return m, tea.Quit
		case keyMove:
			m.move(delta, len(m.Files))
		case keyPick:
			if len(m.Files) == 0 || m.Files[m.Cursor].TooLarge {
				return m, nil
			}
			f := m.Files[m.Cursor]
			m.Selected = &f
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.move(0, len(m.Files))
	}
	return m, nil
}

func (m FileListModel) View() string {
	end := min(m.Offset+m.Height, len(m.Files))
	visible := m.Files[min(m.Offset, end):end]

	rows := make([][]string, len(visible))
	for i, f := range visible {
		marker := "  "
		if m.Offset+i == m.Cursor {
			marker = "▸ "
		}
		size := formatSize(f.Size)
		if f.TooLarge {
			size += " (too large)"
		}
		rows[i] = []string{marker, f.Name, size, formatRelativeTime(f.ModTime)}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleRowMuted).
		Headers("", "File", "Size", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if row >= len(visible) {
				return lipgloss.NewStyle()
			}
			current := m.Offset+row == m.Cursor
			switch {
			case visible[row].TooLarge:
				return styleRowMuted.Bold(current)
			case current:
				return styleRowCurrent
			case col == 3:
				return styleRowMuted
			}
			return lipgloss.NewStyle()
		})

	return StyleTitle.Render("Select SVG File") + "\n" +
		StyleDim.Render("↑/↓ navigate  ⏎ select  q quit") + "\n\n" +
		t.Render() + "\n\n" +
		StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Files)))
}

// action is one entry of the action list.
type action struct {
	Label string
	Hint  string
	Mode  convert.Mode
}

// actions mirrors the two buttons of the web page.
var actions = []action{
	{Label: "Download PNG", Hint: "save as " + convert.DefaultFilename, Mode: convert.ModeDownload},
	{Label: "Get Base64", Hint: "print a data URI", Mode: convert.ModeDataURI},
}

// ActionListModel lets the user choose what to do with the picked file.
type ActionListModel struct {
	listCursor
	File     string
	Actions  []action
	Selected *action
}

func NewActionListModel(file string) ActionListModel {
	return ActionListModel{File: file, Actions: actions}
}

func (m ActionListModel) Init() tea.Cmd { return nil }

func (m ActionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	kind, delta := classify(key, len(m.Actions))
	switch kind {
	case keyQuit:
		return m, tea.Quit
	case keyMove:
		m.move(delta, len(m.Actions))
	case keyPick:
		m.Selected = &m.Actions[m.Cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m ActionListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Convert "+m.File) + "\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit") + "\n\n")

	for i, a := range m.Actions {
		line := fmt.Sprintf("  %-14s  %s", a.Label, StyleDim.Render(a.Hint))
		if i == m.Cursor {
			line = StyleHighlight.Bold(true).Render(fmt.Sprintf("▸ %-14s", a.Label)) + "  " + StyleDim.Render(a.Hint)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

// noSelectionView is shown when the directory has no SVG files.
func noSelectionView(dir string) string {
	return StyleWarning.Render(dispatch.MsgNoSelection) + "\n" + StyleDim.Render("No .svg files in "+dir)
}

func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
	return t.Format("Jan 2, 2006")
}
