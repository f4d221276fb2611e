package main

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// PreviewUI is the BubbleTea model of the previewer. The left panel lists
// the pack's files, the right panel shows the selected one. The
// interaction file can be shown as the in-game dialogue or as JSON.
// https://github.com/charmbracelet/bubbletea
type PreviewUI struct {
	manifestPath string
	pack         *Pack
	selected     int
	showJSON     bool

	viewport viewport.Model
	ready    bool
	width    int
	height   int

	status string
	err    error

	showQuitModal bool

	// Injected for tests.
	copy    func(string) error
	outDir  string
	rebuild func(ctx context.Context, path string) (*Pack, error)
}

type packLoadedMsg struct {
	pack *Pack
	err  error
}

type packWrittenMsg struct {
	path string
	err  error
}

var (
	previewPanelStyle = lipgloss.NewStyle().
				PaddingTop(1).
				PaddingLeft(2).
				PaddingRight(1)

	filesPanelStyle = lipgloss.NewStyle().
			PaddingTop(1).
			PaddingLeft(2).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	actionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)
)

func NewPreviewUI(manifestPath string, pack *Pack) PreviewUI {
	vp := viewport.New(60, 20)
	vp.MouseWheelEnabled = true
	return PreviewUI{
		manifestPath: manifestPath,
		pack:         pack,
		selected:     interactionIndex(pack),
		viewport:     vp,
		copy:         clipboard.WriteAll,
		outDir:       ".",
		rebuild:      loadPack,
	}
}

// interactionIndex picks the interaction file so the dialogue shows first.
func interactionIndex(pack *Pack) int {
	want := npcdoc.InteractionPath(pack.Editor.NpcID())
	for i, f := range pack.Files {
		if f.Path == want {
			return i
		}
	}
	return 0
}

func (m PreviewUI) Init() tea.Cmd {
	return nil
}

func (m PreviewUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.previewWidth() - 3
		m.viewport.Height = m.height - 4
		m.ready = true
		m.refresh()
		return m, nil

	case packLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.pack = msg.pack
		m.selected = min(m.selected, len(m.pack.Files)-1)
		m.status = "Rebuilt " + m.pack.Editor.Summary()
		m.refresh()
		return m, nil

	case packWrittenMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "Wrote " + msg.path
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			m.selectFile(-1)
			return m, nil
		case tea.KeyDown, tea.KeyTab:
			m.selectFile(1)
			return m, nil
		}
		switch msg.String() {
		case "q":
			m.showQuitModal = true
			return m, nil
		case "k":
			m.selectFile(-1)
			return m, nil
		case "j":
			m.selectFile(1)
			return m, nil
		case "v":
			m.showJSON = !m.showJSON
			m.refresh()
			return m, nil
		case "c":
			if err := m.copy(string(m.pack.Files[m.selected].Data)); err != nil {
				m.err = fmt.Errorf("copy failed: %w", err)
			} else {
				m.err = nil
				m.status = "Copied " + m.pack.Files[m.selected].Path
			}
			return m, nil
		case "w":
			return m, m.writeZip()
		case "r":
			return m, m.reload()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *PreviewUI) selectFile(delta int) {
	n := len(m.pack.Files)
	if n == 0 {
		return
	}
	m.selected = (m.selected + delta + n) % n
	m.refresh()
}

// refresh re-renders the selected file into the viewport.
func (m *PreviewUI) refresh() {
	if !m.ready || len(m.pack.Files) == 0 {
		return
	}
	f := m.pack.Files[m.selected]
	width := max(m.viewport.Width-2, 20)

	var content string
	switch {
	case f.Path == npcdoc.InteractionPath(m.pack.Editor.NpcID()) && !m.showJSON:
		content = renderDialogue(m.pack.Editor, width)
	case !utf8.Valid(f.Data):
		content = promptStyle.Render(fmt.Sprintf("(binary file, %d bytes)", len(f.Data)))
	default:
		content = string(f.Data)
	}
	m.viewport.SetContent(content)
	m.viewport.GotoTop()
}

// renderDialogue shows the interaction the way the game presents it, with
// each option's exported action alongside.
func renderDialogue(e *editor.Editor, width int) string {
	f, err := e.ExportInteraction()
	if err != nil {
		return errorStyle.Render(err.Error())
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render(f.Title) + "\n")
	content.WriteString(actionStyle.Render(fmt.Sprintf("%s interaction", f.Type)) + "\n\n")

	name := e.Role().DisplayName
	if name == "" {
		name = e.NpcID()
	}
	content.WriteString(speakerStyle.Render(name+":") + "\n")
	content.WriteString(wordwrap.String(f.Text, width) + "\n\n")

	for i, o := range f.Options {
		text := o.Text
		if text == "" {
			text = "(no text)"
		}
		content.WriteString(optionStyle.Render(fmt.Sprintf("%d. %s", i+1, wordwrap.String(text, width-4))) + "\n")
		detail := "   → " + o.Action
		if o.RequiredQuestID != "" {
			detail += "  requires " + o.RequiredQuestID
		}
		content.WriteString(actionStyle.Render(detail) + "\n")
	}

	if f.CompletedText != nil && *f.CompletedText != "" {
		content.WriteString("\n" + titleStyle.Render("After completion") + "\n")
		content.WriteString(wordwrap.String(*f.CompletedText, width) + "\n")
	}
	return content.String()
}

func (m PreviewUI) writeZip() tea.Cmd {
	pack, dir := m.pack, m.outDir
	return func() tea.Msg {
		path, err := writePack(context.Background(), pack, dir)
		return packWrittenMsg{path, err}
	}
}

func (m PreviewUI) reload() tea.Cmd {
	path, rebuild := m.manifestPath, m.rebuild
	return func() tea.Msg {
		pack, err := rebuild(context.Background(), path)
		return packLoadedMsg{pack, err}
	}
}

func (m PreviewUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		case tea.KeyEsc:
			m.showQuitModal = false
			return m, nil
		}
		switch msg.String() {
		case "y", "Y", "q":
			return m, tea.Quit
		case "n", "N":
			m.showQuitModal = false
		}
	}
	return m, nil
}

func (m PreviewUI) filesWidth() int {
	return min(max(m.width/3, 24), 48)
}

func (m PreviewUI) previewWidth() int {
	return max(m.width-m.filesWidth(), 20)
}

func (m PreviewUI) View() string {
	if m.showQuitModal {
		modal := modalStyle.Width(44).Render(
			titleStyle.Render("Quit preview?") + "\n\n" +
				promptStyle.Render("Press Y to quit, N to continue"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	var files strings.Builder
	files.WriteString(titleStyle.Render(m.pack.Editor.ArchiveName()) + "\n\n")
	for i, f := range m.pack.Files {
		line := f.Path
		if i == m.selected {
			line = selectedStyle.Render("▶ " + line)
		} else {
			line = "  " + line
		}
		files.WriteString(line + "\n")
	}
	files.WriteString("\n" + promptStyle.Render("↑/↓ select  v json\nc copy  w write zip\nr rebuild  q quit"))

	footer := statusStyle.Render(m.status)
	if m.err != nil {
		footer = errorStyle.Render("Error: " + m.err.Error())
	}

	left := filesPanelStyle.Width(m.filesWidth()).Height(m.height - 2).Render(files.String())
	right := previewPanelStyle.Width(m.previewWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), "", footer),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
