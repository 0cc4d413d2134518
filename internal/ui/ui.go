package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistx/internal/formatter"
	"github.com/desertthunder/setlistx/internal/models"
	"github.com/desertthunder/setlistx/internal/setlist"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SetlistView ViewState = iota
	PickerView
	KeyView
)

// errNoMedleyAbove is shown when M is pressed without a medley entry directly above the cursor.
var errNoMedleyAbove = errors.New("the entry above is not in a medley")

// Editor is the setlist editing surface the TUI drives.
type Editor interface {
	Detail(eventID string) (formatter.Sheet, error)
	Add(eventID, songID string, opts setlist.AddOptions) (setlist.Setlist, error)
	Remove(eventID string, index int) (setlist.Setlist, error)
	Move(eventID string, index int, dir setlist.Direction) (setlist.Setlist, error)
	ToggleMedley(eventID string, index int, on bool, group int) (setlist.Setlist, error)
	SetKey(eventID string, index int, keyPlayed string) (setlist.Setlist, error)
	Candidates(eventID string) ([]*models.Song, error)
}

// Model represents the TUI application state.
type Model struct {
	editor   Editor
	eventID  string
	logger   *log.Logger
	view     ViewState
	sheet    formatter.Sheet
	loaded   bool
	setlist  setlist.Setlist
	cursor   int
	picker   list.Model
	keyInput textinput.Model
	width    int
	height   int
	status   string
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model editing the setlist of eventID. A nil logger discards log output.
func NewModel(editor Editor, eventID string, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	input := textinput.New()
	input.Placeholder = "e.g. G, Bb, F#m"
	input.CharLimit = 8
	input.Prompt = "Key: "

	return &Model{
		editor:   editor,
		eventID:  eventID,
		logger:   logger,
		view:     SetlistView,
		keyInput: input,
		width:    80,
		height:   24,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init loads the event and its setlist.
func (m *Model) Init() tea.Cmd {
	return m.loadSheet()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.view == PickerView {
			m.picker.SetSize(msg.Width-4, msg.Height-6)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SetlistView:
			return m.handleSetlistKeys(msg)
		case PickerView:
			return m.handlePickerKeys(msg)
		case KeyView:
			return m.handleKeyInput(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSheetLoaded:
		data := msg.data.(sheetLoaded)
		if data.err != nil {
			m.logger.Error("failed to load event", "event", m.eventID, "error", data.err)
			m.err = data.err
			return m, nil
		}
		m.sheet = data.sheet
		m.setlist = data.sheet.Setlist
		m.loaded = true
		m.clampCursor()

	case MsgSetlistSaved:
		data := msg.data.(setlistSaved)
		if data.err != nil {
			m.logger.Warn("setlist edit rejected", "event", m.eventID, "error", data.err)
			m.err = data.err
			m.status = ""
			return m, nil
		}
		m.setlist = data.setlist
		m.cursor = data.cursor
		m.clampCursor()
		m.err = nil
		m.status = data.status

	case MsgCandidatesLoaded:
		data := msg.data.(candidatesLoaded)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		if len(data.songs) == 0 {
			m.err = nil
			m.status = "every song in the repertoire is already in this setlist"
			return m, nil
		}
		m.picker = newSongList(data.songs, m.width-4, m.height-6)
		m.view = PickerView
		m.err = nil
		m.status = ""
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if !m.loaded {
		if m.err != nil {
			return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
		}
		return "Loading setlist..."
	}

	switch m.view {
	case PickerView:
		return m.renderPicker()
	case KeyView:
		return m.renderKeyInput()
	default:
		return m.renderSetlist()
	}
}

func (m *Model) handleSetlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}
	if !m.loaded {
		return m, nil
	}

	n := m.setlist.Len()
	switch {
	case key.Matches(msg, m.keys.up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.down):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.add):
		return m, m.loadCandidates()
	}

	if n == 0 {
		return m, nil
	}

	index := m.cursor
	switch {
	case key.Matches(msg, m.keys.moveUp):
		return m, m.save(max(index-1, 0), "moved up", func() (setlist.Setlist, error) {
			return m.editor.Move(m.eventID, index, setlist.Up)
		})
	case key.Matches(msg, m.keys.moveDown):
		return m, m.save(min(index+1, n-1), "moved down", func() (setlist.Setlist, error) {
			return m.editor.Move(m.eventID, index, setlist.Down)
		})
	case key.Matches(msg, m.keys.remove):
		return m, m.save(index, "removed", func() (setlist.Setlist, error) {
			return m.editor.Remove(m.eventID, index)
		})
	case key.Matches(msg, m.keys.medley):
		entry, _ := m.setlist.At(index)
		status := "added to a new medley"
		if entry.IsMedley {
			status = "removed from medley"
		}
		return m, m.save(index, status, func() (setlist.Setlist, error) {
			return m.editor.ToggleMedley(m.eventID, index, !entry.IsMedley, 0)
		})
	case key.Matches(msg, m.keys.joinMedley):
		above, err := m.setlist.At(index - 1)
		if err != nil || !above.IsMedley {
			m.err = errNoMedleyAbove
			return m, nil
		}
		return m, m.save(index, fmt.Sprintf("joined medley %d", above.MedleyGroup), func() (setlist.Setlist, error) {
			return m.editor.ToggleMedley(m.eventID, index, true, above.MedleyGroup)
		})
	case key.Matches(msg, m.keys.editKey):
		entry, _ := m.setlist.At(index)
		m.keyInput.SetValue(entry.KeyPlayed)
		m.keyInput.CursorEnd()
		m.view = KeyView
		return m, m.keyInput.Focus()
	}
	return m, nil
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
			m.view = SetlistView
			return m, nil
		case key.Matches(msg, m.keys.enter):
			item, ok := m.picker.SelectedItem().(songItem)
			if !ok {
				return m, nil
			}
			m.view = SetlistView
			return m, m.save(m.setlist.Len(), "added "+item.song.Name, func() (setlist.Setlist, error) {
				return m.editor.Add(m.eventID, item.song.ID(), setlist.AddOptions{})
			})
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleKeyInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.keyInput.Blur()
		m.view = SetlistView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.keyInput.Blur()
		m.view = SetlistView
		index, value := m.cursor, strings.TrimSpace(m.keyInput.Value())
		return m, m.save(index, "key updated", func() (setlist.Setlist, error) {
			return m.editor.SetKey(m.eventID, index, value)
		})
	}

	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *Model) clampCursor() {
	if m.cursor >= m.setlist.Len() {
		m.cursor = m.setlist.Len() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) loadSheet() tea.Cmd {
	return func() tea.Msg {
		sheet, err := m.editor.Detail(m.eventID)
		return sheetLoadedMsg(sheet, err)
	}
}

func (m *Model) loadCandidates() tea.Cmd {
	return func() tea.Msg {
		songs, err := m.editor.Candidates(m.eventID)
		return candidatesLoadedMsg(songs, err)
	}
}

// save runs op and reports the result; cursor is where the selection lands if op succeeds.
func (m *Model) save(cursor int, status string, op func() (setlist.Setlist, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := op()
		return setlistSavedMsg(s, cursor, status, err)
	}
}

func (m *Model) renderSetlist() string {
	var b strings.Builder

	event := m.sheet.Event
	header := fmt.Sprintf("%s · %s", event.Name, event.DateString())
	if band := m.sheet.BandName(); band != "" {
		header = fmt.Sprintf("%s · %s", band, header)
	}
	b.WriteString(styles.title.Render(header))
	b.WriteString("\n")

	if m.setlist.Len() == 0 {
		b.WriteString(styles.help.Render("No songs yet. Press a to add one."))
		b.WriteString("\n")
	}
	for i, e := range m.setlist.Entries() {
		b.WriteString(m.renderEntry(i, e))
		b.WriteString("\n")
	}

	if groups := m.setlist.MedleyGroups(); len(groups) > 0 {
		b.WriteString("\n")
		for _, g := range groups {
			b.WriteString(styles.medley.Render(fmt.Sprintf("Medley %d: %s", g.Number, g.Label())))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	b.WriteString("\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	return b.String()
}

func (m *Model) renderEntry(i int, e models.SetlistEntry) string {
	line := fmt.Sprintf("%2d. %s", e.Order, e.Song.Name)
	if k := e.Key(); k != "" {
		line += fmt.Sprintf(" (%s)", k)
	}
	if e.IsMedley {
		line += " " + styles.medley.Render(fmt.Sprintf("♪ medley %d", e.MedleyGroup))
	}

	if i == m.cursor {
		return styles.cursor.Render("> ") + line
	}
	return "  " + line
}

func (m *Model) renderFooter() string {
	switch {
	case m.err != nil:
		return styles.err.Render("Error: " + m.err.Error())
	case m.status != "":
		return styles.ok.Render(m.status)
	default:
		return styles.help.Render(fmt.Sprintf("%d songs, %d medleys", m.setlist.Len(), len(m.setlist.MedleyGroups())))
	}
}

func (m *Model) renderPicker() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n\n%s", m.picker.View(), helpView)
}

func (m *Model) renderKeyInput() string {
	entry, _ := m.setlist.At(m.cursor)
	title := styles.title.Render(fmt.Sprintf("Key for '%s'", entry.Song.Name))
	note := ""
	if entry.Song.OriginalKey != "" {
		note = styles.help.Render(fmt.Sprintf("original key %s, leave empty to use it", entry.Song.OriginalKey))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", title, m.keyInput.View(), note, helpView)
}
