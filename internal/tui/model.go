// Package tui is the interactive procedure viewer. Every tab reads the
// position owned by a single navigation controller.
package tui

import (
	"fmt"
	"log/slog"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/navigation"
	"github.com/raphaelgruber/procview/internal/procedure"
)

// Tab identifies a view surface.
type Tab int

const (
	TabProcedure Tab = iota
	TabContents
	TabMap
	TabSchematics
	TabInfo
	tabCount
)

var tabNames = [tabCount]string{"Procedure", "Contents", "Process Map", "Schematics", "Process Info"}

func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return "unknown"
	}
	return tabNames[t]
}

const defaultWidth = 80

// loadedMsg ends the loading screen.
type loadedMsg struct{}

// surfaces is view state kept in step with the controller through its
// subscription. It is shared by every copy of the model.
type surfaces struct {
	contentsCursor int
	mapCursor      int
	answerCursor   int
	lastEvent      navigation.Event
	events         int
}

// Options configures the viewer.
type Options struct {
	Loading navigation.LoadingPolicy
	Logger  *slog.Logger
	// Feedback enables the f key, which quits the viewer so the caller can
	// prompt for a feedback message.
	Feedback bool
}

// Model is the bubbletea model of the viewer.
type Model struct {
	doc     models.ProcedureNode
	items   []procedure.Item
	edges   []procedure.Edge
	ctrl    *navigation.Controller
	view    *surfaces
	logger  *slog.Logger
	loading navigation.LoadingPolicy

	tab         Tab
	isLoading   bool
	startedAt   time.Time
	imageCursor int
	width       int
	height      int
	progress    progress.Model
	theme       Theme

	feedbackEnabled   bool
	feedbackRequested bool
	quitting          bool
}

// New builds the viewer for doc.
func New(doc models.ProcedureNode, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	items := procedure.BuildItems(doc, logger)
	ctrl := navigation.New(len(items), func(a models.Answer) (int, bool) {
		return procedure.ResolveLogged(a, items, logger)
	})

	view := &surfaces{}
	ctrl.Subscribe(func(ev navigation.Event) {
		view.contentsCursor = ev.Position
		view.mapCursor = ev.Position
		if ev.Position != ev.Previous {
			view.answerCursor = 0
		}
		view.lastEvent = ev
		view.events++
	})

	return Model{
		doc:             doc,
		items:           items,
		edges:           procedure.Edges(items),
		ctrl:            ctrl,
		view:            view,
		logger:          logger,
		loading:         opts.Loading,
		tab:             TabProcedure,
		isLoading:       true,
		startedAt:       time.Now(),
		width:           defaultWidth,
		progress:        progress.New(progress.WithDefaultBlend(), progress.WithWidth(40)),
		theme:           defaultTheme,
		feedbackEnabled: opts.Feedback,
	}
}

// Controller exposes the navigation controller driving the viewer.
func (m Model) Controller() *navigation.Controller {
	return m.ctrl
}

// Tab returns the visible tab.
func (m Model) Tab() Tab {
	return m.tab
}

// Loading reports whether the loading screen is showing.
func (m Model) Loading() bool {
	return m.isLoading
}

// FeedbackRequested reports whether the user quit to leave feedback.
func (m Model) FeedbackRequested() bool {
	return m.feedbackRequested
}

// Init starts the loading timer.
func (m Model) Init() tea.Cmd {
	wait := m.loading.Remaining(m.startedAt, time.Now())
	if wait <= 0 {
		return tea.Batch(func() tea.Msg { return loadedMsg{} }, m.progress.Init())
	}
	return tea.Batch(
		tea.Tick(wait, func(time.Time) tea.Msg { return loadedMsg{} }),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg.String())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		m.isLoading = false
		m.ctrl.OpenAt(0)
		return m, nil

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(key string) (Model, tea.Cmd) {
	switch key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	}
	if m.isLoading {
		return m, nil
	}

	switch key {
	case "tab":
		m.tab = (m.tab + 1) % tabCount
		return m, nil
	case "shift+tab":
		m.tab = (m.tab + tabCount - 1) % tabCount
		return m, nil
	case "1", "2", "3", "4", "5":
		m.tab = Tab(key[0] - '1')
		return m, nil
	case "f":
		if m.feedbackEnabled {
			m.feedbackRequested = true
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.tab {
	case TabProcedure:
		m.procedureKey(key)
	case TabContents:
		m.listKey(key, &m.view.contentsCursor, len(m.items))
	case TabMap:
		m.listKey(key, &m.view.mapCursor, len(m.items))
	case TabSchematics:
		switch key {
		case "up", "k":
			m.imageCursor = clamp(m.imageCursor-1, len(m.doc.Images))
		case "down", "j":
			m.imageCursor = clamp(m.imageCursor+1, len(m.doc.Images))
		}
	}
	return m, nil
}

func (m *Model) procedureKey(key string) {
	switch key {
	case "left", "h", "p":
		m.ctrl.Previous()
	case "right", "l", "n", "space", " ":
		m.ctrl.Next()
	case "home", "g":
		m.ctrl.Seek(0)
	case "end", "G":
		m.ctrl.Seek(m.ctrl.Count() - 1)
	case "up", "k":
		m.view.answerCursor = clamp(m.view.answerCursor-1, len(m.current().Answers))
	case "down", "j":
		m.view.answerCursor = clamp(m.view.answerCursor+1, len(m.current().Answers))
	case "enter":
		it := m.current()
		if it.HasAnswers() {
			m.ctrl.JumpToAnswer(it.Answers[clamp(m.view.answerCursor, len(it.Answers))])
		}
	case "esc":
		m.ctrl.CloseDetail()
		m.tab = TabContents
	}
}

// listKey drives the contents and process map lists; selecting an entry opens
// it in the pager.
func (m *Model) listKey(key string, cursor *int, n int) {
	switch key {
	case "up", "k":
		*cursor = clamp(*cursor-1, n)
	case "down", "j":
		*cursor = clamp(*cursor+1, n)
	case "enter":
		if m.ctrl.OpenAt(*cursor) {
			m.tab = TabProcedure
		}
	}
}

func (m Model) current() procedure.Item {
	pos := m.ctrl.Position()
	if pos < 0 || pos >= len(m.items) {
		return procedure.Item{}
	}
	return m.items[pos]
}

// View renders the viewer.
func (m Model) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m Model) renderContent() string {
	if m.quitting {
		return ""
	}
	if m.isLoading {
		return m.renderLoading()
	}

	header := m.renderHeader()
	var body string
	switch m.tab {
	case TabProcedure:
		body = m.renderPager()
	case TabContents:
		body = m.renderContents()
	case TabMap:
		body = m.renderMap()
	case TabSchematics:
		body = m.renderSchematics()
	case TabInfo:
		body = m.renderInfo()
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n", header, body, m.renderFooter())
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
