package tui

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/navigation"
)

func sampleDoc() models.ProcedureNode {
	return models.ProcedureNode{
		ID:        "p1",
		Name:      "Pump Start",
		Author:    "Tess",
		CreatedAt: "2024-03-01T08:30:00.000Z",
		Version:   3,
		URL:       "http://backend/barcode/p1.png",
		SafetyNote: models.SafetyNote{
			Title: "Hot surfaces",
			Info:  "<p>Wear <b>gloves</b></p>",
		},
		Images: []models.Image{{Name: "P&ID", Src: "http://files/pump diagram.png"}},
		Procedures: []models.ProcedureUnit{
			{ID: "s1", Steps: &models.Step{Title: "Prime", StepInfo: "<p>Open the vent</p>"}},
			{ID: "s2", Steps: &models.Step{Title: "Start motor"}},
			{ID: "d1", Decisions: &models.Decision{Title: "Pressure ok?", Answers: []models.Answer{
				{Text: "Yes", Associate: models.EndStepSentinel},
				{Text: "Retry", Associate: "s1"},
				{Text: "Call engineer", Associate: "gone"},
			}}},
		},
	}
}

func newLoaded(t *testing.T) Model {
	t.Helper()
	m := New(sampleDoc(), Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	updated, _ := m.Update(loadedMsg{})
	return updated.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = m.handleKey(k)
	}
	return m
}

func TestModel_LoadingGate(t *testing.T) {
	m := New(sampleDoc(), Options{})
	assert.True(t, m.Loading())
	assert.Contains(t, m.renderContent(), "Loading procedure")

	m = press(m, "right", "tab")
	assert.Equal(t, 0, m.Controller().Position())
	assert.Equal(t, TabProcedure, m.Tab())
	assert.False(t, m.Controller().DetailVisible())

	updated, _ := m.Update(loadedMsg{})
	m = updated.(Model)
	assert.False(t, m.Loading())
	assert.True(t, m.Controller().DetailVisible())
}

func TestModel_Init(t *testing.T) {
	m := New(sampleDoc(), Options{Loading: navigation.LoadingPolicy{}})
	assert.NotNil(t, m.Init())
}

func TestModel_Pager(t *testing.T) {
	m := newLoaded(t)
	assert.Contains(t, m.renderContent(), "1 / 4")
	assert.Contains(t, m.renderContent(), "Open the vent")

	m = press(m, "left")
	assert.Equal(t, 0, m.Controller().Position())

	m = press(m, "right", "right")
	assert.Equal(t, 2, m.Controller().Position())
	view := m.renderContent()
	assert.Contains(t, view, "3 / 4")
	assert.Contains(t, view, "Pressure ok?")
	assert.Contains(t, view, "> Yes")
	assert.Contains(t, view, "(unavailable)")

	m = press(m, "right", "right")
	assert.Equal(t, 3, m.Controller().Position())
	assert.Contains(t, m.renderContent(), "End Step")
}

func TestModel_AnswerNavigation(t *testing.T) {
	m := newLoaded(t)
	m = press(m, "end")
	m = press(m, "left")
	require.Equal(t, 2, m.Controller().Position())

	m = press(m, "down", "enter")
	assert.Equal(t, 0, m.Controller().Position(), "Retry jumps back to the first step")

	m = press(m, "right", "right", "down", "down", "enter")
	assert.Equal(t, 2, m.Controller().Position(), "unresolved answer is a no-op")

	m = press(m, "up", "up", "up", "enter")
	assert.Equal(t, 3, m.Controller().Position())
}

func TestModel_AnswerCursorResetsOnMove(t *testing.T) {
	m := newLoaded(t)
	m = press(m, "right", "right", "down")
	assert.Equal(t, 1, m.view.answerCursor)

	m = press(m, "left", "right")
	assert.Equal(t, 0, m.view.answerCursor)
}

func TestModel_ContentsFollowsPosition(t *testing.T) {
	m := newLoaded(t)
	m = press(m, "right", "2")
	require.Equal(t, TabContents, m.Tab())
	assert.Equal(t, 1, m.view.contentsCursor)
	assert.Contains(t, m.renderContent(), ">  2. Start motor")

	m = press(m, "down", "down", "enter")
	assert.Equal(t, TabProcedure, m.Tab())
	assert.Equal(t, 3, m.Controller().Position())
	assert.Equal(t, 3, m.view.mapCursor, "process map follows the same position")
}

func TestModel_ProcessMap(t *testing.T) {
	m := newLoaded(t)
	m = press(m, "3")
	view := m.renderContent()

	assert.Contains(t, view, "[1] Prime")
	assert.Contains(t, view, "Yes → [4]")
	assert.Contains(t, view, "Retry → [1]")
	assert.Contains(t, view, "Call engineer → ?")

	m = press(m, "down", "enter")
	assert.Equal(t, 1, m.Controller().Position())
	assert.Equal(t, TabProcedure, m.Tab())
}

func TestModel_EscClosesDetail(t *testing.T) {
	m := newLoaded(t)
	m = press(m, "esc")
	assert.False(t, m.Controller().DetailVisible())
	assert.Equal(t, TabContents, m.Tab())
}

func TestModel_Tabs(t *testing.T) {
	m := newLoaded(t)
	m = press(m, "shift+tab")
	assert.Equal(t, TabInfo, m.Tab())
	assert.Contains(t, m.renderContent(), "Hot surfaces")
	assert.Contains(t, m.renderContent(), "Tess")

	m = press(m, "tab")
	assert.Equal(t, TabProcedure, m.Tab())

	m = press(m, "4")
	assert.Contains(t, m.renderContent(), "pump%20diagram.png")
}

func TestModel_FeedbackKey(t *testing.T) {
	m := newLoaded(t)
	m = press(m, "f")
	assert.False(t, m.FeedbackRequested())

	m = New(sampleDoc(), Options{Feedback: true})
	updated, _ := m.Update(loadedMsg{})
	m, cmd := updated.(Model).handleKey("f")
	assert.True(t, m.FeedbackRequested())
	assert.NotNil(t, cmd)
}

func TestModel_WindowSize(t *testing.T) {
	m := newLoaded(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 116, updated.(Model).contentWidth())
}

func TestModel_EmptyProcedure(t *testing.T) {
	m := New(models.ProcedureNode{Name: "Empty"}, Options{})
	updated, _ := m.Update(loadedMsg{})
	m = press(updated.(Model), "right", "left", "enter")

	assert.Equal(t, 0, m.Controller().Position())
	assert.Contains(t, m.renderContent(), "1 / 1")
	assert.Contains(t, m.renderContent(), "Untitled End Step")
}

func TestWritePlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlain(&buf, sampleDoc(), 60, slog.New(slog.NewTextHandler(io.Discard, nil))))
	out := buf.String()

	assert.Contains(t, out, "Pump Start\n==========")
	assert.Contains(t, out, "Created:   2024-03-01 08:30")
	assert.Contains(t, out, "[1/4] STEP: Prime")
	assert.Contains(t, out, "[3/4] DECISION: Pressure ok?")
	assert.Contains(t, out, "  - Yes -> 4")
	assert.Contains(t, out, "  - Call engineer -> ?")
	assert.Contains(t, out, "[4/4] END: End Step")
	assert.Contains(t, out, "P&ID: http://files/pump%20diagram.png")
}
