package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/raphaelgruber/procview/internal/models"
)

// Result reports how the viewer ended.
type Result struct {
	FeedbackRequested bool
	Position          int
}

// Run shows doc in the interactive viewer until the user quits.
func Run(doc models.ProcedureNode, opts Options) (Result, error) {
	p := tea.NewProgram(New(doc, opts))

	finalModel, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("viewer error: %w", err)
	}

	if m, ok := finalModel.(Model); ok {
		return Result{FeedbackRequested: m.FeedbackRequested(), Position: m.ctrl.Position()}, nil
	}
	return Result{}, nil
}
