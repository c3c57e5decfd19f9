// Package procedure turns a procedure document into the ordered item list the
// viewer traverses and resolves answer targets against it.
package procedure

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/raphaelgruber/procview/internal/models"
)

// ErrUnresolvedAnswer is logged when an answer's target is not in the item
// list. It is never returned to the navigation layer.
var ErrUnresolvedAnswer = errors.New("unresolved answer target")

const (
	defaultEndTitle = "End Step"
	defaultEndInfo  = "Untitled End Step"
)

// Kind tags what an item is.
type Kind int

const (
	Step Kind = iota
	Decision
	End
)

func (k Kind) String() string {
	switch k {
	case Step:
		return "step"
	case Decision:
		return "decision"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Item is one traversable element of a procedure.
type Item struct {
	ID      string
	Kind    Kind
	Title   string
	Info    string // rich-text markup
	Answers []models.Answer
}

// HasAnswers reports whether the item offers branching answers.
func (it Item) HasAnswers() bool {
	return it.Kind == Decision && len(it.Answers) > 0
}

// BuildItems flattens the document's units into items and appends exactly one
// terminal item. Units with neither steps nor decisions are skipped.
func BuildItems(doc models.ProcedureNode, logger *slog.Logger) []Item {
	if logger == nil {
		logger = slog.Default()
	}

	items := make([]Item, 0, len(doc.Procedures)+1)
	for i, unit := range doc.Procedures {
		switch {
		case unit.Steps != nil:
			items = append(items, Item{
				ID:    unit.ID,
				Kind:  Step,
				Title: unit.Steps.Title,
				Info:  unit.Steps.StepInfo,
			})
		case unit.Decisions != nil:
			items = append(items, Item{
				ID:      unit.ID,
				Kind:    Decision,
				Title:   unit.Decisions.Title,
				Info:    unit.Decisions.DecisionInfo,
				Answers: append([]models.Answer(nil), unit.Decisions.Answers...),
			})
		default:
			logger.Warn("skipping malformed procedure unit",
				"procedure", doc.ID, "unit", unit.ID, "index", i)
		}
	}

	return append(items, endItem(doc.EndProcedure))
}

func endItem(end *models.Step) Item {
	it := Item{
		ID:    uuid.NewString(),
		Kind:  End,
		Title: defaultEndTitle,
		Info:  defaultEndInfo,
	}
	if end != nil {
		if end.Title != "" {
			it.Title = end.Title
		}
		if end.StepInfo != "" {
			it.Info = end.StepInfo
		}
	}
	return it
}

// Resolve maps an answer to the index of the item it targets. The end-step
// sentinel always resolves to the terminal item.
func Resolve(answer models.Answer, items []Item) (int, bool) {
	if len(items) == 0 {
		return -1, false
	}
	if answer.TargetsEnd() {
		return len(items) - 1, true
	}
	for i, it := range items {
		if it.ID == answer.Associate {
			return i, true
		}
	}
	return -1, false
}

// ResolveLogged is Resolve with failures logged at WARN.
func ResolveLogged(answer models.Answer, items []Item, logger *slog.Logger) (int, bool) {
	idx, ok := Resolve(answer, items)
	if !ok {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("answer target not found",
			"answer", answer.ID, "target", answer.Associate, "error", ErrUnresolvedAnswer)
	}
	return idx, ok
}
