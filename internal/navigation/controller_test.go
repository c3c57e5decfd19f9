package navigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/raphaelgruber/procview/internal/models"
	"github.com/raphaelgruber/procview/internal/procedure"
)

func record(c *Controller) *[]Event {
	var events []Event
	c.Subscribe(func(ev Event) { events = append(events, ev) })
	return &events
}

func TestController_Bounds(t *testing.T) {
	c := New(3, nil)
	events := record(c)

	assert.Equal(t, 0, c.Position())
	assert.False(t, c.CanPrevious())
	assert.False(t, c.Previous())
	assert.False(t, c.Seek(-1))
	assert.False(t, c.Seek(3))
	assert.Empty(t, *events)

	assert.True(t, c.Seek(2))
	assert.False(t, c.CanNext())
	assert.False(t, c.Next())
	assert.Equal(t, 2, c.Position())
	require.Len(t, *events, 1)
	assert.Equal(t, Event{Position: 2, Previous: 0, Source: SourceSeek}, (*events)[0])
}

func TestController_NextPrevious(t *testing.T) {
	c := New(3, nil)
	events := record(c)

	assert.True(t, c.Next())
	assert.True(t, c.Next())
	assert.True(t, c.Previous())

	assert.Equal(t, 1, c.Position())
	require.Len(t, *events, 3)
	assert.Equal(t, SourceNext, (*events)[0].Source)
	assert.Equal(t, SourcePrev, (*events)[2].Source)
	assert.Equal(t, 2, (*events)[2].Previous)
}

func TestController_SeekSamePositionDoesNotNotify(t *testing.T) {
	c := New(2, nil)
	events := record(c)

	assert.True(t, c.Seek(0))
	assert.Empty(t, *events)
}

func TestController_EmptyProcedure(t *testing.T) {
	c := New(0, nil)
	assert.False(t, c.Seek(0))
	assert.False(t, c.Next())
	assert.False(t, c.OpenAt(0))
	assert.Equal(t, 0, c.Count())
}

func TestController_SubscribersNotifiedInOrder(t *testing.T) {
	c := New(4, nil)
	var order []string
	c.Subscribe(func(Event) { order = append(order, "pager") })
	c.Subscribe(func(Event) { order = append(order, "toc") })
	c.Subscribe(func(Event) { order = append(order, "map") })

	c.Seek(1)

	assert.Equal(t, []string{"pager", "toc", "map"}, order)
}

func TestController_Unsubscribe(t *testing.T) {
	c := New(4, nil)
	calls := 0
	unsubscribe := c.Subscribe(func(Event) { calls++ })
	other := record(c)

	c.Seek(1)
	unsubscribe()
	unsubscribe()
	c.Seek(2)

	assert.Equal(t, 1, calls)
	assert.Len(t, *other, 2)
}

func TestController_CallbackMayReadState(t *testing.T) {
	c := New(3, nil)
	var seen []int
	c.Subscribe(func(ev Event) { seen = append(seen, c.Position()) })

	c.Seek(2)

	assert.Equal(t, []int{2}, seen)
}

func TestController_OpenAtAndCloseDetail(t *testing.T) {
	c := New(3, nil)
	events := record(c)

	assert.True(t, c.OpenAt(0))
	assert.True(t, c.DetailVisible())
	require.Len(t, *events, 1)
	assert.Equal(t, Event{Position: 0, Previous: 0, DetailVisible: true, Source: SourceOpen}, (*events)[0])

	assert.True(t, c.OpenAt(0))
	assert.Len(t, *events, 1)

	c.CloseDetail()
	c.CloseDetail()
	assert.False(t, c.DetailVisible())
	require.Len(t, *events, 2)
	assert.Equal(t, SourceDetail, (*events)[1].Source)
	assert.False(t, (*events)[1].DetailVisible)
}

func TestController_JumpToAnswer(t *testing.T) {
	items := procedure.BuildItems(models.ProcedureNode{
		Procedures: []models.ProcedureUnit{
			{ID: "s1", Steps: &models.Step{Title: "One"}},
			{ID: "s2", Steps: &models.Step{Title: "Two"}},
			{ID: "d1", Decisions: &models.Decision{Title: "Done?", Answers: []models.Answer{
				{Text: "Yes", Associate: models.EndStepSentinel},
				{Text: "Redo", Associate: "s1"},
				{Text: "Broken", Associate: "missing"},
			}}},
		},
	}, nil)
	c := New(len(items), func(a models.Answer) (int, bool) { return procedure.Resolve(a, items) })
	events := record(c)
	c.Seek(2)

	assert.True(t, c.JumpToAnswer(items[2].Answers[0]))
	assert.Equal(t, 3, c.Position())
	assert.Equal(t, "End Step", items[c.Position()].Title)

	assert.True(t, c.JumpToAnswer(items[2].Answers[1]))
	assert.Equal(t, 0, c.Position())

	assert.False(t, c.JumpToAnswer(items[2].Answers[2]))
	assert.Equal(t, 0, c.Position())
	assert.Len(t, *events, 3)
	assert.Equal(t, SourceAnswer, (*events)[2].Source)
}

func TestController_JumpWithoutResolver(t *testing.T) {
	c := New(3, nil)
	assert.False(t, c.JumpToAnswer(models.Answer{Associate: models.EndStepSentinel}))
}

func TestController_PositionStaysInBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 20).Draw(t, "count")
		c := New(n, nil)
		ops := rapid.SliceOfN(rapid.IntRange(0, 3), 0, 50).Draw(t, "ops")
		for i, op := range ops {
			before := c.Position()
			switch op {
			case 0:
				c.Next()
			case 1:
				c.Previous()
			case 2:
				target := rapid.IntRange(-5, 25).Draw(t, "target")
				if !c.Seek(target) && c.Position() != before {
					t.Fatalf("op %d: rejected seek moved position", i)
				}
			case 3:
				c.OpenAt(rapid.IntRange(-5, 25).Draw(t, "open"))
			}
			pos := c.Position()
			if n > 0 && (pos < 0 || pos >= n) {
				t.Fatalf("op %d: position %d out of [0,%d)", i, pos, n)
			}
			if n == 0 && pos != 0 {
				t.Fatalf("op %d: position %d on empty controller", i, pos)
			}
		}
	})
}

func TestLoadingPolicy_Remaining(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	p := DefaultLoadingPolicy()
	assert.Equal(t, 1500*time.Millisecond, p.Remaining(start, start))
	assert.Equal(t, 500*time.Millisecond, p.Remaining(start, start.Add(time.Second)))
	assert.Zero(t, p.Remaining(start, start.Add(2*time.Second)))
	assert.Zero(t, LoadingPolicy{}.Remaining(start, start))
}
