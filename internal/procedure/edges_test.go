package procedure

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raphaelgruber/procview/internal/models"
)

func TestEdges(t *testing.T) {
	items := []Item{
		{ID: "s1", Kind: Step},
		{ID: "d1", Kind: Decision, Answers: []models.Answer{
			{Text: "Yes", Associate: "s2"},
			{Text: "No", Associate: "endStep"},
			{Text: "Maybe", Associate: "gone"},
		}},
		{ID: "d2", Kind: Decision},
		{ID: "s2", Kind: Step},
		{ID: "end", Kind: End},
	}

	edges := Edges(items)

	assert.Equal(t, []Edge{
		{From: 0, To: 1, Kind: Sequential},
		{From: 1, To: 3, Kind: Branch, Label: "Yes"},
		{From: 1, To: 4, Kind: Branch, Label: "No"},
		{From: 1, To: -1, Kind: Branch, Label: "Maybe"},
		{From: 2, To: 3, Kind: Sequential},
		{From: 3, To: 4, Kind: Sequential},
	}, edges)

	assert.True(t, edges[3].Dangling())
	assert.Len(t, Outgoing(edges, 1), 3)
	assert.Empty(t, Outgoing(edges, 4))
}

func TestEdges_OnlyTerminal(t *testing.T) {
	assert.Empty(t, Edges([]Item{{Kind: End}}))
}
