package search

import "github.com/raphaelgruber/procview/internal/models"

// Expansion records which folders are expanded. The zero value has every
// folder collapsed.
type Expansion struct {
	open map[string]bool
}

// NewExpansion returns an expansion with every folder collapsed.
func NewExpansion() *Expansion {
	return &Expansion{open: make(map[string]bool)}
}

// Toggle flips the folder's state and returns the new state.
func (e *Expansion) Toggle(id string) bool {
	if e.open == nil {
		e.open = make(map[string]bool)
	}
	e.open[id] = !e.open[id]
	return e.open[id]
}

// IsExpanded reports whether the folder is expanded.
func (e *Expansion) IsExpanded(id string) bool {
	return e.open[id]
}

// ExpandMatches expands every folder of an already filtered tree so each
// match is visible.
func (e *Expansion) ExpandMatches(filtered []models.FolderTree) {
	if e.open == nil {
		e.open = make(map[string]bool)
	}
	var walk func([]models.FolderTree)
	walk = func(folders []models.FolderTree) {
		for _, f := range folders {
			e.open[f.ID] = true
			walk(f.Children)
		}
	}
	walk(filtered)
}

// ExpandAll expands every folder in tree.
func (e *Expansion) ExpandAll(tree []models.FolderTree) {
	e.ExpandMatches(tree)
}

// CollapseAll collapses every folder.
func (e *Expansion) CollapseAll() {
	e.open = make(map[string]bool)
}
