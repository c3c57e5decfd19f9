// Package search filters the folder/procedure tree by procedure name and
// tracks which folders are expanded for display.
package search

import (
	"strings"

	"github.com/raphaelgruber/procview/internal/models"
)

// Filter returns the subtree of folders that contain, directly or through a
// descendant, a procedure whose name contains term (case-insensitive). Folders
// keep only their matching procedures. A blank term returns tree unchanged.
// The input is never modified.
func Filter(tree []models.FolderTree, term string) []models.FolderTree {
	term = strings.TrimSpace(term)
	if term == "" {
		return tree
	}
	return filterFolders(tree, strings.ToLower(term))
}

func filterFolders(folders []models.FolderTree, lower string) []models.FolderTree {
	var out []models.FolderTree
	for _, f := range folders {
		if kept, ok := filterFolder(f, lower); ok {
			out = append(out, kept)
		}
	}
	return out
}

func filterFolder(f models.FolderTree, lower string) (models.FolderTree, bool) {
	var procs []models.ProcedureNode
	for _, p := range f.Procedures {
		if strings.Contains(strings.ToLower(p.Name), lower) {
			procs = append(procs, p)
		}
	}
	children := filterFolders(f.Children, lower)
	if len(procs) == 0 && len(children) == 0 {
		return models.FolderTree{}, false
	}
	return models.FolderTree{
		ID:         f.ID,
		Name:       f.Name,
		Parent:     f.Parent,
		Procedures: procs,
		Children:   children,
	}, true
}

// FindProcedure searches the whole tree for the procedure with id.
func FindProcedure(tree []models.FolderTree, id string) (models.ProcedureNode, bool) {
	for _, f := range tree {
		for _, p := range f.Procedures {
			if p.ID == id {
				return p, true
			}
		}
		if p, ok := FindProcedure(f.Children, id); ok {
			return p, true
		}
	}
	return models.ProcedureNode{}, false
}

// CountProcedures returns the number of procedures anywhere in the tree.
func CountProcedures(tree []models.FolderTree) int {
	n := 0
	for _, f := range tree {
		n += len(f.Procedures) + CountProcedures(f.Children)
	}
	return n
}
