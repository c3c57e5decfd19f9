package search

import "github.com/raphaelgruber/procview/internal/models"

// RowKind distinguishes folder rows from procedure rows.
type RowKind int

const (
	FolderRow RowKind = iota
	ProcedureRow
)

// Row is one visible line of the folder browser.
type Row struct {
	Kind      RowKind
	Depth     int
	Folder    *models.FolderTree    // set for folder rows
	Procedure *models.ProcedureNode // set for procedure rows
	Expanded  bool
}

// Label returns the display name of the row.
func (r Row) Label() string {
	if r.Kind == FolderRow {
		return r.Folder.Name
	}
	return r.Procedure.Name
}

// Flatten lists the rows visible under the given expansion: every top-level
// folder, and the procedures then subfolders of each expanded folder.
func Flatten(tree []models.FolderTree, exp *Expansion) []Row {
	var rows []Row
	var walk func([]models.FolderTree, int)
	walk = func(folders []models.FolderTree, depth int) {
		for i := range folders {
			f := &folders[i]
			open := exp != nil && exp.IsExpanded(f.ID)
			rows = append(rows, Row{Kind: FolderRow, Depth: depth, Folder: f, Expanded: open})
			if !open {
				continue
			}
			for j := range f.Procedures {
				rows = append(rows, Row{Kind: ProcedureRow, Depth: depth + 1, Procedure: &f.Procedures[j]})
			}
			walk(f.Children, depth+1)
		}
	}
	walk(tree, 0)
	return rows
}
