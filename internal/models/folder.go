package models

// FolderTree is one folder of the procedure library with its nested folders.
type FolderTree struct {
	ID         string          `json:"_id"`
	Name       string          `json:"name"`
	Parent     string          `json:"parent,omitempty"`
	Procedures []ProcedureNode `json:"procedures"`
	Children   []FolderTree    `json:"children"`
}

// FolderEnvelope is the wire shape of the folder tree endpoint and of the
// cached copy kept in local storage.
type FolderEnvelope struct {
	Data []FolderTree `json:"data"`
}
