// Package models defines the wire types exchanged with the procedure backend
// and persisted in local storage.
package models

import "strings"

// NameContains reports whether the procedure name contains term, ignoring case.
func NameContains(p ProcedureNode, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), strings.ToLower(term))
}
