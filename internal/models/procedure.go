package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// EndStepSentinel is the answer association that targets the terminal item.
const EndStepSentinel = "endStep"

// Step is a single instructional unit.
type Step struct {
	Title    string `json:"title"`
	StepInfo string `json:"stepInfo"`
}

// Answer is one labeled choice on a decision.
type Answer struct {
	Text      string `json:"_ans"`
	Type      string `json:"type,omitempty"`
	Associate string `json:"_associate"`
	ID        string `json:"_id,omitempty"`
}

// TargetsEnd reports whether the answer points at the terminal item.
func (a Answer) TargetsEnd() bool {
	return a.Associate == EndStepSentinel
}

// Decision is a branching unit. Answers may be nil when upstream data omits them.
type Decision struct {
	Title        string   `json:"title,omitempty"`
	DecisionInfo string   `json:"decisionInfo,omitempty"`
	Answers      []Answer `json:"answer"`
}

// ProcedureUnit holds exactly one of Steps or Decisions on well-formed input.
type ProcedureUnit struct {
	ID        string    `json:"_id"`
	Steps     *Step     `json:"steps,omitempty"`
	Decisions *Decision `json:"decisions,omitempty"`
}

// SafetyNote is shown before a procedure is worked through.
type SafetyNote struct {
	Title string `json:"title"`
	Info  string `json:"procedureNoteInfo"`
}

// Image is a schematic attached to a procedure.
type Image struct {
	Name string `json:"name"`
	Src  string `json:"src"`
	ID   string `json:"_id,omitempty"`
}

// Access grants a user visibility of a procedure.
type Access struct {
	User      string `json:"user"`
	IsAllowed bool   `json:"isAllowed"`
	ID        string `json:"_id,omitempty"`
}

// FolderRef is the folder a procedure is filed under. The backend sends
// either the populated folder or just its id.
type FolderRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts a folder object or a bare id string.
func (f *FolderRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*f = FolderRef{}
		return json.Unmarshal(data, &f.ID)
	}
	type plain FolderRef
	return json.Unmarshal(data, (*plain)(f))
}

// Label returns the folder name, or its id when only the id is known.
func (f FolderRef) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// ProcedureNode is a procedure document as delivered by the backend.
// It is treated as immutable once received.
type ProcedureNode struct {
	ID            string          `json:"_id"`
	Name          string          `json:"name"`
	Author        string          `json:"author,omitempty"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
	Version       int             `json:"__v"`
	URL           string          `json:"url,omitempty"`
	Procedures    []ProcedureUnit `json:"procedures"`
	EndProcedure  *Step           `json:"endProcedure,omitempty"`
	SafetyNote    SafetyNote      `json:"procedureSafetyNote"`
	Images        []Image         `json:"images"`
	Users         []Access        `json:"users,omitempty"`
	Folder        *FolderRef      `json:"folderId,omitempty"`
}

// Created parses CreatedAt, returning the zero time when absent or malformed.
func (p ProcedureNode) Created() time.Time {
	return parseTimestamp(p.CreatedAt)
}

// Updated parses UpdatedAt, returning the zero time when absent or malformed.
func (p ProcedureNode) Updated() time.Time {
	return parseTimestamp(p.UpdatedAt)
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
