package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNameContains(t *testing.T) {
	tests := []struct {
		name string
		proc string
		term string
		want bool
	}{
		{"exact", "Pump Reset", "Pump Reset", true},
		{"case insensitive", "Pump Reset", "pump", true},
		{"middle", "Main Pump Reset", "PUMP", true},
		{"no match", "Valve Check", "pump", false},
		{"empty term", "Valve Check", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NameContains(ProcedureNode{Name: tt.proc}, tt.term)
			if got != tt.want {
				t.Errorf("NameContains(%q, %q) = %v, want %v", tt.proc, tt.term, got, tt.want)
			}
		})
	}
}

func TestProcedureNodeDecode(t *testing.T) {
	raw := `{
		"_id": "p1", "name": "Reset", "author": "ops", "__v": 3,
		"createdAt": "2024-03-01T10:15:00.000Z", "updatedAt": "bogus",
		"url": "http://backend/qr/p1.png",
		"procedures": [
			{"_id": "u1", "steps": {"title": "Isolate", "stepInfo": "<p>x</p>"}},
			{"_id": "u2", "decisions": {"title": "Pressure ok?", "decisionInfo": "", "answer": [
				{"_ans": "Yes", "_associate": "endStep", "_id": "a1", "type": "end"}
			]}}
		],
		"procedureSafetyNote": {"title": "PPE", "procedureNoteInfo": "gloves"},
		"images": [{"name": "P&ID", "src": "http://img/1.png", "_id": "i1"}]
	}`

	var p ProcedureNode
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Version != 3 || p.Author != "ops" {
		t.Errorf("metadata not decoded: %+v", p)
	}
	if p.Procedures[0].Steps == nil || p.Procedures[0].Decisions != nil {
		t.Errorf("unit 0 should be a step")
	}
	if d := p.Procedures[1].Decisions; d == nil || len(d.Answers) != 1 || !d.Answers[0].TargetsEnd() {
		t.Errorf("unit 1 should be a decision targeting the end step")
	}
	if p.EndProcedure != nil {
		t.Errorf("endProcedure should be absent")
	}
	want := time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC)
	if !p.Created().Equal(want) {
		t.Errorf("Created() = %v, want %v", p.Created(), want)
	}
	if !p.Updated().IsZero() {
		t.Errorf("Updated() should be zero for malformed timestamp")
	}
}

func TestFolderRefDecode(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		want  *FolderRef
		label string
	}{
		{"populated", `{"_id":"p1","folderId":{"_id":"64f1","name":"Pumps"}}`, &FolderRef{ID: "64f1", Name: "Pumps"}, "Pumps"},
		{"bare id", `{"_id":"p1","folderId":"64f1"}`, &FolderRef{ID: "64f1"}, "64f1"},
		{"null", `{"_id":"p1","folderId":null}`, nil, ""},
		{"absent", `{"_id":"p1"}`, nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p ProcedureNode
			if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tt.want == nil {
				if p.Folder != nil {
					t.Errorf("Folder = %+v, want nil", p.Folder)
				}
				return
			}
			if p.Folder == nil || *p.Folder != *tt.want {
				t.Fatalf("Folder = %+v, want %+v", p.Folder, tt.want)
			}
			if got := p.Folder.Label(); got != tt.label {
				t.Errorf("Label() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestFolderTreeDecode_BareFolderID(t *testing.T) {
	raw := `[{"_id":"f1","name":"Pumps","procedures":[{"_id":"p1","name":"Start","folderId":"f1"}]}]`

	var tree []FolderTree
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(tree) != 1 || len(tree[0].Procedures) != 1 || tree[0].Procedures[0].Folder.ID != "f1" {
		t.Errorf("tree not decoded: %+v", tree)
	}
}
