package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yabatech/campusbot/internal/knowledge"
)

// KnowledgeText is the free-text document written by WriteKnowledge.
const KnowledgeText = `Yaba College of Technology was established in 1947.
The Registry handles admissions: admissions@yabatech.edu.ng.
The ICT help desk resets portal passwords.`

// KnowledgeData is the structured document written by WriteKnowledge.
const KnowledgeData = `{
  "departments": [
    {
      "name": "Computer Science",
      "school": "School of Technology",
      "requirements": {"olevel": "Five credits including English and Mathematics", "utme": "Mathematics, Physics, English"}
    }
  ],
  "contacts": {"registry": "admissions@yabatech.edu.ng"}
}`

// WriteKnowledge writes a small knowledge text and data file into a temp
// directory and returns their paths.
func WriteKnowledge(t *testing.T) knowledge.Sources {
	t.Helper()
	dir := t.TempDir()
	src := knowledge.Sources{
		TextPath: filepath.Join(dir, "knowledge.txt"),
		DataPath: filepath.Join(dir, "data.json"),
	}
	if err := os.WriteFile(src.TextPath, []byte(KnowledgeText), 0o644); err != nil {
		t.Fatalf("writing knowledge text: %v", err)
	}
	if err := os.WriteFile(src.DataPath, []byte(KnowledgeData), 0o644); err != nil {
		t.Fatalf("writing knowledge data: %v", err)
	}
	return src
}

// NewKnowledge loads the fixture written by WriteKnowledge.
func NewKnowledge(t *testing.T) *knowledge.Base {
	t.Helper()
	kb, err := knowledge.Load(WriteKnowledge(t))
	if err != nil {
		t.Fatalf("loading knowledge fixture: %v", err)
	}
	return kb
}
