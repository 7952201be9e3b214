package builder

import (
	"errors"
	"testing"

	"github.com/goliatone/go-formstudio/pkg/model"
)

func TestEditor_SessionFlow(t *testing.T) {
	ed := NewEditor(New(WithIDGenerator(sequentialIDs())), model.Document{})
	if ed.Dirty() {
		t.Fatalf("new editor should be clean")
	}

	q1, err := ed.Insert(model.FieldTypeQuestion, 0)
	if err != nil {
		t.Fatalf("insert q1: %v", err)
	}
	q2, err := ed.Insert(model.FieldTypeQuestion, 1)
	if err != nil {
		t.Fatalf("insert q2: %v", err)
	}
	if _, err := ed.Insert(model.FieldTypeEmail, 2); err != nil {
		t.Fatalf("insert email: %v", err)
	}
	if err := ed.UpdateOption(0, 0, OptionPatch{NextQuestion: &q2}); err != nil {
		t.Fatalf("branch: %v", err)
	}
	if !ed.Dirty() {
		t.Fatalf("editor should be dirty after edits")
	}

	issues := ed.Lint()
	if len(issues) != 1 || issues[0].Kind != IssueEphemeralTarget || issues[0].Field != q1 {
		t.Fatalf("expected one ephemeral target issue on q1, got %+v", issues)
	}

	if err := ed.Move(2, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := ed.Remove(2); err != nil {
		t.Fatalf("remove q2: %v", err)
	}
	doc := ed.Document()
	if len(doc.Fields) != 2 || doc.Fields[1].Identity != q1 {
		t.Fatalf("unexpected fields: %+v", doc.Fields)
	}
	if doc.Fields[1].Options[0].NextQuestion != nil {
		t.Fatalf("branch to removed question survived")
	}

	if err := ed.Move(5, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if got := len(ed.Document().Fields); got != 2 {
		t.Fatalf("failed op changed document: %d fields", got)
	}

	ed.SetMeta("Intake", "intake", "", model.StatusPublished)
	ed.MarkSaved(ed.Document())
	if ed.Dirty() {
		t.Fatalf("editor should be clean after MarkSaved")
	}
	if ed.Document().Title != "Intake" {
		t.Fatalf("meta not applied")
	}
}
