package models

import (
	"testing"
)

func TestPhaseGatingStartsLocked(t *testing.T) {
	session := NewWorkspaceSession()

	if !session.PhaseAvailable(PhaseStrategy) {
		t.Error("strategy phase should always be available")
	}
	for _, phase := range []Phase{PhaseResearch, PhaseWriter, PhaseCover} {
		if session.PhaseAvailable(phase) {
			t.Errorf("phase %s should be locked before a brief exists", phase)
		}
	}
}

func TestPhaseGatingUnlockOrder(t *testing.T) {
	session := NewWorkspaceSession()

	session.Brief = "brief content"
	session.Unlock(PhaseResearch)

	if !session.PhaseAvailable(PhaseResearch) {
		t.Error("research should unlock once a brief exists")
	}
	if !session.PhaseAvailable(PhaseCover) {
		t.Error("cover should unlock once a brief exists")
	}
	if session.PhaseAvailable(PhaseWriter) {
		t.Error("writer should stay locked until research completes")
	}

	session.Research = "dossier"
	session.Unlock(PhaseWriter)

	if !session.PhaseAvailable(PhaseWriter) {
		t.Error("writer should unlock once research completes")
	}
}

func TestPhaseNeverRelocksOnEmptyEdit(t *testing.T) {
	session := NewWorkspaceSession()
	session.Brief = "brief content"
	session.Unlock(PhaseResearch)

	session.SetArtifact(PhaseStrategy, "")

	if !session.PhaseAvailable(PhaseResearch) {
		t.Error("editing the brief to empty must not re-lock research")
	}
}

func TestResetDerivedClearsDownstream(t *testing.T) {
	session := NewWorkspaceSession()
	session.Brief = "brief one"
	session.Research = "dossier"
	session.Article = "<p>article</p>"
	session.ImageConcepts = []ImageConcept{{ID: "c1", Title: "Concept"}}
	session.GroundingLinks = []GroundingLink{{Title: "src", URI: "https://example.com"}}
	session.AppendChat(ChatRoleUser, "hello")
	session.Unlock(PhaseCover)

	session.Brief = "brief two"
	session.ResetDerived()

	if session.Research != "" || session.Article != "" {
		t.Error("research and article should be cleared after a new brief")
	}
	if session.ImageConcepts != nil || session.GroundingLinks != nil {
		t.Error("concepts and grounding links should be cleared after a new brief")
	}
	if session.ChatMessages != nil {
		t.Error("chat transcript should be cleared after a new brief")
	}
	if session.Brief != "brief two" {
		t.Error("the new brief must survive the reset")
	}
	if !session.PhaseAvailable(PhaseResearch) {
		t.Error("research should remain available after the reset")
	}
	if session.PhaseAvailable(PhaseWriter) {
		t.Error("writer should be locked again after the reset")
	}
}

func TestResetBumpsRevision(t *testing.T) {
	session := NewWorkspaceSession()
	before := session.Revision

	session.HistoryID = "h1"
	session.Brief = "brief"
	session.Reset()

	if session.Revision != before+1 {
		t.Errorf("expected revision %d, got %d", before+1, session.Revision)
	}
	if session.Brief != "" || session.HistoryID != "" {
		t.Error("reset should clear the brief and history id")
	}
	if session.UnlockedThrough != PhaseStrategy {
		t.Errorf("expected watermark %s, got %s", PhaseStrategy, session.UnlockedThrough)
	}
}

func TestLoadHistoryEntryRestoresWatermark(t *testing.T) {
	session := NewWorkspaceSession()

	entry := NewHistoryEntry("Acme", "widgets", "brief", nil)
	entry.Research = "dossier"
	entry.Article = "<p>article</p>"
	session.LoadHistoryEntry(entry)

	if session.HistoryID != entry.ID {
		t.Errorf("expected history id %s, got %s", entry.ID, session.HistoryID)
	}
	if !session.PhaseAvailable(PhaseWriter) || !session.PhaseAvailable(PhaseCover) {
		t.Error("all phases should be available for a fully populated entry")
	}

	partial := NewHistoryEntry("Acme", "widgets", "brief", nil)
	session.LoadHistoryEntry(partial)
	if session.PhaseAvailable(PhaseWriter) {
		t.Error("writer should be locked for an entry without research")
	}
}

func TestConceptByID(t *testing.T) {
	session := NewWorkspaceSession()
	session.ImageConcepts = []ImageConcept{
		{ID: "a", Title: "First"},
		{ID: "b", Title: "Second"},
	}

	concept := session.ConceptByID("b")
	if concept == nil || concept.Title != "Second" {
		t.Fatal("expected to find concept b")
	}

	concept.IsLoading = true
	if !session.ImageConcepts[1].IsLoading {
		t.Error("ConceptByID should return a pointer into the session slice")
	}

	if session.ConceptByID("missing") != nil {
		t.Error("unknown id should return nil")
	}
}
