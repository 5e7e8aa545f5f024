package services

import (
	"strings"
	"testing"

	"seo-strategist-pipeline/internal/models"
)

func TestParseChatResponseWithEnvelope(t *testing.T) {
	reply := `---EXPLANATION---
Tightened the intro.
---UPDATED_CONTENT---
# New Document
Body text.
---END---`

	result := parseChatResponse(reply, true)

	if !result.HasEdit {
		t.Fatal("expected an edit result")
	}
	if result.Response != "Tightened the intro." {
		t.Errorf("unexpected explanation: %q", result.Response)
	}
	if !strings.HasPrefix(result.EditedContent, "# New Document") {
		t.Errorf("unexpected content: %q", result.EditedContent)
	}
	if strings.Contains(result.EditedContent, "---END---") {
		t.Error("end marker must be stripped from content")
	}
}

func TestParseChatResponseMissingMarkersDegrades(t *testing.T) {
	reply := "I shortened the intro as requested, here is a summary of the change."
	result := parseChatResponse(reply, true)

	if result.HasEdit {
		t.Error("reply without envelope must not count as an edit")
	}
	if result.Response != reply {
		t.Errorf("plain reply should pass through, got %q", result.Response)
	}
}

func TestParseChatResponseMissingExplanation(t *testing.T) {
	reply := "---UPDATED_CONTENT---\nnew body\n---END---"
	result := parseChatResponse(reply, true)

	if !result.HasEdit || result.EditedContent != "new body" {
		t.Fatalf("expected edit with content, got %+v", result)
	}
	if result.Response != "Document updated." {
		t.Errorf("expected default explanation, got %q", result.Response)
	}
}

func TestParseChatResponsePlainRequestIgnoresMarkers(t *testing.T) {
	reply := "---UPDATED_CONTENT---\nsomething\n---END---"
	result := parseChatResponse(reply, false)

	if result.HasEdit {
		t.Error("non-edit requests never produce edits")
	}
}

func TestStripJSONFences(t *testing.T) {
	fenced := "```json\n{\"prompts\":[]}\n```"
	if got := stripJSONFences(fenced); got != `{"prompts":[]}` {
		t.Errorf("unexpected output: %q", got)
	}
	bare := `{"a":1}`
	if got := stripJSONFences(bare); got != bare {
		t.Errorf("unfenced input must pass through, got %q", got)
	}
}

func conceptJSON(count int) string {
	var items []string
	for index := 0; index < count; index++ {
		items = append(items, `{"id":"c`+string(rune('0'+index))+`","title":"T","rationale":"R","gemini_prompt":"P"}`)
	}
	return `{"prompts":[` + strings.Join(items, ",") + `]}`
}

func TestParseConceptsExactlyFive(t *testing.T) {
	concepts, err := parseConcepts(conceptJSON(5))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(concepts) != 5 {
		t.Fatalf("expected 5 concepts, got %d", len(concepts))
	}
	if concepts[0].ID != "c0" || concepts[0].PromptText != "P" {
		t.Errorf("field mapping wrong: %+v", concepts[0])
	}
}

func TestParseConceptsWrongCount(t *testing.T) {
	_, err := parseConcepts(conceptJSON(3))
	if err == nil {
		t.Fatal("expected error for wrong concept count")
	}
	if models.KindOf(err) != models.ErrorKindGeneration {
		t.Errorf("expected generation error, got %v", err)
	}
}

func TestParseConceptsInvalidJSON(t *testing.T) {
	_, err := parseConcepts("not json at all")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if models.KindOf(err) != models.ErrorKindGeneration {
		t.Errorf("expected generation error, got %v", err)
	}
}

func TestParseConceptsFillsMissingID(t *testing.T) {
	raw := `{"prompts":[
		{"id":"","title":"A","rationale":"r","gemini_prompt":"p"},
		{"id":"b","title":"B","rationale":"r","gemini_prompt":"p"},
		{"id":"c","title":"C","rationale":"r","gemini_prompt":"p"},
		{"id":"d","title":"D","rationale":"r","gemini_prompt":"p"},
		{"id":"e","title":"E","rationale":"r","gemini_prompt":"p"}
	]}`

	concepts, err := parseConcepts(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if concepts[0].ID == "" {
		t.Error("missing id should be generated")
	}
}
