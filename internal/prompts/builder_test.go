package prompts

import (
	"fmt"
	"strings"
	"testing"

	"seo-strategist-pipeline/internal/models"
)

func TestFilterCompetitorURLs(t *testing.T) {
	raw := "  https://a.example.com  \nnot-a-url\n\nhttp://b.example.com\nftp://skip.example.com"
	urls := FilterCompetitorURLs(raw)

	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(urls), urls)
	}
	if urls[0] != "https://a.example.com" || urls[1] != "http://b.example.com" {
		t.Errorf("order or trimming wrong: %v", urls)
	}
}

func TestFilterCompetitorURLsCapsAtFive(t *testing.T) {
	var lines []string
	for index := 0; index < 8; index++ {
		lines = append(lines, fmt.Sprintf("https://site%d.example.com", index))
	}
	urls := FilterCompetitorURLs(strings.Join(lines, "\n"))

	if len(urls) != 5 {
		t.Fatalf("expected cap of 5, got %d", len(urls))
	}
	if urls[4] != "https://site4.example.com" {
		t.Errorf("cap should keep the first five in order, got %v", urls)
	}
}

func TestBuildBriefIncludesCompetitorContext(t *testing.T) {
	inputs := models.FormInputs{Client: "Acme", TargetKeyword: "widgets"}
	competitors := []models.CompetitorAnalysis{{URL: "https://rival.example.com", Analysis: "strong on pricing"}}

	request := BuildBrief(inputs, competitors)

	if !strings.Contains(request.Text, "### Competitor: https://rival.example.com") {
		t.Error("competitor section missing from brief prompt")
	}
	if strings.Contains(request.Text, "general SEO best practices") {
		t.Error("fallback text should not appear when competitor data exists")
	}
	if request.ThinkingBudget != 16384 {
		t.Errorf("expected brief thinking budget 16384, got %d", request.ThinkingBudget)
	}
	if request.UseGrounding {
		t.Error("brief generation must not use grounding")
	}
}

func TestBuildBriefFallbackWithoutCompetitors(t *testing.T) {
	request := BuildBrief(models.FormInputs{TargetKeyword: "widgets"}, nil)
	if !strings.Contains(request.Text, "Base on general SEO best practices.") {
		t.Error("expected best-practices fallback without competitor data")
	}
}

func TestBuildResearchFrameworkTruncatesBrief(t *testing.T) {
	longBrief := strings.Repeat("x", 5000)
	request := BuildResearchFramework(longBrief, models.FormInputs{TargetKeyword: "widgets"})

	if strings.Contains(request.Text, strings.Repeat("x", 2001)) {
		t.Error("brief excerpt should be capped at 2000 characters")
	}
	if request.ThinkingBudget != 8192 {
		t.Errorf("expected framework budget 8192, got %d", request.ThinkingBudget)
	}
}

func TestBuildEvidenceResearchIsGrounded(t *testing.T) {
	request := BuildEvidenceResearch("framework text", models.FormInputs{Location: "California"})

	if !request.UseGrounding {
		t.Error("evidence phase must request grounding")
	}
	if !strings.Contains(request.Text, "at least 10 authoritative sources") {
		t.Error("source-count rule missing")
	}
	if !strings.Contains(request.Text, "Location focus: California") {
		t.Error("location missing from evidence prompt")
	}
	if request.ThinkingBudget != 24000 {
		t.Errorf("expected evidence budget 24000, got %d", request.ThinkingBudget)
	}
}

func TestBuildArticleUsesKeywordWhenTitleEmpty(t *testing.T) {
	inputs := models.FormInputs{TargetKeyword: "dog bite lawyer"}
	request := BuildArticle("brief", "research", inputs, "")

	if !strings.Contains(request.Text, `"dog bite lawyer"`) {
		t.Error("keyword should stand in for a missing SEO title")
	}
	if strings.Contains(request.Text, "## USER NOTES") {
		t.Error("user notes section should be absent without instructions")
	}
	if !strings.Contains(request.Text, "BANNED TERMS") {
		t.Error("writing guidelines missing from article prompt")
	}
	if request.ThinkingBudget != 32768 {
		t.Errorf("expected article budget 32768, got %d", request.ThinkingBudget)
	}
}

func TestBuildArticleIncludesInstructions(t *testing.T) {
	request := BuildArticle("brief", "research", models.FormInputs{SEOTitle: "Title"}, "shorter intro")
	if !strings.Contains(request.Text, "## USER NOTES\nshorter intro") {
		t.Error("instructions should appear under user notes")
	}
}

func TestBuildImageConceptsEmbedsAspectRatio(t *testing.T) {
	request := BuildImageConcepts("article body", "PHOTOREALISTIC", "16:9", "")

	if !request.WantConcepts {
		t.Error("image concepts call must request structured output")
	}
	if !strings.Contains(request.Text, `Include aspect ratio "16:9"`) {
		t.Error("aspect ratio missing from rules")
	}
	if !strings.Contains(request.Text, "User Suggestions: None") {
		t.Error("empty suggestions should read as None")
	}
}

func TestBuildChatSystemBudgets(t *testing.T) {
	plain := BuildChatSystem("doc", models.FormInputs{Client: "Acme"}, false)
	edit := BuildChatSystem("doc", models.FormInputs{Client: "Acme"}, true)

	if plain.ThinkingBudget != 4096 || edit.ThinkingBudget != 8192 {
		t.Errorf("unexpected chat budgets: plain=%d edit=%d", plain.ThinkingBudget, edit.ThinkingBudget)
	}
	if !strings.Contains(edit.Text, "---UPDATED_CONTENT---") {
		t.Error("edit system prompt must demand the response envelope")
	}
	if strings.Contains(plain.Text, "---UPDATED_CONTENT---") {
		t.Error("plain chat must not demand the envelope")
	}
}

func TestIsEditIntent(t *testing.T) {
	cases := map[string]bool{
		"Please update the outline":      true,
		"can you REWRITE section two":    true,
		"what does E-E-A-T mean here?":   false,
		"remove the pricing table":       true,
		"why did you pick this keyword?": false,
	}

	for message, want := range cases {
		if got := IsEditIntent(message); got != want {
			t.Errorf("IsEditIntent(%q) = %v, want %v", message, got, want)
		}
	}
}
