// Package prompts builds the per-phase generation requests. Builders are
// pure: they assemble prompt text and generation options from session
// state and never call the network.
package prompts

import (
	"fmt"
	"strings"
	"time"

	"seo-strategist-pipeline/internal/models"
)

const (
	briefThinkingBudget     int32 = 16384
	frameworkThinkingBudget int32 = 8192
	evidenceThinkingBudget  int32 = 24000
	articleThinkingBudget   int32 = 32768
	chatThinkingBudget      int32 = 4096
	chatEditThinkingBudget  int32 = 8192

	briefExcerptLimit   = 2000
	articleExcerptLimit = 3000
	maxCompetitorURLs   = 5
)

// Request is one generation request: the prompt plus the per-phase
// options the client applies to the call.
type Request struct {
	Text           string
	UseGrounding   bool
	ThinkingBudget int32
	// WantConcepts switches the call to structured JSON output with
	// the image-concept response schema.
	WantConcepts bool
}

// FilterCompetitorURLs normalizes the competitor textarea: one URL per
// line, trimmed, scheme required, at most five, order preserved.
func FilterCompetitorURLs(raw string) []string {
	var urls []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "http") {
			continue
		}
		urls = append(urls, line)
		if len(urls) == maxCompetitorURLs {
			break
		}
	}
	return urls
}

func BuildCompetitorAnalysis(urls []string, outlines []models.CompetitorOutline) Request {
	var scraped strings.Builder
	for _, outline := range outlines {
		if !outline.Fetched {
			continue
		}
		scraped.WriteString(fmt.Sprintf("### %s\nTitle: %s\nHeadings:\n", outline.URL, outline.Title))
		for _, heading := range outline.Headings {
			scraped.WriteString("- " + heading + "\n")
		}
	}

	text := fmt.Sprintf(
		"Analyze these competitor URLs using Google Search and provide a structured report on their titles, headings, topics, and content gaps: \n%s",
		strings.Join(urls, "\n"))
	if scraped.Len() > 0 {
		text += "\n\n## SCRAPED PAGE OUTLINES\n" + scraped.String()
	}

	return Request{Text: text, UseGrounding: true}
}

func BuildBrief(inputs models.FormInputs, competitors []models.CompetitorAnalysis) Request {
	serpAnalysis := "Base on general SEO best practices."
	if len(competitors) > 0 {
		var sections []string
		for _, competitor := range competitors {
			sections = append(sections, fmt.Sprintf("### Competitor: %s\n%s", competitor.URL, competitor.Analysis))
		}
		serpAnalysis = strings.Join(sections, "\n\n")
	}

	text := fmt.Sprintf(`
# Content Brief Generator - Gemini 3 Pro Edition

## CONTEXT
You are the lead SEO Strategist. Create a detailed content blueprint.

## INPUTS
- Client: %s
- Target Keyword: %s
- SEO Title: %s
- Article Direction: %s
- Word Count: %s
- Location: %s
- Content Type: %s

## COMPETITIVE LANDSCAPE
%s

## COMPANY MISSION
%s

## OUTPUT SECTIONS
1. SEARCH INTENT (Why are they searching?)
2. TARGET PERSONA (Who are we talking to?)
3. COMPETITIVE EDGE (How do we win?)
4. STRUCTURED OUTLINE (H2s/H3s with word count targets and key concepts)
5. KEYWORD LIST (Primary + Secondary)
6. E-E-A-T REQUIREMENTS
7. RESEARCH THEMES (What facts do we need to verify?)

Total Length: ~1,500-2,000 words.
`,
		inputs.Client, inputs.TargetKeyword, inputs.SEOTitle, inputs.Direction,
		inputs.WordCountTarget, inputs.Location, inputs.ContentType,
		serpAnalysis, inputs.CompanyBrief)

	return Request{Text: text, ThinkingBudget: briefThinkingBudget}
}

func BuildResearchFramework(brief string, inputs models.FormInputs) Request {
	text := fmt.Sprintf(`
# Research Framework Designer

Create a deep research blueprint for the keyword: "%s".

Brief Context: %s

Deliver:
1. Topic Deep Dive (narrative explanation)
2. Nuanced Questions (The stuff people actually ask but is hard to find)
3. Specific Entities to verify (Laws, stats, agencies)
4. Differentiation strategy (What others miss)
`,
		inputs.TargetKeyword, truncate(brief, briefExcerptLimit))

	return Request{Text: text, ThinkingBudget: frameworkThinkingBudget}
}

func BuildEvidenceResearch(framework string, inputs models.FormInputs) Request {
	text := fmt.Sprintf(`
# Evidence-Based Deep Research Phase

Use Google Search to find verified, high-authority data for:
%s

RULES:
- Find at least 10 authoritative sources (.gov, .edu, official reports).
- DO NOT cite competitors.
- Extract specific stats and legal provisions.
- Every claim must have a clickable link [Title](URL).

Current Year: %d
Location focus: %s
`,
		framework, time.Now().Year(), inputs.Location)

	return Request{Text: text, UseGrounding: true, ThinkingBudget: evidenceThinkingBudget}
}

func BuildArticle(brief, research string, inputs models.FormInputs, instructions string) Request {
	title := inputs.SEOTitle
	if title == "" {
		title = inputs.TargetKeyword
	}

	userNotes := ""
	if instructions != "" {
		userNotes = "## USER NOTES\n" + instructions + "\n"
	}

	text := fmt.Sprintf(`
## ROLE: ELITE HUMAN-LIKE WRITER (GEMINI 3 PRO)
Write a definitive article for "%s".

## GUIDELINES
%s
%s
%s
%s

## RESOURCES
<STRATEGIC_BRIEF>
%s
</STRATEGIC_BRIEF>

<RESEARCH_DOSSIER>
%s
</RESEARCH_DOSSIER>

%s
Write a high-retention, authoritative, and helpful article. Use strict Markdown.
`,
		title, SpokenLanguageGuide, AntiDetectionGuide, BannedTerms, CitationRules,
		brief, research, userNotes)

	return Request{Text: text, ThinkingBudget: articleThinkingBudget}
}

func BuildImageConcepts(content, style, aspectRatio, suggestions string) Request {
	if suggestions == "" {
		suggestions = "None"
	}

	text := fmt.Sprintf(`
# Blog Cover Image Prompt Generator v2.1

## CONTEXT
Article Content: %s
Preferred Style: %s
Aspect Ratio: %s
User Suggestions: %s

## TASK
Generate 5 unique, strategically differentiated cover image prompts for Google Gemini (Nano Banana).

## DIFFERENTIATION FRAMEWORK
- Concept 1: Literal/Direct (Subject explicit)
- Concept 2: Metaphorical/Symbolic (Theme representation)
- Concept 3: Human-Centric (Emotional impact)
- Concept 4: Environmental/Contextual (Industry context)
- Concept 5: Data/Abstract (Conceptual visualization)

## RULES
- 2 of the 5 concepts (preferably 1 and 3) MUST incorporate the user's "Suggestions" if provided.
- Use narrative paragraphs for prompts (50-100 words).
- Start with the subject.
- Describe lighting, mood, and composition.
- Include aspect ratio "%s" in the narrative.
- Use "Without [elements]" for exclusions.
- Output ONLY valid JSON in the following format:
{
  "prompts": [
    {
      "id": "unique-id-1",
      "title": "Short title",
      "rationale": "Why this works",
      "gemini_prompt": "Complete narrative prompt"
    }
  ]
}
`,
		truncate(content, articleExcerptLimit), style, aspectRatio, suggestions, aspectRatio)

	return Request{Text: text, WantConcepts: true}
}

// BuildChatSystem builds the first turn of a chat call. Edit requests
// demand the three-marker response envelope; plain questions only get
// the document context.
func BuildChatSystem(contextText string, inputs models.FormInputs, editRequest bool) Request {
	if editRequest {
		text := fmt.Sprintf(`You are an expert AI editor. Update the following document based on user request.
Return exactly in this structure:
---EXPLANATION---
Explain what you did.
---UPDATED_CONTENT---
[The full updated document]
---END---

Context: %s`, contextText)
		return Request{Text: text, ThinkingBudget: chatEditThinkingBudget}
	}

	text := fmt.Sprintf("Context: %s\nClient: %s", contextText, inputs.Client)
	return Request{Text: text, ThinkingBudget: chatThinkingBudget}
}

var editIntentKeywords = []string{
	"change", "update", "modify", "edit", "rewrite",
	"replace", "remove", "add", "fix", "revise",
}

// IsEditIntent reports whether a chat message asks for a document edit.
func IsEditIntent(message string) bool {
	lowered := strings.ToLower(message)
	for _, keyword := range editIntentKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
