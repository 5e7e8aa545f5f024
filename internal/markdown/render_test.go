package markdown

import (
	"strings"
	"testing"
)

func TestRenderEmptyInput(t *testing.T) {
	if got := RenderForEditor(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := RenderForPreview(""); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestRenderStripsCodeFences(t *testing.T) {
	input := "```markdown\n# Title\n```"
	got := RenderForEditor(input)

	if strings.Contains(got, "```") {
		t.Errorf("fence markers should be stripped, got %q", got)
	}
	if !strings.Contains(got, "<h1>Title</h1>") {
		t.Errorf("expected h1, got %q", got)
	}
}

func TestRenderHeadingLevels(t *testing.T) {
	got := RenderForEditor("# One\n## Two\n####### Deep")

	if !strings.Contains(got, "<h1>One</h1>") || !strings.Contains(got, "<h2>Two</h2>") {
		t.Errorf("unexpected headings: %q", got)
	}
	// Depth beyond six clamps to h6.
	if !strings.Contains(got, "<h6>Deep</h6>") {
		t.Errorf("expected clamped h6, got %q", got)
	}
}

func TestRenderLists(t *testing.T) {
	input := "- first\n- second\n\n1. one\n2. two"
	got := RenderForEditor(input)

	if strings.Count(got, "<ul") != 1 || strings.Count(got, "</ul>") != 1 {
		t.Errorf("expected one ul, got %q", got)
	}
	if strings.Count(got, "<ol") != 1 || strings.Count(got, "</ol>") != 1 {
		t.Errorf("expected one ol, got %q", got)
	}
	if strings.Count(got, "<li") != 4 {
		t.Errorf("expected four items, got %q", got)
	}
}

func TestRenderListTypeSwitchCloses(t *testing.T) {
	// A bullet item directly followed by a numbered item must close the
	// ul before opening the ol.
	got := RenderForEditor("- bullet\n1. numbered")

	ulClose := strings.Index(got, "</ul>")
	olOpen := strings.Index(got, "<ol")
	if ulClose == -1 || olOpen == -1 || ulClose > olOpen {
		t.Errorf("ul must close before ol opens: %q", got)
	}
}

func TestRenderTableSkipsSeparatorRow(t *testing.T) {
	input := "| Name | Value |\n|---|---|\n| a | b |"
	got := RenderForEditor(input)

	if strings.Count(got, "<tr>") != 2 {
		t.Errorf("separator row should be skipped, got %q", got)
	}
	if !strings.Contains(got, "</tbody></table>") {
		t.Errorf("table should be closed, got %q", got)
	}
}

func TestRenderTableClosedAtEndOfInput(t *testing.T) {
	got := RenderForEditor("| only | row |")
	if !strings.HasSuffix(got, "</tbody></table>") {
		t.Errorf("trailing table must be closed, got %q", got)
	}
}

func TestRenderRawHTMLPassthrough(t *testing.T) {
	got := RenderForEditor("<div>kept as-is</div>")
	if !strings.Contains(got, "<div>kept as-is</div>") {
		t.Errorf("raw html line should pass through, got %q", got)
	}
	if strings.Contains(got, "<p") {
		t.Errorf("raw html line should not be wrapped in a paragraph, got %q", got)
	}
}

func TestRenderInlineFormatting(t *testing.T) {
	got := RenderForEditor("**bold** and *italic* and [site](https://example.com)")

	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("missing strong: %q", got)
	}
	if !strings.Contains(got, "<em>italic</em>") {
		t.Errorf("missing em: %q", got)
	}
	if !strings.Contains(got, `<a href="https://example.com"`) {
		t.Errorf("missing link: %q", got)
	}
}

func TestPreviewAutolinkBareURL(t *testing.T) {
	got := RenderForPreview("see https://example.com/page for details")

	if !strings.Contains(got, `<a href="https://example.com/page"`) {
		t.Errorf("bare url should be autolinked in preview mode, got %q", got)
	}
}

func TestPreviewAutolinkDoesNotDoubleWrap(t *testing.T) {
	got := RenderForPreview("[read this](https://example.com/page)")

	if strings.Count(got, "<a ") != 1 {
		t.Errorf("explicit link must not be wrapped again, got %q", got)
	}
	if !strings.Contains(got, ">read this</a>") {
		t.Errorf("anchor text lost: %q", got)
	}
}

func TestEditorModeSkipsAutolink(t *testing.T) {
	got := RenderForEditor("see https://example.com/page")
	if strings.Contains(got, "<a ") {
		t.Errorf("editor mode should not autolink bare urls, got %q", got)
	}
}

func TestModesShareStructureDifferInClasses(t *testing.T) {
	input := "## Section\npara text"
	editor := RenderForEditor(input)
	preview := RenderForPreview(input)

	if !strings.Contains(editor, "<h2>Section</h2>") {
		t.Errorf("editor h2 should carry no class, got %q", editor)
	}
	if !strings.Contains(preview, `<h2 class="`) {
		t.Errorf("preview h2 should carry classes, got %q", preview)
	}
	if !strings.Contains(editor, `<p class="mb-4">para text</p>`) {
		t.Errorf("unexpected editor paragraph: %q", editor)
	}
}

func TestBlankLineClosesList(t *testing.T) {
	got := RenderForEditor("- item\n\nparagraph")

	liClose := strings.Index(got, "</ul>")
	pOpen := strings.Index(got, "<p")
	if liClose == -1 || pOpen == -1 || liClose > pOpen {
		t.Errorf("blank line must close the list before the paragraph: %q", got)
	}
}
