// Package markdown converts the constrained markdown dialect produced by
// the generation phases into HTML. A single line-based pass serves both
// output modes; the modes differ only in the presentational classes
// injected on each tag.
package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

type Mode int

const (
	// ModeEditor produces the lightly classed HTML loaded into the
	// article editor.
	ModeEditor Mode = iota
	// ModePreview produces the fully styled read-only preview.
	ModePreview
)

var (
	headingPattern  = regexp.MustCompile(`^(#+)\s*(.*)`)
	bulletPattern   = regexp.MustCompile(`^[-*]\s+(.*)`)
	orderedPattern  = regexp.MustCompile(`^\d+\.\s+(.*)`)
	boldPattern     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern   = regexp.MustCompile(`\*(.*?)\*`)
	linkPattern     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)]+)\)`)
	bareURLPattern  = regexp.MustCompile(`https?://[^\s<]+`)
	fenceReplacer   = strings.NewReplacer("```markdown", "", "```html", "", "```", "")
	placeholderTmpl = "\x00link%d\x00"
)

type classSet struct {
	headings  map[int]string
	ul        string
	ol        string
	li        string
	table     string
	cell      string
	paragraph string
	strong    string
	em        string
	link      string
	autolink  bool
}

var editorClasses = classSet{
	headings:  map[int]string{},
	ul:        "list-disc pl-5 my-2",
	ol:        "list-decimal pl-5 my-2",
	table:     "min-w-full border border-gray-200 my-4 text-sm",
	cell:      "border p-2",
	paragraph: "mb-4",
	link:      "text-blue-600 underline font-medium",
}

var previewClasses = classSet{
	headings: map[int]string{
		1: "text-3xl font-extrabold mb-6 text-gray-900",
		2: "text-xl font-bold mb-4 mt-8 text-blue-900 border-b pb-2",
		3: "text-lg font-bold mb-3 mt-6 text-gray-900 border-l-4 border-purple-500 pl-3",
		4: "text-base font-semibold mb-2 mt-4 text-gray-800",
	},
	ul:        "list-disc pl-5 my-2",
	ol:        "list-decimal pl-5 my-2",
	li:        "ml-4 mb-2 text-gray-700",
	table:     "min-w-full border border-gray-200 my-4 text-sm",
	cell:      "border p-2",
	paragraph: "mb-4 text-gray-700 leading-relaxed",
	strong:    "font-semibold text-gray-900",
	em:        "text-gray-800",
	link:      "text-blue-600 hover:text-blue-800 hover:underline",
	autolink:  true,
}

// RenderForEditor converts markdown into the editor's HTML.
func RenderForEditor(text string) string {
	return render(text, editorClasses)
}

// RenderForPreview converts markdown into the styled preview HTML.
func RenderForPreview(text string) string {
	return render(text, previewClasses)
}

// Render dispatches on mode; unknown modes fall back to editor output.
func Render(text string, mode Mode) string {
	if mode == ModePreview {
		return RenderForPreview(text)
	}
	return RenderForEditor(text)
}

func render(text string, classes classSet) string {
	if text == "" {
		return ""
	}

	text = strings.TrimSpace(fenceReplacer.Replace(text))

	var html strings.Builder
	var listTag string
	inTable := false

	closeList := func() {
		if listTag != "" {
			html.WriteString("</" + listTag + ">")
			listTag = ""
		}
	}
	closeTable := func() {
		if inTable {
			html.WriteString("</tbody></table>")
			inTable = false
		}
	}

	for _, rawLine := range strings.Split(text, "\n") {
		line := strings.TrimSpace(rawLine)

		if strings.HasPrefix(line, "|") {
			if !inTable {
				closeList()
				html.WriteString(openTag("table", classes.table) + "<tbody>")
				inTable = true
			}
			if strings.Contains(line, "---") {
				continue
			}
			html.WriteString("<tr>")
			for _, cell := range strings.Split(line, "|") {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				html.WriteString(openTag("td", classes.cell) + renderInline(cell, classes) + "</td>")
			}
			html.WriteString("</tr>")
			continue
		}
		closeTable()

		if line == "" {
			closeList()
			continue
		}

		if strings.HasPrefix(line, "#") {
			if match := headingPattern.FindStringSubmatch(line); match != nil {
				closeList()
				level := len(match[1])
				if level > 6 {
					level = 6
				}
				tag := fmt.Sprintf("h%d", level)
				html.WriteString(openTag(tag, classes.headings[level]) + renderInline(match[2], classes) + "</" + tag + ">")
				continue
			}
		}

		if match := bulletPattern.FindStringSubmatch(line); match != nil {
			if listTag != "ul" {
				closeList()
				html.WriteString(openTag("ul", classes.ul))
				listTag = "ul"
			}
			html.WriteString(openTag("li", classes.li) + renderInline(match[1], classes) + "</li>")
			continue
		}

		if match := orderedPattern.FindStringSubmatch(line); match != nil {
			if listTag != "ol" {
				closeList()
				html.WriteString(openTag("ol", classes.ol))
				listTag = "ol"
			}
			html.WriteString(openTag("li", classes.li) + renderInline(match[1], classes) + "</li>")
			continue
		}

		closeList()

		// Lines that already look like an HTML tag pass through as-is.
		if strings.HasPrefix(line, "<") && strings.HasSuffix(line, ">") {
			html.WriteString(line)
			continue
		}

		html.WriteString(openTag("p", classes.paragraph) + renderInline(line, classes) + "</p>")
	}

	closeList()
	closeTable()

	return html.String()
}

// renderInline applies bold, italic and link formatting. Explicit
// markdown links are swapped for placeholders before the bare-URL pass
// so an already linked URL is never wrapped a second time.
func renderInline(text string, classes classSet) string {
	var anchors []string

	text = linkPattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := linkPattern.FindStringSubmatch(match)
		anchor := fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer"%s>%s</a>`,
			parts[2], classAttr(classes.link), parts[1])
		placeholder := fmt.Sprintf(placeholderTmpl, len(anchors))
		anchors = append(anchors, anchor)
		return placeholder
	})

	text = boldPattern.ReplaceAllString(text, "<strong"+classAttr(classes.strong)+">$1</strong>")
	text = italicPattern.ReplaceAllString(text, "<em"+classAttr(classes.em)+">$1</em>")

	if classes.autolink {
		text = bareURLPattern.ReplaceAllStringFunc(text, func(url string) string {
			return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer"%s>%s</a>`,
				url, classAttr(classes.link), url)
		})
	}

	for index, anchor := range anchors {
		text = strings.Replace(text, fmt.Sprintf(placeholderTmpl, index), anchor, 1)
	}

	return text
}

func openTag(tag, class string) string {
	return "<" + tag + classAttr(class) + ">"
}

func classAttr(class string) string {
	if class == "" {
		return ""
	}
	return ` class="` + class + `"`
}
