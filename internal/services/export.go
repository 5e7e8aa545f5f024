package services

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"seo-strategist-pipeline/internal/models"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// BuildExportDocument assembles the downloadable markdown brief for the
// current session.
func BuildExportDocument(session *models.WorkspaceSession, now time.Time) string {
	research := session.Research
	if research == "" {
		research = "Research not yet completed."
	}

	return fmt.Sprintf(`# SEO Content Brief
## Client: %s
## Target Keyword: %s
## Generated: %s

---

# Strategic Brief

%s

---

# Research Dossier

%s
`,
		session.Inputs.Client,
		session.Inputs.TargetKeyword,
		now.Format("1/2/2006, 3:04:05 PM"),
		session.Brief,
		research)
}

// ExportFilename builds the download name: client and keyword joined,
// whitespace collapsed to hyphens, lower-cased.
func ExportFilename(session *models.WorkspaceSession) string {
	name := fmt.Sprintf("%s-%s-brief.md", session.Inputs.Client, session.Inputs.TargetKeyword)
	name = whitespacePattern.ReplaceAllString(name, "-")
	return strings.ToLower(name)
}
