package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/thomas-vilte/gitlab-simple/internal/i18n"
	"github.com/thomas-vilte/gitlab-simple/internal/models"
	"github.com/thomas-vilte/gitlab-simple/internal/ui"
)

// BuildIssueDocument composes the markdown shown by --view-issue: header,
// author line, optional metadata, description, then the comments in the
// order given.
func BuildIssueDocument(t *i18n.Translations, issue models.Issue, notes []models.Note, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s)\n\n", issue.Title, issue.State)
	fmt.Fprintf(&b, "*%s*\n\n", t.GetMessage("doc_opened_by", 0, map[string]interface{}{
		"Author": authorName(issue.Author),
		"Age":    ui.TimeAgo(issue.CreatedAt, now),
	}))

	var meta []string
	if issue.Milestone != nil && issue.Milestone.Title != "" {
		meta = append(meta, fmt.Sprintf("**%s:** %s", t.GetMessage("doc_milestone", 0, nil), issue.Milestone.Title))
	}
	if issue.Assignee != nil {
		meta = append(meta, fmt.Sprintf("**%s:** %s", t.GetMessage("doc_assignee", 0, nil), issue.Assignee.Name))
	}
	if len(issue.Labels) > 0 {
		meta = append(meta, fmt.Sprintf("**%s:** %s", t.GetMessage("doc_labels", 0, nil), strings.Join(issue.Labels, ", ")))
	}
	if len(meta) > 0 {
		// two trailing spaces keep one item per line in markdown
		b.WriteString(strings.Join(meta, "  \n"))
		b.WriteString("\n\n")
	}

	if description := strings.TrimSpace(issue.Description); description != "" {
		b.WriteString(description)
	} else {
		fmt.Fprintf(&b, "_%s_", t.GetMessage("doc_no_description", 0, nil))
	}
	b.WriteString("\n")

	if len(notes) == 0 {
		return b.String()
	}

	fmt.Fprintf(&b, "\n## %s\n", t.GetMessage("doc_comments", 0, nil))
	for _, note := range notes {
		fmt.Fprintf(&b, "\n### %s\n\n%s\n", t.GetMessage("doc_commented", 0, map[string]interface{}{
			"Author": note.Author.Name,
			"Age":    ui.TimeAgo(note.CreatedAt, now),
		}), strings.TrimSpace(note.Body))
	}

	return b.String()
}

func authorName(u models.User) string {
	if u.Username == "" {
		return u.Name
	}
	return fmt.Sprintf("%s (@%s)", u.Name, u.Username)
}
