package engine

import (
	"context"
	"errors"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/logger"
	"github.com/thomas-vilte/gitlab-simple/internal/models"
	"github.com/thomas-vilte/gitlab-simple/internal/ui"
)

const defaultFileType = "txt"

func (r *run) listProjects(ctx context.Context) error {
	var projects []models.Project
	err := r.remote(func() error {
		var err error
		projects, err = r.gw.ListProjects(ctx)
		return err
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, []string{strconv.Itoa(p.ID), p.Name, p.WebURL})
	}

	header := []string{r.msg("header_id", nil), r.msg("header_name", nil), r.msg("header_url", nil)}
	return ui.RenderTable(r.out, r.msg("projects_title", nil), header, rows, r.opts.Width)
}

func (r *run) newSnippet(ctx context.Context) error {
	content := strings.TrimSpace(r.d.Content)
	if content == "" {
		text, err := r.prompter.Prompt(ctx)
		if err != nil {
			return err
		}
		content = text
	}

	fileType := strings.TrimPrefix(strings.TrimSpace(r.d.FileType), ".")
	if fileType == "" {
		fileType = defaultFileType
	}
	fileName := "snippet." + fileType

	title := strings.TrimSpace(r.d.Title)
	if title == "" {
		title = fileName
	}

	snippet, err := r.gw.CreateSnippet(ctx, r.project.ID, models.NewSnippet{
		Title:    title,
		FileName: fileName,
		Content:  content,
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "snippet created", "id", snippet.ID)
	r.success(r.msg("snippet_created", map[string]interface{}{"URL": snippet.WebURL}))
	return nil
}

// latestTrace prints the trace of the failed job with the highest id.
func (r *run) latestTrace(ctx context.Context) error {
	var trace []byte
	err := r.remote(func() error {
		jobs, err := r.gw.ListFailedJobs(ctx, r.project.ID)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			return domainErrors.ErrNoFailedJobs
		}

		latest := jobs[0]
		for _, job := range jobs[1:] {
			if job.ID > latest.ID {
				latest = job
			}
		}
		logger.Debug(ctx, "latest failed job", "job", latest.ID, "count", len(jobs))
		r.status(r.msg("spinner_trace", map[string]interface{}{"ID": latest.ID}))

		trace, err = r.gw.JobTrace(ctx, r.project.ID, latest.ID)
		return err
	})
	if err != nil {
		return err
	}

	_, err = r.out.Write(trace)
	return err
}

func (r *run) editIssue(ctx context.Context) error {
	var patch models.IssueUpdate

	if title := strings.TrimSpace(r.d.Title); title != "" {
		patch.Title = &title
	}

	if name := strings.TrimSpace(r.d.Assign); name != "" {
		id, err := r.resolveAssignee(ctx, name)
		if err != nil {
			return err
		}
		patch.AssigneeID = &id
	}

	if r.d.Labels != nil {
		labels := splitList(*r.d.Labels)
		if labels == nil {
			labels = []string{}
		}
		patch.Labels = &labels
	}

	if r.d.Editor {
		description, err := r.prompter.Prompt(ctx)
		if err != nil {
			return err
		}
		patch.Description = &description
	}

	if patch.IsEmpty() {
		return domainErrors.ErrNothingToUpdate
	}

	issue, err := r.gw.UpdateIssue(ctx, r.project.ID, r.iid, patch)
	if err != nil {
		return err
	}
	r.success(r.msg("issue_updated", map[string]interface{}{"IID": issue.IID}))
	return nil
}

func (r *run) newIssue(ctx context.Context) error {
	input := models.NewIssue{
		Title: strings.TrimSpace(r.d.Title),
	}

	if r.d.Labels != nil {
		input.Labels = splitList(*r.d.Labels)
	}

	if name := strings.TrimSpace(r.d.Assign); name != "" {
		id, err := r.resolveAssignee(ctx, name)
		if err != nil {
			return err
		}
		input.AssigneeID = &id
	}

	if r.d.Editor {
		description, err := r.prompter.Prompt(ctx)
		if err != nil {
			return err
		}
		input.Description = &description
	}

	issue, err := r.gw.CreateIssue(ctx, r.project.ID, input)
	if err != nil {
		return err
	}

	logger.Info(ctx, "issue created", "iid", issue.IID)
	r.success(r.msg("issue_created", map[string]interface{}{"IID": issue.IID}))
	return nil
}

// closeIssues closes every id in order. A failure is reported and the
// remaining ids are still attempted; closures are never rolled back.
func (r *run) closeIssues(ctx context.Context) error {
	var failures []error

	for _, iid := range r.closeIDs {
		state := models.StateEventClose
		_, err := r.gw.UpdateIssue(ctx, r.project.ID, iid, models.IssueUpdate{StateEvent: &state})
		if err != nil {
			logger.Warn(ctx, "failed to close issue", "iid", iid, "error", err)
			ui.PrintWarning(r.out, r.msg("issue_close_failed", map[string]interface{}{
				"IID":   iid,
				"Error": err.Error(),
			}))
			failures = append(failures, err)
			continue
		}

		r.success(r.msg("issue_closed", map[string]interface{}{"IID": iid}))
	}

	if len(failures) > 0 {
		return domainErrors.ErrCloseIssues.
			WithError(errors.Join(failures...)).
			WithContext("failed", len(failures))
	}
	r.success(r.msg("issues_all_closed", nil))
	return nil
}

func (r *run) commentIssue(ctx context.Context) error {
	return r.comment(ctx, strings.TrimSpace(r.d.CommentIssue))
}

func (r *run) longCommentIssue(ctx context.Context) error {
	body, err := r.prompter.Prompt(ctx)
	if err != nil {
		return err
	}
	return r.comment(ctx, body)
}

func (r *run) comment(ctx context.Context, body string) error {
	if _, err := r.gw.CreateNote(ctx, r.project.ID, r.iid, body); err != nil {
		return err
	}
	r.success(r.msg("comment_created", map[string]interface{}{"IID": r.iid}))
	return nil
}

func (r *run) viewIssue(ctx context.Context) error {
	var (
		issue *models.Issue
		notes []models.Note
	)
	err := r.remote(func() error {
		var err error
		if issue, err = r.gw.GetIssue(ctx, r.project.ID, r.iid); err != nil {
			return err
		}
		notes, err = r.gw.ListNotes(ctx, r.project.ID, r.iid)
		return err
	})
	if err != nil {
		return err
	}

	doc := BuildIssueDocument(r.translations, *issue, notes, r.opts.Now())
	_, err = r.out.Write([]byte(ui.RenderMarkdown(doc, r.opts.Width, r.opts.Styled)))
	return err
}

func (r *run) listIssues(ctx context.Context) error {
	filter := models.IssueFilter{State: models.StateOpened}

	if name := strings.TrimSpace(r.d.Assign); name != "" {
		id, err := r.resolveAssignee(ctx, name)
		if err != nil {
			return err
		}
		filter.AssigneeID = &id
	}
	if r.d.Labels != nil {
		filter.Labels = splitList(*r.d.Labels)
	}

	var issues []models.Issue
	err := r.remote(func() error {
		var err error
		issues, err = r.gw.ListIssues(ctx, r.project.ID, filter)
		return err
	})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(issues))
	for _, issue := range issues {
		rows = append(rows, []string{strconv.Itoa(issue.IID), issue.Title, strings.Join(issue.Labels, " ")})
	}

	header := []string{r.msg("header_iid", nil), r.msg("header_title", nil), r.msg("header_tags", nil)}
	return ui.RenderTable(r.out, r.msg("issues_title", nil), header, rows, r.opts.Width)
}

// resolveAssignee maps a display name to a user id. The first exact match wins.
func (r *run) resolveAssignee(ctx context.Context, name string) (int, error) {
	var user *models.User
	err := r.remote(func() error {
		var err error
		user, err = r.gw.FindUserByName(ctx, r.project.ID, name)
		return err
	})
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, domainErrors.ErrUserNotFound.WithContext("name", name)
	}

	logger.Debug(ctx, "assignee resolved", "name", name, "id", user.ID)
	return user.ID, nil
}
