package gitlab

import (
	"context"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/thomas-vilte/gitlab-simple/internal/models"
)

// ListIssues returns every issue of the project matching filter.
func (c *Client) ListIssues(ctx context.Context, projectID int, filter models.IssueFilter) ([]models.Issue, error) {
	opt := gl.ListProjectIssuesOptions{}
	if filter.State != "" {
		opt.State = gl.Ptr(filter.State)
	}
	if len(filter.Labels) > 0 {
		opt.Labels = labelOptions(filter.Labels)
	}
	if filter.AssigneeID != nil {
		opt.AssigneeID = gl.AssigneeID(*filter.AssigneeID)
	}

	found, err := listAll(ctx, "list issues", func(page gl.ListOptions, opts ...gl.RequestOptionFunc) ([]*gl.Issue, *gl.Response, error) {
		opt.ListOptions = page
		return c.api.Issues.ListProjectIssues(projectID, &opt, opts...)
	})
	if err != nil {
		return nil, err
	}

	issues := make([]models.Issue, 0, len(found))
	for _, i := range found {
		issues = append(issues, toIssue(i))
	}
	return issues, nil
}

// GetIssue fetches an issue by IID (project-scoped issue number)
func (c *Client) GetIssue(ctx context.Context, projectID, iid int) (*models.Issue, error) {
	i, err := call(ctx, "get issue", func(opts ...gl.RequestOptionFunc) (*gl.Issue, *gl.Response, error) {
		return c.api.Issues.GetIssue(projectID, iid, opts...)
	})
	if err != nil {
		return nil, err
	}
	issue := toIssue(i)
	return &issue, nil
}

func (c *Client) CreateIssue(ctx context.Context, projectID int, input models.NewIssue) (*models.Issue, error) {
	opt := &gl.CreateIssueOptions{
		Title:       gl.Ptr(input.Title),
		Description: input.Description,
	}
	if len(input.Labels) > 0 {
		opt.Labels = labelOptions(input.Labels)
	}
	if input.AssigneeID != nil {
		opt.AssigneeIDs = &[]int{*input.AssigneeID}
	}

	i, err := call(ctx, "create issue", func(opts ...gl.RequestOptionFunc) (*gl.Issue, *gl.Response, error) {
		return c.api.Issues.CreateIssue(projectID, opt, opts...)
	})
	if err != nil {
		return nil, err
	}
	issue := toIssue(i)
	return &issue, nil
}

// UpdateIssue sends only the fields set in patch. An empty label list removes
// every label.
func (c *Client) UpdateIssue(ctx context.Context, projectID, iid int, patch models.IssueUpdate) (*models.Issue, error) {
	opt := &gl.UpdateIssueOptions{
		Title:       patch.Title,
		Description: patch.Description,
		StateEvent:  patch.StateEvent,
	}
	if patch.Labels != nil {
		opt.Labels = labelOptions(*patch.Labels)
	}
	if patch.AssigneeID != nil {
		opt.AssigneeIDs = &[]int{*patch.AssigneeID}
	}

	i, err := call(ctx, "update issue", func(opts ...gl.RequestOptionFunc) (*gl.Issue, *gl.Response, error) {
		return c.api.Issues.UpdateIssue(projectID, iid, opt, opts...)
	})
	if err != nil {
		return nil, err
	}
	issue := toIssue(i)
	return &issue, nil
}

// CreateNote adds a comment (note) to an issue
func (c *Client) CreateNote(ctx context.Context, projectID, iid int, body string) (*models.Note, error) {
	n, err := call(ctx, "create comment", func(opts ...gl.RequestOptionFunc) (*gl.Note, *gl.Response, error) {
		return c.api.Notes.CreateIssueNote(projectID, iid, &gl.CreateIssueNoteOptions{Body: gl.Ptr(body)}, opts...)
	})
	if err != nil {
		return nil, err
	}
	note := toNote(n)
	return &note, nil
}

// ListNotes returns the comments of an issue, oldest first.
func (c *Client) ListNotes(ctx context.Context, projectID, iid int) ([]models.Note, error) {
	found, err := listAll(ctx, "list comments", func(page gl.ListOptions, opts ...gl.RequestOptionFunc) ([]*gl.Note, *gl.Response, error) {
		return c.api.Notes.ListIssueNotes(projectID, iid, &gl.ListIssueNotesOptions{
			ListOptions: page,
			OrderBy:     gl.Ptr("created_at"),
			Sort:        gl.Ptr("asc"),
		}, opts...)
	})
	if err != nil {
		return nil, err
	}

	notes := make([]models.Note, 0, len(found))
	for _, n := range found {
		notes = append(notes, toNote(n))
	}
	return notes, nil
}

// labelOptions encodes labels the way GitLab expects them. GitLab reads an
// empty string, not an empty list, as "no labels".
func labelOptions(labels []string) *gl.LabelOptions {
	if len(labels) == 0 {
		return &gl.LabelOptions{""}
	}
	opt := gl.LabelOptions(labels)
	return &opt
}

func toIssue(i *gl.Issue) models.Issue {
	issue := models.Issue{
		IID:         i.IID,
		Title:       i.Title,
		State:       i.State,
		Description: i.Description,
		Labels:      []string(i.Labels),
		WebURL:      i.WebURL,
	}
	if i.Author != nil {
		issue.Author = models.User{ID: i.Author.ID, Username: i.Author.Username, Name: i.Author.Name}
	}
	if i.Assignee != nil {
		issue.Assignee = &models.User{ID: i.Assignee.ID, Username: i.Assignee.Username, Name: i.Assignee.Name}
	}
	if i.Milestone != nil {
		issue.Milestone = &models.Milestone{Title: i.Milestone.Title}
	}
	if i.CreatedAt != nil {
		issue.CreatedAt = *i.CreatedAt
	}
	return issue
}

func toNote(n *gl.Note) models.Note {
	note := models.Note{
		ID:     n.ID,
		Author: models.User{ID: n.Author.ID, Username: n.Author.Username, Name: n.Author.Name},
		Body:   n.Body,
		System: n.System,
	}
	if n.CreatedAt != nil {
		note.CreatedAt = *n.CreatedAt
	}
	return note
}
