package gitlab

import (
	"bytes"
	"context"
	"io"

	gl "gitlab.com/gitlab-org/api/client-go"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/models"
)

// GetProject looks a project up by numeric id or namespace/project path.
func (c *Client) GetProject(ctx context.Context, ref string) (*models.Project, error) {
	p, err := call(ctx, "get project", func(opts ...gl.RequestOptionFunc) (*gl.Project, *gl.Response, error) {
		return c.api.Projects.GetProject(ref, nil, opts...)
	})
	if err != nil {
		return nil, err
	}
	project := toProject(p)
	return &project, nil
}

// ListProjects returns every project the token's user is a member of.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	found, err := listAll(ctx, "list projects", func(page gl.ListOptions, opts ...gl.RequestOptionFunc) ([]*gl.Project, *gl.Response, error) {
		return c.api.Projects.ListProjects(&gl.ListProjectsOptions{
			ListOptions: page,
			Membership:  gl.Ptr(true),
			Simple:      gl.Ptr(true),
			OrderBy:     gl.Ptr("id"),
			Sort:        gl.Ptr("asc"),
		}, opts...)
	})
	if err != nil {
		return nil, err
	}

	projects := make([]models.Project, 0, len(found))
	for _, p := range found {
		projects = append(projects, toProject(p))
	}
	return projects, nil
}

// FindUserByName scans the project's users and returns the first whose display
// name equals name exactly, or nil. Duplicate names are not disambiguated.
func (c *Client) FindUserByName(ctx context.Context, projectID int, name string) (*models.User, error) {
	users, err := listAll(ctx, "list users", func(page gl.ListOptions, opts ...gl.RequestOptionFunc) ([]*gl.ProjectUser, *gl.Response, error) {
		return c.api.Projects.ListProjectsUsers(projectID, &gl.ListProjectUserOptions{ListOptions: page}, opts...)
	})
	if err != nil {
		return nil, err
	}

	for _, u := range users {
		if u.Name == name {
			return &models.User{ID: u.ID, Username: u.Username, Name: u.Name}, nil
		}
	}
	return nil, nil
}

// CreateSnippet stores a private project snippet.
func (c *Client) CreateSnippet(ctx context.Context, projectID int, input models.NewSnippet) (*models.Snippet, error) {
	s, err := call(ctx, "create snippet", func(opts ...gl.RequestOptionFunc) (*gl.Snippet, *gl.Response, error) {
		return c.api.ProjectSnippets.CreateSnippet(projectID, &gl.CreateProjectSnippetOptions{
			Title:      gl.Ptr(input.Title),
			FileName:   gl.Ptr(input.FileName),
			Content:    gl.Ptr(input.Content),
			Visibility: gl.Ptr(gl.PrivateVisibility),
		}, opts...)
	})
	if err != nil {
		return nil, err
	}
	return &models.Snippet{ID: s.ID, Title: s.Title, FileName: s.FileName, WebURL: s.WebURL}, nil
}

// ListFailedJobs returns every failed CI job of the project.
func (c *Client) ListFailedJobs(ctx context.Context, projectID int) ([]models.Job, error) {
	found, err := listAll(ctx, "list jobs", func(page gl.ListOptions, opts ...gl.RequestOptionFunc) ([]*gl.Job, *gl.Response, error) {
		return c.api.Jobs.ListProjectJobs(projectID, &gl.ListJobsOptions{
			ListOptions: page,
			Scope:       &[]gl.BuildStateValue{gl.Failed},
		}, opts...)
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]models.Job, 0, len(found))
	for _, j := range found {
		jobs = append(jobs, models.Job{
			ID:        j.ID,
			Name:      j.Name,
			Stage:     j.Stage,
			Status:    j.Status,
			Ref:       j.Ref,
			CreatedAt: j.CreatedAt,
			WebURL:    j.WebURL,
		})
	}
	return jobs, nil
}

// JobTrace returns the raw log of a job.
func (c *Client) JobTrace(ctx context.Context, projectID, jobID int) ([]byte, error) {
	trace, err := call(ctx, "fetch trace", func(opts ...gl.RequestOptionFunc) (*bytes.Reader, *gl.Response, error) {
		return c.api.Jobs.GetTraceFile(projectID, jobID, opts...)
	})
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(trace)
	if err != nil {
		return nil, domainErrors.NewRemoteError("fetch trace", 0, err)
	}
	return data, nil
}

func toProject(p *gl.Project) models.Project {
	return models.Project{
		ID:                p.ID,
		Name:              p.Name,
		PathWithNamespace: p.PathWithNamespace,
		WebURL:            p.WebURL,
		Description:       p.Description,
	}
}
