package engine

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/gitlab-simple/internal/models"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetProject(ctx context.Context, ref string) (*models.Project, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockGateway) ListProjects(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockGateway) ListIssues(ctx context.Context, projectID int, filter models.IssueFilter) ([]models.Issue, error) {
	args := m.Called(ctx, projectID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Issue), args.Error(1)
}

func (m *MockGateway) GetIssue(ctx context.Context, projectID, iid int) (*models.Issue, error) {
	args := m.Called(ctx, projectID, iid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *MockGateway) CreateIssue(ctx context.Context, projectID int, input models.NewIssue) (*models.Issue, error) {
	args := m.Called(ctx, projectID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *MockGateway) UpdateIssue(ctx context.Context, projectID, iid int, patch models.IssueUpdate) (*models.Issue, error) {
	args := m.Called(ctx, projectID, iid, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Issue), args.Error(1)
}

func (m *MockGateway) CreateNote(ctx context.Context, projectID, iid int, body string) (*models.Note, error) {
	args := m.Called(ctx, projectID, iid, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockGateway) ListNotes(ctx context.Context, projectID, iid int) ([]models.Note, error) {
	args := m.Called(ctx, projectID, iid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockGateway) ListFailedJobs(ctx context.Context, projectID int) ([]models.Job, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Job), args.Error(1)
}

func (m *MockGateway) JobTrace(ctx context.Context, projectID, jobID int) ([]byte, error) {
	args := m.Called(ctx, projectID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockGateway) CreateSnippet(ctx context.Context, projectID int, input models.NewSnippet) (*models.Snippet, error) {
	args := m.Called(ctx, projectID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snippet), args.Error(1)
}

func (m *MockGateway) FindUserByName(ctx context.Context, projectID int, name string) (*models.User, error) {
	args := m.Called(ctx, projectID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Prompt(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}
