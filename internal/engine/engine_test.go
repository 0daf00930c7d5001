package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/i18n"
	"github.com/thomas-vilte/gitlab-simple/internal/models"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

var testProject = &models.Project{ID: 5, Name: "app", PathWithNamespace: "group/app"}

func init() {
	color.NoColor = true
}

type fixture struct {
	gw       *MockGateway
	prompter *MockPrompter
	out      *bytes.Buffer
	engine   *Engine
	sessions int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	f := &fixture{
		gw:       new(MockGateway),
		prompter: new(MockPrompter),
		out:      &bytes.Buffer{},
	}
	provider := func(ctx context.Context) (*Session, error) {
		f.sessions++
		return &Session{Gateway: f.gw, DefaultProject: "group/app"}, nil
	}
	f.engine = New(provider, f.prompter, translations, f.out, Options{Width: 120, Now: func() time.Time { return testNow }})
	return f
}

func (f *fixture) expectProject() {
	f.gw.On("GetProject", mock.Anything, "group/app").Return(testProject, nil).Once()
}

func labels(s string) *string { return &s }

func closePatch() models.IssueUpdate {
	state := models.StateEventClose
	return models.IssueUpdate{StateEvent: &state}
}

func TestRun_Version(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Run(context.Background(), Directives{Version: true, ListIssues: true})

	require.NoError(t, err)
	assert.Equal(t, "gitlab-simple v1.1.0\n", f.out.String())
	assert.Zero(t, f.sessions)
	f.gw.AssertExpectations(t)
}

func TestRun_NoOperationIsNoop(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Run(context.Background(), Directives{Project: "5", Title: "ignored"})

	require.NoError(t, err)
	assert.Empty(t, f.out.String())
	assert.Zero(t, f.sessions)
}

func TestRun_SessionErrorStopsBeforeRemoteCalls(t *testing.T) {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	gw := new(MockGateway)
	provider := func(ctx context.Context) (*Session, error) {
		return nil, domainErrors.ErrConfigNotFound
	}
	e := New(provider, new(MockPrompter), translations, &bytes.Buffer{}, Options{})

	err = e.Run(context.Background(), Directives{ListIssues: true})

	assert.True(t, errors.Is(err, domainErrors.ErrConfigNotFound))
	gw.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)
}

func TestRun_ProjectPrecedence(t *testing.T) {
	tests := []struct {
		name string
		d    Directives
		want string
	}{
		{"flag wins", Directives{Project: "5", ProjectEnv: "env/app"}, "5"},
		{"env over config", Directives{ProjectEnv: "env/app"}, "env/app"},
		{"config last", Directives{}, "group/app"},
		{"blank flag ignored", Directives{Project: "  ", ProjectEnv: "env/app"}, "env/app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.gw.On("GetProject", mock.Anything, tt.want).Return(testProject, nil).Once()
			f.gw.On("ListIssues", mock.Anything, 5, mock.Anything).Return([]models.Issue{}, nil)

			d := tt.d
			d.ListIssues = true
			require.NoError(t, f.engine.Run(context.Background(), d))

			f.gw.AssertExpectations(t)
		})
	}
}

func TestRun_ProjectUnresolved(t *testing.T) {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)
	gw := new(MockGateway)
	provider := func(ctx context.Context) (*Session, error) {
		return &Session{Gateway: gw}, nil
	}
	e := New(provider, new(MockPrompter), translations, &bytes.Buffer{}, Options{})

	err = e.Run(context.Background(), Directives{ListIssues: true})

	assert.True(t, errors.Is(err, domainErrors.ErrProjectUnresolved))
	gw.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)
}

func TestRun_ListProjectsSkipsProjectResolution(t *testing.T) {
	f := newFixture(t)
	f.gw.On("ListProjects", mock.Anything).Return([]models.Project{
		{ID: 1, Name: "backend", WebURL: "https://gitlab.example.com/team/backend"},
		{ID: 2, Name: "web", WebURL: "https://gitlab.example.com/team/web"},
	}, nil)

	require.NoError(t, f.engine.Run(context.Background(), Directives{ListProjects: true}))

	out := f.out.String()
	assert.Contains(t, out, "Projects (2)")
	assert.Contains(t, out, "backend")
	assert.Contains(t, out, "https://gitlab.example.com/team/web")
	f.gw.AssertNotCalled(t, "GetProject", mock.Anything, mock.Anything)
}

func TestRun_CloseIssuesContinuesPastFailure(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("UpdateIssue", mock.Anything, 5, 1, closePatch()).Return(&models.Issue{IID: 1}, nil).Once()
	f.gw.On("UpdateIssue", mock.Anything, 5, 2, closePatch()).
		Return(nil, domainErrors.NewRemoteError("update issue", 404, errors.New("404 Not found"))).Once()
	f.gw.On("UpdateIssue", mock.Anything, 5, 3, closePatch()).Return(&models.Issue{IID: 3}, nil).Once()

	err := f.engine.Run(context.Background(), Directives{CloseIssues: "1, 2,3"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainErrors.ErrCloseIssues))
	var remoteErr *domainErrors.RemoteError
	assert.True(t, errors.As(err, &remoteErr))

	var order []int
	for _, call := range f.gw.Calls {
		if call.Method == "UpdateIssue" {
			order = append(order, call.Arguments.Int(2))
		}
	}
	assert.Equal(t, []int{1, 2, 3}, order)

	out := f.out.String()
	assert.Contains(t, out, "Closed #1")
	assert.Contains(t, out, "Could not close #2")
	assert.Contains(t, out, "Closed #3")
	assert.NotContains(t, out, "all closed")
	f.gw.AssertExpectations(t)
}

func TestRun_CloseIssuesAllClosed(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("UpdateIssue", mock.Anything, 5, mock.Anything, closePatch()).Return(&models.Issue{}, nil).Twice()

	require.NoError(t, f.engine.Run(context.Background(), Directives{CloseIssues: "4,,7 "}))

	assert.Contains(t, f.out.String(), "all closed")
	f.gw.AssertNumberOfCalls(t, "UpdateIssue", 2)
}

func TestRun_CloseIssuesRejectsMalformedIDs(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Run(context.Background(), Directives{CloseIssues: "1,two,3"})

	assert.True(t, errors.Is(err, domainErrors.ErrInvalidIID))
	assert.Zero(t, f.sessions)
	f.gw.AssertNotCalled(t, "UpdateIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_NewIssueUnknownAssigneeMakesNoMutation(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("FindUserByName", mock.Anything, 5, "Nobody").Return(nil, nil)

	err := f.engine.Run(context.Background(), Directives{NewIssue: true, Title: "Crash", Assign: "Nobody", Editor: true})

	assert.True(t, errors.Is(err, domainErrors.ErrUserNotFound))
	f.gw.AssertNotCalled(t, "CreateIssue", mock.Anything, mock.Anything, mock.Anything)
	f.prompter.AssertNotCalled(t, "Prompt", mock.Anything)
}

func TestRun_NewIssue(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("FindUserByName", mock.Anything, 5, "Ana Diaz").Return(&models.User{ID: 9, Name: "Ana Diaz"}, nil)
	f.prompter.On("Prompt", mock.Anything).Return("Steps to reproduce", nil)

	assignee := 9
	description := "Steps to reproduce"
	f.gw.On("CreateIssue", mock.Anything, 5, models.NewIssue{
		Title:       "Crash",
		Description: &description,
		Labels:      []string{"bug", "urgent"},
		AssigneeID:  &assignee,
	}).Return(&models.Issue{IID: 12}, nil)

	err := f.engine.Run(context.Background(), Directives{
		NewIssue: true,
		Title:    "Crash",
		Labels:   labels("bug, urgent"),
		Assign:   "Ana Diaz",
		Editor:   true,
	})

	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "Created #12\n")
	f.gw.AssertExpectations(t)
}

func TestRun_NewIssueRequiresTitle(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Run(context.Background(), Directives{NewIssue: true})

	assert.True(t, errors.Is(err, domainErrors.ErrTitleRequired))
	assert.Zero(t, f.sessions)
}

func TestRun_EmptyEditorShortCircuits(t *testing.T) {
	tests := []struct {
		name     string
		d        Directives
		mutation string
	}{
		{"new snippet", Directives{NewSnippet: true}, "CreateSnippet"},
		{"new issue", Directives{NewIssue: true, Title: "Crash", Editor: true}, "CreateIssue"},
		{"long comment", Directives{LongCommentIssue: true, IID: "42"}, "CreateNote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectProject()
			f.prompter.On("Prompt", mock.Anything).Return("", domainErrors.ErrEditorEmpty)

			err := f.engine.Run(context.Background(), tt.d)

			assert.True(t, domainErrors.IsEditorAbort(err))
			for _, call := range f.gw.Calls {
				assert.NotEqual(t, tt.mutation, call.Method)
			}
			assert.Empty(t, f.out.String())
		})
	}
}

func TestRun_NewSnippet(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("CreateSnippet", mock.Anything, 5, models.NewSnippet{
		Title:    "snippet.go",
		FileName: "snippet.go",
		Content:  "package main",
	}).Return(&models.Snippet{ID: 8, WebURL: "https://gitlab.example.com/group/app/-/snippets/8"}, nil)

	err := f.engine.Run(context.Background(), Directives{NewSnippet: true, FileType: ".go", Content: "package main\n"})

	require.NoError(t, err)
	assert.Contains(t, f.out.String(), "Created snippet https://gitlab.example.com/group/app/-/snippets/8\n")
	f.prompter.AssertNotCalled(t, "Prompt", mock.Anything)
}

func TestRun_NewSnippetFromEditorWithTitle(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.prompter.On("Prompt", mock.Anything).Return("notes", nil)
	f.gw.On("CreateSnippet", mock.Anything, 5, models.NewSnippet{
		Title:    "Meeting",
		FileName: "snippet.txt",
		Content:  "notes",
	}).Return(&models.Snippet{WebURL: "u"}, nil)

	require.NoError(t, f.engine.Run(context.Background(), Directives{NewSnippet: true, Title: "Meeting"}))
	f.gw.AssertExpectations(t)
}

func TestRun_LatestTracePicksHighestID(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("ListFailedJobs", mock.Anything, 5).Return([]models.Job{{ID: 5}, {ID: 9}, {ID: 2}}, nil)
	f.gw.On("JobTrace", mock.Anything, 5, 9).Return([]byte("job 9 failed\nexit 1\n"), nil)

	require.NoError(t, f.engine.Run(context.Background(), Directives{LatestTrace: true}))

	assert.Equal(t, "job 9 failed\nexit 1\n", f.out.String())
	f.gw.AssertExpectations(t)
}

func TestRun_LatestTraceWithoutFailedJobs(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("ListFailedJobs", mock.Anything, 5).Return([]models.Job{}, nil)

	err := f.engine.Run(context.Background(), Directives{LatestTrace: true})

	assert.True(t, errors.Is(err, domainErrors.ErrNoFailedJobs))
	var appErr *domainErrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, domainErrors.TypeProject, appErr.Type)
	f.gw.AssertNotCalled(t, "JobTrace", mock.Anything, mock.Anything, mock.Anything)
}

func TestRun_EditIssue(t *testing.T) {
	t.Run("only supplied fields", func(t *testing.T) {
		f := newFixture(t)
		f.expectProject()
		title := "New title"
		cleared := []string{}
		f.gw.On("UpdateIssue", mock.Anything, 5, 42, models.IssueUpdate{
			Title:  &title,
			Labels: &cleared,
		}).Return(&models.Issue{IID: 42}, nil)

		err := f.engine.Run(context.Background(), Directives{EditIssue: true, IID: "42", Title: title, Labels: labels("")})

		require.NoError(t, err)
		assert.Contains(t, f.out.String(), "Updated #42\n")
		f.gw.AssertExpectations(t)
	})

	t.Run("nothing to update", func(t *testing.T) {
		f := newFixture(t)

		err := f.engine.Run(context.Background(), Directives{EditIssue: true, IID: "42"})

		assert.True(t, errors.Is(err, domainErrors.ErrNothingToUpdate))
		assert.Zero(t, f.sessions)
	})

	t.Run("requires iid", func(t *testing.T) {
		f := newFixture(t)

		err := f.engine.Run(context.Background(), Directives{EditIssue: true, Title: "x"})

		assert.True(t, errors.Is(err, domainErrors.ErrIIDRequired))
	})

	t.Run("unknown assignee aborts", func(t *testing.T) {
		f := newFixture(t)
		f.expectProject()
		f.gw.On("FindUserByName", mock.Anything, 5, "Ghost").Return(nil, nil)

		err := f.engine.Run(context.Background(), Directives{EditIssue: true, IID: "42", Assign: "Ghost"})

		assert.True(t, errors.Is(err, domainErrors.ErrUserNotFound))
		f.gw.AssertNotCalled(t, "UpdateIssue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRun_CommentIssue(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("CreateNote", mock.Anything, 5, 42, "LGTM").Return(&models.Note{ID: 1}, nil).Once()
	f.prompter.On("Prompt", mock.Anything).Return("Longer thoughts", nil)
	f.gw.On("CreateNote", mock.Anything, 5, 42, "Longer thoughts").Return(&models.Note{ID: 2}, nil).Once()

	err := f.engine.Run(context.Background(), Directives{CommentIssue: "LGTM", LongCommentIssue: true, IID: "42"})

	require.NoError(t, err)
	require.Len(t, f.gw.Calls, 3)
	assert.Equal(t, "LGTM", f.gw.Calls[1].Arguments.String(3))
	assert.Equal(t, "Longer thoughts", f.gw.Calls[2].Arguments.String(3))
	assert.Equal(t, 2, strings.Count(f.out.String(), "Commented on #42\n"))
}

func TestRun_CommentIssueBlank(t *testing.T) {
	for _, text := range []string{"   ", "\t\n"} {
		f := newFixture(t)

		err := f.engine.Run(context.Background(), Directives{CommentIssue: text, IID: "42"})

		assert.True(t, errors.Is(err, domainErrors.ErrCommentRequired))
		assert.Zero(t, f.sessions)
		f.gw.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestRun_CommentIssueTrimmed(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("CreateNote", mock.Anything, 5, 42, "LGTM").Return(&models.Note{ID: 1}, nil).Once()

	err := f.engine.Run(context.Background(), Directives{CommentIssue: "  LGTM\n", IID: "42"})

	require.NoError(t, err)
	f.gw.AssertExpectations(t)
}

func TestRun_ViewIssueDocumentOrder(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("GetIssue", mock.Anything, 5, 42).Return(&models.Issue{
		IID:         42,
		Title:       "Crash on save",
		State:       models.StateOpened,
		Description: "Steps to reproduce",
		Labels:      []string{"bug", "ui"},
		Assignee:    &models.User{Name: "Bo"},
		Milestone:   &models.Milestone{Title: "v2"},
		Author:      models.User{Name: "Ana Diaz", Username: "ana"},
		CreatedAt:   testNow.Add(-3 * time.Hour),
	}, nil)
	f.gw.On("ListNotes", mock.Anything, 5, 42).Return([]models.Note{
		{Author: models.User{Name: "Bo"}, Body: "first note", CreatedAt: testNow.Add(-2 * time.Hour)},
		{Author: models.User{Name: "Cy"}, Body: "second note", CreatedAt: testNow.Add(-48 * time.Hour)},
	}, nil)

	require.NoError(t, f.engine.Run(context.Background(), Directives{ViewIssue: true, IID: "42"}))

	out := f.out.String()
	parts := []string{
		"# Crash on save (opened)",
		"Opened by Ana Diaz (@ana) 3 hours ago",
		"**Milestone:** v2",
		"**Assignee:** Bo",
		"**Labels:** bug, ui",
		"Steps to reproduce",
		"## Comments",
		"### Bo commented 2 hours ago",
		"first note",
		"### Cy commented 2 days ago",
		"second note",
	}
	last := -1
	for _, part := range parts {
		idx := strings.Index(out, part)
		require.NotEqual(t, -1, idx, "missing %q", part)
		assert.Greater(t, idx, last, "%q out of order", part)
		last = idx
	}
}

func TestRun_ListIssues(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("ListIssues", mock.Anything, 5, models.IssueFilter{
		State:  models.StateOpened,
		Labels: []string{"bug", "urgent"},
	}).Return([]models.Issue{
		{IID: 7, Title: "Second by id", Labels: []string{"bug", "urgent"}},
		{IID: 3, Title: "First by id", Labels: []string{"urgent", "bug"}},
	}, nil)

	require.NoError(t, f.engine.Run(context.Background(), Directives{ListIssues: true, Labels: labels("bug,urgent")}))

	out := f.out.String()
	assert.Contains(t, out, "Issues (2)")
	assert.Contains(t, out, "bug urgent")
	assert.Contains(t, out, "urgent bug")
	assert.Less(t, strings.Index(out, "Second by id"), strings.Index(out, "First by id"))
	f.gw.AssertExpectations(t)
}

func TestRun_ListIssuesByAssignee(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("FindUserByName", mock.Anything, 5, "Ana Diaz").Return(&models.User{ID: 9}, nil)
	assignee := 9
	f.gw.On("ListIssues", mock.Anything, 5, models.IssueFilter{State: models.StateOpened, AssigneeID: &assignee}).
		Return([]models.Issue{}, nil)

	require.NoError(t, f.engine.Run(context.Background(), Directives{ListIssues: true, Assign: "Ana Diaz"}))

	assert.Contains(t, f.out.String(), "Issues (0)")
	f.gw.AssertExpectations(t)
}

func TestRun_FirstFailureStopsLaterSteps(t *testing.T) {
	f := newFixture(t)
	f.expectProject()
	f.gw.On("CreateIssue", mock.Anything, 5, mock.Anything).
		Return(nil, domainErrors.NewRemoteError("create issue", 500, errors.New("boom")))

	err := f.engine.Run(context.Background(), Directives{NewIssue: true, Title: "x", ListIssues: true})

	var remoteErr *domainErrors.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "create issue", remoteErr.Operation)
	f.gw.AssertNotCalled(t, "ListIssues", mock.Anything, mock.Anything, mock.Anything)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, splitList("1, 2,3"))
	assert.Equal(t, []string{"bug"}, splitList(" bug ,, "))
	assert.Nil(t, splitList(""))
}

func TestParseIID(t *testing.T) {
	iid, err := parseIID(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, iid)

	for _, bad := range []string{"0", "-3", "4x", ""} {
		_, err := parseIID(bad)
		assert.True(t, errors.Is(err, domainErrors.ErrInvalidIID), bad)
	}
}
