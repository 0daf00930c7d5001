package engine

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/thomas-vilte/gitlab-simple/internal/config"
	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/i18n"
	"github.com/thomas-vilte/gitlab-simple/internal/logger"
	"github.com/thomas-vilte/gitlab-simple/internal/models"
	"github.com/thomas-vilte/gitlab-simple/internal/ui"
	"github.com/thomas-vilte/gitlab-simple/internal/version"
)

// Gateway is the set of GitLab capabilities the engine drives.
type Gateway interface {
	GetProject(ctx context.Context, ref string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	ListIssues(ctx context.Context, projectID int, filter models.IssueFilter) ([]models.Issue, error)
	GetIssue(ctx context.Context, projectID, iid int) (*models.Issue, error)
	CreateIssue(ctx context.Context, projectID int, input models.NewIssue) (*models.Issue, error)
	UpdateIssue(ctx context.Context, projectID, iid int, patch models.IssueUpdate) (*models.Issue, error)
	CreateNote(ctx context.Context, projectID, iid int, body string) (*models.Note, error)
	ListNotes(ctx context.Context, projectID, iid int) ([]models.Note, error)
	ListFailedJobs(ctx context.Context, projectID int) ([]models.Job, error)
	JobTrace(ctx context.Context, projectID, jobID int) ([]byte, error)
	CreateSnippet(ctx context.Context, projectID int, input models.NewSnippet) (*models.Snippet, error)
	FindUserByName(ctx context.Context, projectID int, name string) (*models.User, error)
}

// Prompter collects free text from the user. Any error means the text must
// not be used.
type Prompter interface {
	Prompt(ctx context.Context) (string, error)
}

// Session is what a run needs from the loaded configuration.
type Session struct {
	Gateway        Gateway
	DefaultProject string
}

// SessionProvider loads the configuration and opens the GitLab session. It is
// only called when an operation needs the remote side.
type SessionProvider func(ctx context.Context) (*Session, error)

// Directives is the parsed command line.
type Directives struct {
	Version bool

	ListProjects     bool
	NewSnippet       bool
	LatestTrace      bool
	EditIssue        bool
	NewIssue         bool
	CloseIssues      string
	CommentIssue     string
	LongCommentIssue bool
	ViewIssue        bool
	ListIssues       bool

	Project    string
	ProjectEnv string
	IID        string
	Title      string
	FileType   string
	Content    string
	Editor     bool
	Assign     string
	// Labels is nil when --labels was not given.
	Labels *string
}

// HasOperation reports whether anything besides ambient flags was requested.
func (d Directives) HasOperation() bool {
	return d.ListProjects || d.needsProject()
}

func (d Directives) needsProject() bool {
	return d.NewSnippet || d.LatestTrace || d.EditIssue || d.NewIssue ||
		d.CloseIssues != "" || d.CommentIssue != "" || d.LongCommentIssue ||
		d.ViewIssue || d.ListIssues
}

func (d Directives) needsIID() bool {
	return d.EditIssue || d.CommentIssue != "" || d.LongCommentIssue || d.ViewIssue
}

// Options tune presentation.
type Options struct {
	// Width is the terminal width used for tables and markdown.
	Width int
	// Styled enables glamour rendering of issue documents.
	Styled bool
	// Progress receives the spinner; nil disables it.
	Progress io.Writer
	Now      func() time.Time
}

// Engine executes directives against GitLab in a fixed order.
type Engine struct {
	sessions     SessionProvider
	prompter     Prompter
	translations *i18n.Translations
	out          io.Writer
	opts         Options
}

func New(sessions SessionProvider, prompter Prompter, translations *i18n.Translations, out io.Writer, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Width <= 0 {
		opts.Width = ui.DefaultWidth
	}
	return &Engine{
		sessions:     sessions,
		prompter:     prompter,
		translations: translations,
		out:          out,
		opts:         opts,
	}
}

// run carries the state of one invocation.
type run struct {
	*Engine
	d        Directives
	gw       Gateway
	project  *models.Project
	iid      int
	closeIDs []int
	spinner  *ui.SmartSpinner
}

type step struct {
	enabled bool
	fn      func(ctx context.Context) error
}

// Run executes every selected operation in order and stops at the first
// failure. Nothing is loaded when no operation is selected.
func (e *Engine) Run(ctx context.Context, d Directives) error {
	log := logger.FromContext(ctx)

	if d.Version {
		_, err := fmt.Fprintln(e.out, version.String())
		return err
	}

	if !d.HasOperation() {
		log.Debug("no operation selected")
		return nil
	}

	r := &run{Engine: e, d: d}
	if err := r.validate(); err != nil {
		return err
	}

	session, err := e.sessions(ctx)
	if err != nil {
		return err
	}
	r.gw = session.Gateway

	if d.ListProjects {
		if err := r.listProjects(ctx); err != nil {
			return err
		}
	}

	if !d.needsProject() {
		return nil
	}

	if err := r.resolveProject(ctx, session.DefaultProject); err != nil {
		return err
	}
	ctx = logger.With(ctx, "project", r.project.PathWithNamespace)

	steps := []step{
		{d.NewSnippet, r.newSnippet},
		{d.LatestTrace, r.latestTrace},
		{d.EditIssue, r.editIssue},
		{d.NewIssue, r.newIssue},
		{d.CloseIssues != "", r.closeIssues},
		{d.CommentIssue != "", r.commentIssue},
		{d.LongCommentIssue, r.longCommentIssue},
		{d.ViewIssue, r.viewIssue},
		{d.ListIssues, r.listIssues},
	}
	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := s.fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// validate checks everything that can be checked offline.
func (r *run) validate() error {
	d := r.d

	if d.needsIID() {
		if strings.TrimSpace(d.IID) == "" {
			return domainErrors.ErrIIDRequired
		}
		iid, err := parseIID(d.IID)
		if err != nil {
			return err
		}
		r.iid = iid
	}

	if d.NewIssue && strings.TrimSpace(d.Title) == "" {
		return domainErrors.ErrTitleRequired
	}

	if d.EditIssue && strings.TrimSpace(d.Title) == "" && !d.Editor && strings.TrimSpace(d.Assign) == "" && d.Labels == nil {
		return domainErrors.ErrNothingToUpdate
	}

	if d.CommentIssue != "" && strings.TrimSpace(d.CommentIssue) == "" {
		return domainErrors.ErrCommentRequired
	}

	if d.CloseIssues != "" {
		for _, item := range splitList(d.CloseIssues) {
			id, err := parseIID(item)
			if err != nil {
				return err
			}
			r.closeIDs = append(r.closeIDs, id)
		}
		if len(r.closeIDs) == 0 {
			return domainErrors.ErrIIDRequired
		}
	}

	return nil
}

func (r *run) resolveProject(ctx context.Context, defaultProject string) error {
	res, err := config.ResolveProject(r.d.Project, r.d.ProjectEnv, defaultProject)
	if err != nil {
		return err
	}

	logger.Debug(ctx, "project resolved", "project", res.Project, "source", string(res.Source))

	return r.remote(func() error {
		project, err := r.gw.GetProject(ctx, res.Project)
		if err != nil {
			return err
		}
		r.project = project
		return nil
	})
}

// remote runs fn behind the spinner. Without a progress writer the spinner
// stays hidden.
func (r *run) remote(fn func() error) error {
	w := r.opts.Progress
	if w == nil {
		w = io.Discard
	}
	return ui.WithSpinner(w, r.msg("spinner_remote", nil), func(s *ui.SmartSpinner) error {
		r.spinner = s
		defer func() { r.spinner = nil }()
		return fn()
	})
}

// status replaces the message of the running spinner, if any.
func (r *run) status(msg string) {
	if r.spinner != nil {
		r.spinner.UpdateMessage(msg)
	}
}

func (r *run) msg(id string, data map[string]interface{}) string {
	return r.translations.GetMessage(id, 0, data)
}

func (r *run) success(s string) {
	ui.PrintSuccess(r.out, s)
}

// splitList splits a comma separated value, trimming items and dropping
// empty ones.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseIID(value string) (int, error) {
	value = strings.TrimSpace(value)
	iid, err := strconv.Atoi(value)
	if err != nil || iid <= 0 {
		return 0, domainErrors.ErrInvalidIID.WithContext("iid", value)
	}
	return iid, nil
}
