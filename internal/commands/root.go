package commands

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/gitlab-simple/internal/config"
	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/engine"
	"github.com/thomas-vilte/gitlab-simple/internal/gitlab"
	"github.com/thomas-vilte/gitlab-simple/internal/httpclient"
	"github.com/thomas-vilte/gitlab-simple/internal/i18n"
	"github.com/thomas-vilte/gitlab-simple/internal/logger"
	"github.com/thomas-vilte/gitlab-simple/internal/version"
)

// SessionFactory returns the session provider for the config file at path.
// An empty path means the default location.
type SessionFactory func(path string) engine.SessionProvider

// Dependencies are the collaborators of the root command.
type Dependencies struct {
	Out      io.Writer
	Err      io.Writer
	Prompter engine.Prompter
	Sessions SessionFactory
	Getenv   func(string) string
	Options  engine.Options
}

// NewRootCommand builds the gitlab-simple command. Every operation is a flag
// of the root command.
func NewRootCommand(t *i18n.Translations, deps Dependencies) *cli.Command {
	if deps.Getenv == nil {
		deps.Getenv = os.Getenv
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Err == nil {
		deps.Err = io.Discard
	}

	return &cli.Command{
		Name:        version.Name,
		Usage:       t.GetMessage("app_usage", 0, nil),
		Description: t.GetMessage("app_description", 0, nil),
		Writer:      deps.Out,
		ErrWriter:   deps.Err,
		Flags:       createFlags(t),
		Action:      createAction(t, deps),

		EnableShellCompletion: true,
		ShellComplete:         flagComplete,
	}
}

func createFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "version",
			Usage: t.GetMessage("flag_version", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "list-projects",
			Usage: t.GetMessage("flag_list_projects", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "new-snippet",
			Usage: t.GetMessage("flag_new_snippet", 0, nil),
		},
		&cli.StringFlag{
			Name:  "content",
			Usage: t.GetMessage("flag_content", 0, nil),
		},
		&cli.StringFlag{
			Name:  "file-type",
			Usage: t.GetMessage("flag_file_type", 0, nil),
			Value: "txt",
		},
		&cli.StringFlag{
			Name:  "project",
			Usage: t.GetMessage("flag_project", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "latest-trace",
			Usage: t.GetMessage("flag_latest_trace", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "edit-issue",
			Usage: t.GetMessage("flag_edit_issue", 0, nil),
		},
		&cli.StringFlag{
			Name:  "iid",
			Usage: t.GetMessage("flag_iid", 0, nil),
		},
		&cli.StringFlag{
			Name:  "title",
			Usage: t.GetMessage("flag_title", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "editor",
			Usage: t.GetMessage("flag_editor", 0, nil),
		},
		&cli.StringFlag{
			Name:  "assign",
			Usage: t.GetMessage("flag_assign", 0, nil),
		},
		&cli.StringFlag{
			Name:  "labels",
			Usage: t.GetMessage("flag_labels", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "new-issue",
			Usage: t.GetMessage("flag_new_issue", 0, nil),
		},
		&cli.StringFlag{
			Name:  "close-issues",
			Usage: t.GetMessage("flag_close_issues", 0, nil),
		},
		&cli.StringFlag{
			Name:  "comment-issue",
			Usage: t.GetMessage("flag_comment_issue", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "long-comment-issue",
			Usage: t.GetMessage("flag_long_comment_issue", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "view-issue",
			Usage: t.GetMessage("flag_view_issue", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "list-issues",
			Usage: t.GetMessage("flag_list_issues", 0, nil),
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: t.GetMessage("flag_config", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: t.GetMessage("flag_debug", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: t.GetMessage("flag_verbose", 0, nil),
		},
	}
}

func createAction(t *i18n.Translations, deps Dependencies) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		log := logger.New(deps.Err, command.Bool("debug"), command.Bool("verbose"))
		ctx = logger.WithLogger(ctx, log)

		d := directivesFrom(command, deps.Getenv)
		log.Debug("directives parsed",
			"project", d.Project,
			"iid", d.IID)

		e := engine.New(deps.Sessions(command.String("config")), deps.Prompter, t, deps.Out, deps.Options)
		return e.Run(ctx, d)
	}
}

func directivesFrom(command *cli.Command, getenv func(string) string) engine.Directives {
	d := engine.Directives{
		Version:          command.Bool("version"),
		ListProjects:     command.Bool("list-projects"),
		NewSnippet:       command.Bool("new-snippet"),
		LatestTrace:      command.Bool("latest-trace"),
		EditIssue:        command.Bool("edit-issue"),
		NewIssue:         command.Bool("new-issue"),
		CloseIssues:      command.String("close-issues"),
		CommentIssue:     command.String("comment-issue"),
		LongCommentIssue: command.Bool("long-comment-issue"),
		ViewIssue:        command.Bool("view-issue"),
		ListIssues:       command.Bool("list-issues"),
		Project:          command.String("project"),
		ProjectEnv:       getenv(config.ProjectEnvVar),
		IID:              command.String("iid"),
		Title:            command.String("title"),
		FileType:         command.String("file-type"),
		Content:          command.String("content"),
		Editor:           command.Bool("editor"),
		Assign:           command.String("assign"),
	}
	if command.IsSet("labels") {
		labels := command.String("labels")
		d.Labels = &labels
	}
	return d
}

// ConfigSessions loads the config file, switches t to its language and opens
// an authenticated GitLab client.
func ConfigSessions(t *i18n.Translations) SessionFactory {
	return func(path string) engine.SessionProvider {
		return func(ctx context.Context) (*engine.Session, error) {
			if path == "" {
				defaultPath, err := config.DefaultPath()
				if err != nil {
					return nil, err
				}
				path = defaultPath
			}

			cfg, err := config.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			logger.Debug(ctx, "config loaded", "file", cfg.PathFile, "server", cfg.Server)

			if cfg.Language != "" {
				if err := t.SetLanguage(cfg.Language); err != nil {
					logger.Warn(ctx, "language not available", "language", cfg.Language, "error", err)
				}
			}

			client, err := gitlab.NewClient(cfg.Server, cfg.Token, httpclient.NewAuthenticated(ctx, cfg.Token))
			if err != nil {
				return nil, domainErrors.ErrConfigIncomplete.
					WithError(err).
					WithContext("path", cfg.PathFile)
			}
			return &engine.Session{
				Gateway:        client,
				DefaultProject: cfg.Project.String(),
			}, nil
		}
	}
}
