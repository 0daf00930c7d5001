package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/thomas-vilte/gitlab-simple/internal/commands"
	"github.com/thomas-vilte/gitlab-simple/internal/config"
	"github.com/thomas-vilte/gitlab-simple/internal/editor"
	"github.com/thomas-vilte/gitlab-simple/internal/engine"
	"github.com/thomas-vilte/gitlab-simple/internal/i18n"
	"github.com/thomas-vilte/gitlab-simple/internal/logger"
	"github.com/thomas-vilte/gitlab-simple/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.SetDefault(logger.New(os.Stderr, false, false))

	translations, err := i18n.NewTranslations(config.LangEN)
	if err != nil {
		ui.HandleAppError(os.Stdout, err)
		return 1
	}

	var progress io.Writer
	if ui.IsTerminal(os.Stderr) {
		progress = os.Stderr
	}

	root := commands.NewRootCommand(translations, commands.Dependencies{
		Out:      os.Stdout,
		Err:      os.Stderr,
		Prompter: editor.NewPrompter(os.Getenv("EDITOR")),
		Sessions: commands.ConfigSessions(translations),
		Options: engine.Options{
			Width:    ui.TerminalWidth(os.Stdout.Fd()),
			Styled:   ui.IsTerminal(os.Stdout),
			Progress: progress,
		},
	})

	if err := root.Run(ctx, os.Args); err != nil {
		ui.HandleAppError(os.Stdout, err, translations)
		return 1
	}
	return 0
}
