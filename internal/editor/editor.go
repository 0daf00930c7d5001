package editor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/logger"
)

const (
	// DefaultCommand is used when $EDITOR is unset or blank.
	DefaultCommand = "vim"

	scratchPattern = "gitlab-simple-*.md"
)

// Prompter collects free text from the user through an external editor.
type Prompter struct {
	Command string
	TempDir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewPrompter builds a Prompter for command, typically the value of $EDITOR,
// attached to the process terminal.
func NewPrompter(command string) *Prompter {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	return &Prompter{
		Command: command,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// Prompt opens the editor on an empty scratch file, waits for it to exit and
// returns the trimmed text saved in the file. The scratch file never outlives
// the call.
func (p *Prompter) Prompt(ctx context.Context) (string, error) {
	log := logger.FromContext(ctx)

	args, err := shlex.Split(p.Command)
	if err != nil {
		log.Error("invalid editor command", "command", p.Command, "error", err)
		return "", domainErrors.ErrEditorFailed.WithError(fmt.Errorf("parse editor command: %w", err))
	}
	if len(args) == 0 {
		args = []string{DefaultCommand}
	}

	file, err := os.CreateTemp(p.TempDir, scratchPattern)
	if err != nil {
		return "", domainErrors.ErrEditorFailed.WithError(fmt.Errorf("create scratch file: %w", err))
	}
	path := file.Name()
	defer func() { _ = os.Remove(path) }()

	if err := file.Close(); err != nil {
		return "", domainErrors.ErrEditorFailed.WithError(err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = p.Stdin
	cmd.Stdout = p.Stdout
	if p.Stderr != nil {
		cmd.Stderr = io.MultiWriter(p.Stderr, &stderr)
	} else {
		cmd.Stderr = &stderr
	}

	log.Debug("launching editor", "command", args[0], "file", path)

	if err := cmd.Run(); err != nil {
		log.Error("editor process failed",
			"command", args[0],
			"stderr", strings.TrimSpace(stderr.String()),
			"error", err)
		return "", domainErrors.ErrEditorFailed.
			WithError(err).
			WithContext("command", args[0])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", domainErrors.ErrEditorFailed.WithError(fmt.Errorf("read scratch file: %w", err))
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", domainErrors.ErrEditorEmpty
	}

	log.Debug("editor text collected", "bytes", len(text))
	return text, nil
}
