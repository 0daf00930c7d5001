package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"

	domainErrors "github.com/thomas-vilte/gitlab-simple/internal/errors"
	"github.com/thomas-vilte/gitlab-simple/internal/i18n"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	SuccessEmoji = Success.Sprint("✅")
	WarningEmoji = Warning.Sprint("⚠️")
)

// SmartSpinner shows progress on a terminal while a remote call runs. On
// anything that is not a terminal it does nothing.
type SmartSpinner struct {
	spinner *spinner.Spinner
	enabled bool
}

// NewSmartSpinner creates a spinner writing to w with an initial message.
func NewSmartSpinner(w io.Writer, initialMessage string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+initialMessage),
		spinner.WithWriter(w),
	)
	return &SmartSpinner{spinner: s, enabled: IsTerminal(w)}
}

func (s *SmartSpinner) Start() {
	if s.enabled {
		s.spinner.Start()
	}
}

func (s *SmartSpinner) Stop() {
	if s.enabled {
		s.spinner.Stop()
	}
}

// UpdateMessage replaces the text shown next to the spinner.
func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Lock()
	s.spinner.Suffix = " " + msg
	s.spinner.Unlock()
}

// Message returns the text currently shown next to the spinner.
func (s *SmartSpinner) Message() string {
	s.spinner.Lock()
	defer s.spinner.Unlock()
	return strings.TrimPrefix(s.spinner.Suffix, " ")
}

// WithSpinner runs fn with a spinner on w and stops it before returning. fn
// may update the spinner message as it makes progress.
func WithSpinner(w io.Writer, message string, fn func(s *SmartSpinner) error) error {
	s := NewSmartSpinner(w, message)
	s.Start()
	defer s.Stop()

	return fn(s)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("❌"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

// HandleAppError writes err to w in a friendly way. AppError and RemoteError
// get their type, details and suggestion printed; anything else is printed
// as is. If translations is nil, English defaults are used.
func HandleAppError(w io.Writer, err error, translations ...*i18n.Translations) {
	if err == nil {
		return
	}

	var t *i18n.Translations
	if len(translations) > 0 && translations[0] != nil {
		t = translations[0]
	}

	var (
		appErr    *domainErrors.AppError
		remoteErr *domainErrors.RemoteError
	)
	switch {
	case errors.As(err, &appErr):
		_, _ = Error.Fprintf(w, "❌ %s: %s\n", appErr.Type, appErr.Message)
		if appErr.Err != nil {
			printDetails(w, t, appErr.Err)
		}
		printSuggestion(w, t, appErr.Suggestion)

	case errors.As(err, &remoteErr):
		_, _ = Error.Fprintf(w, "❌ %s: %s\n", domainErrors.TypeRemote, remoteErr.Operation)
		details := fmt.Sprintf("%v", remoteErr.Err)
		if remoteErr.StatusCode != 0 {
			details = fmt.Sprintf("status %d: %s", remoteErr.StatusCode, details)
		}
		printDetails(w, t, details)
		printSuggestion(w, t, remoteErr.Suggestion())

	default:
		PrintError(w, err.Error())
	}
}

func printDetails(w io.Writer, t *i18n.Translations, details interface{}) {
	label := "Details"
	if t != nil {
		label = t.GetMessage("ui_error.details", 0, nil)
	}
	_, _ = Dim.Fprintf(w, "   %s: %v\n", label, details)
}

func printSuggestion(w io.Writer, t *i18n.Translations, suggestion string) {
	if suggestion == "" {
		return
	}

	tryPrefix := "💡 Try: "
	if t != nil {
		tryPrefix = t.GetMessage("ui_error.try_suggestion", 0, nil)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = Info.Fprint(w, tryPrefix)
	for i, line := range strings.Split(suggestion, "\n") {
		if i == 0 {
			_, _ = fmt.Fprintln(w, line)
		} else {
			_, _ = fmt.Fprintf(w, "       %s\n", line)
		}
	}
}
