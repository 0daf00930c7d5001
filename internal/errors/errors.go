package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeProject       ErrorType = "PROJECT"
	TypeRemote        ErrorType = "REMOTE"
	TypeEditor        ErrorType = "EDITOR"
	TypeUser          ErrorType = "USER"
	TypeValidation    ErrorType = "VALIDATION"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		msg += " [" + strings.Join(parts, " ") + "]"
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so
// sentinels still match after WithError or WithContext copied them.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// RemoteError wraps a failed GitLab API call with the operation that issued it.
type RemoteError struct {
	Operation  string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s failed (status %d): %v", TypeRemote, e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", TypeRemote, e.Operation, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Suggestion returns a hint for the status codes users can act on.
func (e *RemoteError) Suggestion() string {
	switch e.StatusCode {
	case 401:
		return "Check the token in your config file, it may be invalid or expired"
	case 403:
		return "The token lacks permissions for this operation (the api scope is required)"
	case 404:
		return "Check the project identifier and the issue iid"
	}
	return ""
}

// NewRemoteError creates a RemoteError for operation.
func NewRemoteError(operation string, statusCode int, err error) *RemoteError {
	return &RemoteError{Operation: operation, StatusCode: statusCode, Err: err}
}

// IsEditorAbort reports whether err means the editor produced no usable text.
func IsEditorAbort(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == TypeEditor
}

// Configuration errors
var (
	ErrConfigNotFound = NewAppError(TypeConfiguration, "Config file not found", nil).
				WithSuggestion("Create it with the keys \"server\" and \"token\", for example:\n{\"server\": \"https://gitlab.com\", \"token\": \"<personal access token>\"}")

	ErrConfigMalformed = NewAppError(TypeConfiguration, "Config file is not valid JSON", nil).
				WithSuggestion("Fix the syntax of the config file")

	ErrConfigIncomplete = NewAppError(TypeConfiguration, "Config file is incomplete", nil).
				WithSuggestion("The keys \"server\" (an http or https URL) and \"token\" are required")
)

// Project errors
var (
	ErrProjectUnresolved = NewAppError(TypeProject, "No project given: checked the --project flag, the GITLAB_SIMPLE_PROJECT environment variable and the \"project\" key of the config file", nil).
		WithSuggestion("Pass --project <id or path>, export GITLAB_SIMPLE_PROJECT or set \"project\" in the config file")

	ErrNoFailedJobs = NewAppError(TypeProject, "The project has no failed jobs", nil)
)

// Editor errors
var (
	ErrEditorFailed = NewAppError(TypeEditor, "Abort, editor process error", nil).
			WithSuggestion("Check the EDITOR environment variable")

	ErrEditorEmpty = NewAppError(TypeEditor, "Abort, empty message", nil)
)

// User errors
var (
	ErrUserNotFound = NewAppError(TypeUser, "No project member with that name", nil).
		WithSuggestion("Use the display name exactly as shown in GitLab")
)

// Validation errors
var (
	ErrIIDRequired = NewAppError(TypeValidation, "An issue iid is required", nil).
			WithSuggestion("Pass --iid <number>")

	ErrInvalidIID = NewAppError(TypeValidation, "Issue iid must be a positive number", nil)

	ErrTitleRequired = NewAppError(TypeValidation, "A title is required", nil).
				WithSuggestion("Pass --title <title>")

	ErrNothingToUpdate = NewAppError(TypeValidation, "Nothing to update", nil).
				WithSuggestion("Pass at least one of --title, --editor, --assign or --labels")

	ErrCommentRequired = NewAppError(TypeValidation, "A comment cannot be blank", nil).
				WithSuggestion("Pass the comment text, or use --long-comment-issue to write it in your editor")

	ErrCloseIssues = NewAppError(TypeRemote, "Some issues could not be closed", nil)
)
