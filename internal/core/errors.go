package core

// errors.go defines the domain errors and maps technical errors to
// user-facing messages with support codes.
//
// # Error Codes Reference
//
// Import errors (IMP001-IMP099):
//
//	IMP001 - No file: the task_list upload field is missing
//	IMP002 - Empty input: the file has no data rows
//	IMP003 - Missing column: a required header is absent
//	IMP004 - Unsupported format: only .csv and .xlsx are accepted
//	IMP005 - Busy: too many imports in progress
//	IMP006 - Invalid spreadsheet: the file could not be parsed
//	IMP007 - Too large: the upload exceeds the size limit
//
// Task errors (TSK001-TSK099):
//
//	TSK001 - Hashtag exists: another task already uses this hashtag
//
// User errors (USR001-USR099):
//
//	USR001 - Email in use: another user already has this email
//
// Request errors (REQ001-REQ099):
//
//	REQ001 - Validation failed: the payload did not pass validation
//	REQ002 - Not found: the requested record does not exist
//	REQ003 - Cancelled: the request was cancelled
//	REQ004 - Timeout: the request timed out
//	REQ005 - Rate limited: too many requests
//	REQ006 - Invalid reference: a referenced id does not exist
//	REQ007 - Malformed body: the request body is not valid JSON
//
// Auth errors (AUTH001-AUTH099):
//
//	AUTH001 - Unauthenticated: missing or invalid bearer token
//	AUTH002 - Forbidden: the caller lacks the required role
//
// Database errors (DB001-DB099) are matched by pattern on the driver's
// error text, as are the request errors above when they arrive wrapped.
//
// ERR000 is the fallback when nothing matches. Support staff should check
// application logs for the technical error when users report it.

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFile is returned when the upload field is absent.
	ErrNoFile = errors.New("no file provided")

	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrMalformedBody is returned when a JSON payload cannot be decoded.
	ErrMalformedBody = errors.New("malformed request body")

	// ErrNotFound is returned by lookups and repositories when nothing matches.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthenticated is returned when no valid identity is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the caller lacks a required role.
	ErrForbidden = errors.New("forbidden")

	// ErrEmailInUse is returned by EditUser when the email belongs to another user.
	ErrEmailInUse = errors.New("email already in use")

	// ErrHashtagExists is returned by CreateTask and UpdateTask on a duplicate hashtag.
	ErrHashtagExists = errors.New("hashtag already exists")

	// ErrInvalidReference is returned by stores when a write names an id
	// that does not exist.
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// EmptyInputError reports an import with no data rows.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string { return "Empty csv file." }

// MissingColumnError reports the first required header absent from an import.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s does not exist in the file.", e.Column)
}

// UnsupportedFormatError reports an upload whose extension is not .csv or .xlsx.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format: %s", e.Filename)
}

// ValidationError carries per-field validation failures of a JSON payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range sortedKeys(e.Fields) {
		parts = append(parts, f+": "+e.Fields[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Status  int    // HTTP status the web layer should answer with
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is consulted after the typed errors. First match wins, so
// specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this value already exists",
			Action:  "Check for duplicate hashtags in your file",
			Code:    "DB001",
			Status:  409,
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review your data for duplicate key values",
			Code:    "DB002",
			Status:  409,
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure referenced channels, types and levels exist",
			Code:    "DB003",
			Status:  400,
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
			Status:  503,
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
			Status:  503,
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
			Status:  503,
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
			Status:  499,
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "REQ004",
			Status:  504,
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
			Status:  504,
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "REQ005",
			Status:  429,
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  500,
}

// MapError converts a technical error to a user-friendly message.
// Known domain errors are recognised with errors.Is/As; anything else is
// matched case-insensitively against errorPatterns.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		missing *MissingColumnError
		empty   *EmptyInputError
		format  *UnsupportedFormatError
		invalid *ValidationError
		ue      *UserError
	)
	switch {
	case errors.As(err, &ue):
		return ue.User
	case errors.Is(err, ErrNoFile):
		return UserMessage{Message: "File not found.", Action: "Attach the file as task_list", Code: "IMP001", Status: 400}
	case errors.As(err, &empty):
		return UserMessage{Message: empty.Error(), Action: "Upload a file with at least one data row", Code: "IMP002", Status: 400}
	case errors.As(err, &missing):
		return UserMessage{Message: missing.Error(), Action: "Add the column to the header row", Code: "IMP003", Status: 400}
	case errors.As(err, &format):
		return UserMessage{Message: "Unsupported file format", Action: "Upload a .csv or .xlsx file", Code: "IMP004", Status: 400}
	case errors.Is(err, ErrTooManyImports):
		return UserMessage{Message: "System is busy processing other imports", Action: "Please wait a moment and try again", Code: "IMP005", Status: 503}
	case errors.Is(err, ErrBadSpreadsheet):
		return UserMessage{Message: "The file could not be read", Action: "Save it as UTF-8 CSV or a standard .xlsx workbook", Code: "IMP006", Status: 400}
	case errors.Is(err, ErrFileTooLarge):
		return UserMessage{Message: "File is too large", Action: "Split the task list into smaller files", Code: "IMP007", Status: 413}
	case errors.Is(err, ErrMalformedBody):
		return UserMessage{Message: "Invalid request body", Action: "Send a valid JSON object", Code: "REQ007", Status: 400}
	case errors.Is(err, ErrHashtagExists):
		return UserMessage{Message: "Hashtag already exists", Action: "Choose a different hashtag", Code: "TSK001", Status: 409}
	case errors.Is(err, ErrEmailInUse):
		return UserMessage{Message: "This email is already in use", Action: "Use a different email", Code: "USR001", Status: 409}
	case errors.Is(err, ErrInvalidReference):
		return UserMessage{Message: "Referenced record does not exist", Action: "Check the ids in your request", Code: "REQ006", Status: 400}
	case errors.As(err, &invalid):
		return UserMessage{Message: invalid.Error(), Action: "Correct the highlighted fields", Code: "REQ001", Status: 400}
	case errors.Is(err, ErrNotFound):
		return UserMessage{Message: "Not found", Action: "Check the identifier and try again", Code: "REQ002", Status: 404}
	case errors.Is(err, ErrUnauthenticated):
		return UserMessage{Message: "Authentication required", Action: "Sign in and retry with a valid token", Code: "AUTH001", Status: 401}
	case errors.Is(err, ErrForbidden):
		return UserMessage{Message: "You do not have permission for this action", Action: "Ask an administrator for access", Code: "AUTH002", Status: 403}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
