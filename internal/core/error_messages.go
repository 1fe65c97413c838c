package core

// error_messages.go maps technical errors to user-facing messages with a
// support code.
//
//	FILE001 - File too large            Patterns: "file too large", "request body too large"
//	FILE002 - Not valid tabular data    Patterns: "malformed tabular input"
//	FILE003 - Unsupported format        Patterns: "unsupported file format"
//	FILE004 - No content                Patterns: "no csv content"
//	REQ001  - Bad request body          Patterns: "invalid request body"
//	REQ002  - Unknown strategy          Patterns: "unknown strategy"
//	CONV001 - System busy               Patterns: "too many concurrent conversions"
//	CONV002 - Request cancelled         Patterns: "context canceled"
//	CONV003 - Request timed out         Patterns: "context deadline exceeded"
//	RATE001 - Rate limited              Patterns: "rate limit"
//	ERR000  - Anything else; check the server log for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Export fewer rows or split the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Export fewer rows or split the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "malformed tabular input",
		msg: UserMessage{
			Message: "The file could not be read as a table",
			Action:  "Ensure the file is comma-separated with the same number of columns on every row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload a .csv or .xlsx export",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no csv content",
		msg: UserMessage{
			Message: "No CSV content provided",
			Action:  "Select a CSV file with a header row and data rows",
			Code:    "FILE004",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "Invalid request body format",
			Action:  `Send JSON of the form {"csvContent": "..."}`,
			Code:    "REQ001",
		},
	},
	{
		pattern: "unknown strategy",
		msg: UserMessage{
			Message: "Unknown conversion strategy",
			Action:  "Use indexed or streaming",
			Code:    "REQ002",
		},
	},
	{
		pattern: "too many concurrent conversions",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "CONV001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "CONV002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "CONV003",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err; it returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
