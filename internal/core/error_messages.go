package core

// error_messages.go maps technical errors to short messages with a code,
// so operators can grep import logs and API clients get a stable identifier.
//
//	DB001   duplicate key (SQLSTATE 23505)
//	DB002   unique constraint (pattern only)
//	DB003   not-null or check constraint (23502, 23514)
//	DB004   connection refused
//	DB005   connection reset
//	DB006   timeout
//	DB007   deadlock (40P01)
//	SRC001  no source file
//	SRC002  unreadable or malformed CSV
//	SRC003  encoding error
//	API001  invalid query parameter
//	AUTH001 missing API key
//	AUTH002 invalid API key
//	RATE001 rate limit
//	ERR000  anything else
//
// PostgreSQL errors are classified by SQLSTATE first. Everything else is
// matched case-insensitively against errorPatterns; the first match wins.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgDuplicateKey = UserMessage{
		Message: "A shop with this key already exists",
		Action:  "Check the source file for repeated rows",
		Code:    "DB001",
	}
	msgUnique = UserMessage{
		Message: "This value must be unique but already exists",
		Action:  "Check the source file for repeated rows",
		Code:    "DB002",
	}
	msgConstraint = UserMessage{
		Message: "The record violates a table constraint",
		Action:  "Review the failed row in the source file",
		Code:    "DB003",
	}
	msgDeadlock = UserMessage{
		Message: "Database was busy with conflicting operations",
		Action:  "Run the import again",
		Code:    "DB007",
	}
	msgNoSource = UserMessage{
		Message: "No source file found",
		Action:  "Place one CSV file in the import directory or pass --file",
		Code:    "SRC001",
	}
	msgUnreadable = UserMessage{
		Message: "The source file could not be read as CSV",
		Action:  "Check quoting around the reported line",
		Code:    "SRC002",
	}
)

// sqlStateMessages maps PostgreSQL error codes to messages.
var sqlStateMessages = map[string]UserMessage{
	"23505": msgDuplicateKey,
	"23502": msgConstraint,
	"23514": msgConstraint,
	"40P01": msgDeadlock,
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{pattern: "duplicate key", msg: msgDuplicateKey},
	{pattern: "unique constraint", msg: msgUnique},
	{pattern: "violates not-null", msg: msgConstraint},
	{pattern: "violates check", msg: msgConstraint},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check DATABASE_URL and that the server is running",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
	{pattern: "deadlock", msg: msgDeadlock},
	{pattern: "no source file", msg: msgNoSource},
	{pattern: "parse error", msg: msgUnreadable},
	{pattern: "empty file", msg: msgUnreadable},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8",
			Code:    "SRC003",
		},
	},
	{
		pattern: "invalid query",
		msg: UserMessage{
			Message: "Invalid query parameter",
			Action:  "Check the q and limit parameters",
			Code:    "API001",
		},
	},
	{
		pattern: "missing api key",
		msg: UserMessage{
			Message: "Authentication required",
			Action:  "Send the X-API-Key header",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "Access denied",
			Action:  "Use a configured API key",
			Code:    "AUTH002",
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

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the original error",
	Code:    "ERR000",
}

// MapError converts a technical error to a coded message.
// A nil error maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := sqlStateMessages[pgErr.Code]; ok {
			return msg
		}
	}

	if errors.Is(err, ErrNoSourceFound) {
		return msgNoSource
	}
	var readErr *SourceReadError
	if errors.As(err, &readErr) {
		return msgUnreadable
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific code rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
