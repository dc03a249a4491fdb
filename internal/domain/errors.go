package domain

import (
	"errors"
	"fmt"
)

// Code classifies an Error so callers can map it without string matching.
type Code string

const (
	CodeInvalidRequest          Code = "INVALID_REQUEST"
	CodeMalformedID             Code = "MALFORMED_ID"
	CodeUnregisteredUser        Code = "UNREGISTERED_USER"
	CodeUnregisteredParticipant Code = "UNREGISTERED_PARTICIPANT"
	CodeNotAParticipant         Code = "NOT_A_PARTICIPANT"
	CodeDuplicateConversation   Code = "DUPLICATE_CONVERSATION"
	CodeDuplicateData           Code = "DUPLICATE_DATA"
	CodeNotFound                Code = "NOT_FOUND"
	CodeStore                   Code = "STORE_ERROR"
	CodeUnknown                 Code = "UNKNOWN"
)

// Error is the single error type crossing the store and service boundaries.
type Error struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(code Code, op, msg string, cause error) *Error {
	return &Error{Code: code, Op: op, Message: msg, Err: cause}
}

// Sentinels usable with errors.Is.
var (
	ErrInvalidRequest          = &Error{Code: CodeInvalidRequest, Message: "invalid request"}
	ErrMalformedID             = &Error{Code: CodeMalformedID, Message: "malformed id"}
	ErrUnregisteredUser        = &Error{Code: CodeUnregisteredUser, Message: "user is not registered"}
	ErrUnregisteredParticipant = &Error{Code: CodeUnregisteredParticipant, Message: "participant is not registered"}
	ErrNotAParticipant         = &Error{Code: CodeNotAParticipant, Message: "sender is not a participant"}
	ErrDuplicateConversation   = &Error{Code: CodeDuplicateConversation, Message: "conversation already exists"}
	ErrDuplicateData           = &Error{Code: CodeDuplicateData, Message: "duplicate data"}
	ErrNotFound                = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrStore                   = &Error{Code: CodeStore, Message: "store error"}
)

func InvalidRequest(op, msg string) error {
	return newError(CodeInvalidRequest, op, msg, nil)
}

func MalformedID(op, field, value string) error {
	return newError(CodeMalformedID, op, fmt.Sprintf("%s %q is not a valid id", field, value), nil)
}

func UnregisteredUser(op, who string) error {
	return newError(CodeUnregisteredUser, op, fmt.Sprintf("user %q is not registered", who), nil)
}

func UnregisteredParticipant(op, who string) error {
	return newError(CodeUnregisteredParticipant, op, fmt.Sprintf("participant %q is not registered", who), nil)
}

func NotAParticipant(op, username, conversationID string) error {
	return newError(CodeNotAParticipant, op,
		fmt.Sprintf("user %q is not a participant of conversation %s", username, conversationID), nil)
}

func DuplicateConversation(op, key string) error {
	return newError(CodeDuplicateConversation, op, fmt.Sprintf("conversation already exists for participants [%s]", key), nil)
}

func DuplicateData(op, msg string) error {
	return newError(CodeDuplicateData, op, msg, nil)
}

func NotFound(op, what, id string) error {
	return newError(CodeNotFound, op, fmt.Sprintf("%s %s not found", what, id), nil)
}

// StoreError wraps a persistence failure with the operation and id it concerned.
func StoreError(op, id string, cause error) error {
	msg := "store failure"
	if id != "" {
		msg = fmt.Sprintf("store failure on %s", id)
	}
	return newError(CodeStore, op, msg, cause)
}

// ErrorCode returns the Code of the first *Error in err's chain, or CodeUnknown.
func ErrorCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}
