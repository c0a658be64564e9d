package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error for the boundary layer
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindConflict
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a domain error with a stable code.
// Two errors match under errors.Is when their codes are equal, so a
// sentinel like ErrMemberNotFound matches any detailed variant of it.
type Error struct {
	Code    string
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// With returns a copy of e carrying a more specific message
func (e *Error) With(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// OnField returns a copy of e bound to an input field
func (e *Error) OnField(field, format string, args ...interface{}) *Error {
	cp := e.With(format, args...)
	cp.Field = field
	return cp
}

// KindOf returns the kind of the first domain error in err's chain, or 0
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

// CodeOf returns the code of the first domain error in err's chain
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func validation(code, msg string) *Error {
	return &Error{Code: code, Kind: KindValidation, Message: msg}
}

func notFound(code, msg string) *Error {
	return &Error{Code: code, Kind: KindNotFound, Message: msg}
}

func conflict(code, msg string) *Error {
	return &Error{Code: code, Kind: KindConflict, Message: msg}
}

// Member errors
var (
	ErrMemberAlreadyInactive     = conflict("MEMBER_001", "member is already inactive")
	ErrMemberAlreadyActive       = conflict("MEMBER_002", "member is already active")
	ErrInvalidMemberData         = validation("MEMBER_003", "invalid member data")
	ErrDuplicatePaymentForPeriod = conflict("MEMBER_004", "payment already recorded for this period")
	ErrMemberPaymentInvalid      = validation("MEMBER_005", "payment amount is invalid for member")
	ErrMemberNotFound            = notFound("MEMBER_006", "member not found")
	ErrMemberHasPayments         = conflict("MEMBER_007", "member has recorded payments")
)

// Payment errors
var (
	ErrInvalidPaymentAmount      = validation("PAYMENT_001", "invalid payment amount")
	ErrInvalidPaymentPeriod      = validation("PAYMENT_002", "invalid payment period")
	ErrPaymentMethodNotSupported = validation("PAYMENT_003", "payment method not supported")
	ErrPaymentAlreadyProcessed   = conflict("PAYMENT_004", "payment already processed")
	ErrPaymentNotFound           = notFound("PAYMENT_005", "payment not found")
	ErrPaymentDateInFuture       = validation("PAYMENT_006", "payment date cannot be in the future")
	ErrPaymentPeriodInFuture     = validation("PAYMENT_007", "payment period cannot be in the future")
)

// User errors
var (
	ErrUsernameExists      = conflict("USER_001", "username already exists")
	ErrEmailExists         = conflict("USER_002", "email already exists")
	ErrInvalidPassword     = validation("USER_003", "invalid password")
	ErrWeakPassword        = validation("USER_004", "password must be at least 8 characters long and contain at least one uppercase letter, one lowercase letter, one digit, and one special character (@$!%*?&)")
	ErrUserNotFound        = notFound("USER_005", "user not found")
	ErrUserAlreadyDisabled = conflict("USER_006", "user is already disabled")
	ErrUserAlreadyEnabled  = conflict("USER_007", "user is already enabled")
	ErrInvalidUserData     = validation("USER_008", "invalid user data")
	ErrAccountLocked       = conflict("USER_009", "account is locked")
	ErrCredentialsExpired  = conflict("USER_010", "credentials have expired")
)

// Communication errors
var (
	ErrCommunicationNotFound    = notFound("COMMUNICATION_001", "communication not found")
	ErrInvalidCommunication     = validation("COMMUNICATION_002", "invalid communication data")
	ErrDeliveryNotFound         = notFound("DELIVERY_001", "message delivery not found")
	ErrInvalidDeliveryStatus    = conflict("DELIVERY_002", "invalid delivery status transition")
	ErrDeliveryChannelUnknown   = validation("DELIVERY_003", "delivery channel not supported")
	ErrCommunicationTypeUnknown = validation("DELIVERY_004", "communication type not supported")
)
