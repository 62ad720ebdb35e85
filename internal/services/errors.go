package services

import (
	"errors"
	"sort"
	"strings"

	"washnet/internal/models"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidTransition  = models.ErrInvalidTransition
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("insufficient permissions")
)

// Validation error codes.
const (
	CodeNameRequired          = "name_required"
	CodePhoneInvalid          = "phone_invalid"
	CodeEmailInvalid          = "email_invalid"
	CodeItemsRequired         = "items_required"
	CodeItemNameRequired      = "item_name_required"
	CodeServiceTypeInvalid    = "service_type_invalid"
	CodeDeliveryMethodInvalid = "delivery_method_invalid"
	CodeDateRequired          = "date_required"
	CodeDateInvalid           = "date_invalid"
	CodeDateInPast            = "date_in_past"
	CodeDateOrderInvalid      = "date_order_invalid"
	CodeEmailTaken            = "email_taken"
	CodeInvitationInvalid     = "invitation_invalid"
	CodePasswordInvalid       = "password_invalid"
	CodePasswordMismatch      = "password_mismatch"
	CodeStatusInvalid         = "status_invalid"
)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError carries every field violation found in one pass.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Add(field, code, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Code: code, Message: message})
}

func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Errors) == 0
}

// Has reports whether field carries an error with the given code.
func (e *ValidationError) Has(field, code string) bool {
	if e == nil {
		return false
	}
	for _, fe := range e.Errors {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// Fields groups the messages by field name.
func (e *ValidationError) Fields() map[string][]string {
	fields := make(map[string][]string)
	for _, fe := range e.Errors {
		fields[fe.Field] = append(fields[fe.Field], fe.Message)
	}
	return fields
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for field := range e.Fields() {
		names = append(names, field)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}
