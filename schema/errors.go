package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Stable error codes reported by validation. These are part of the public
// API contract and must not change between releases.
const (
	CodeRequiredFieldMissing = "generic.required_field_missing"
	CodeInvalidBoolean       = "generic.invalid_boolean"
	CodeInvalidInteger       = "generic.invalid_integer"
	CodeInvalidFloat         = "generic.invalid_float"
	CodeInvalidDecimal       = "generic.invalid_decimal"
	CodeInvalidString        = "generic.invalid_string"
	CodeInvalidEnum          = "generic.invalid_enum"
	CodeInvalidDate          = "generic.invalid_date"
	CodeInvalidDateTime      = "generic.invalid_datetime"
	CodeInvalidArray         = "generic.invalid_array"
	CodeInvalidObject        = "generic.invalid_object"
	CodeInvalidHash          = "generic.invalid_hash"
	CodeInvalidUUID          = "generic.invalid_uuid"
)

// Platform-level error codes used by the dispatch core when translating
// transport responses into error collections.
const (
	CodeNotFound       = "platform.not_found"
	CodeInvalidSession = "platform.invalid_session"
	CodeTimeout        = "platform.timeout"
	CodeFault          = "platform.fault"
	CodeMalformed      = "platform.malformed"
)

// statusForCode maps an error code to the HTTP-equivalent status it implies.
// Unknown codes map to 500.
func statusForCode(code string) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeInvalidSession:
		return 401
	case CodeTimeout:
		return 408
	case CodeMalformed:
		return 422
	case CodeFault:
		return 500
	}
	if strings.HasPrefix(code, "generic.") {
		return 422
	}
	return 500
}

// Error is a single structured validation or platform error.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Reference string `json:"reference,omitempty"`
}

// Errors is an accumulating collection of structured errors. Validation
// appends to a collection rather than returning on the first problem so a
// caller can report everything at once. The zero value is not usable; create
// collections with NewErrors.
type Errors struct {
	status int
	errors []Error
}

// NewErrors returns an empty error collection.
func NewErrors() *Errors {
	return &Errors{}
}

// Add appends an error built from a code, message and machine reference,
// updating the collection's HTTP-equivalent status to the worst seen so far.
func (e *Errors) Add(code, message, reference string) {
	e.AddError(Error{Code: code, Message: message, Reference: reference})
}

// AddError appends a pre-built error to the collection.
func (e *Errors) AddError(err Error) {
	e.errors = append(e.errors, err)
	if s := statusForCode(err.Code); s > e.status {
		e.status = s
	}
}

// Merge appends every error from other into this collection. A nil or empty
// other is a no-op.
func (e *Errors) Merge(other *Errors) {
	if other == nil {
		return
	}
	for _, err := range other.errors {
		e.AddError(err)
	}
}

// HasErrors reports whether the collection contains at least one error.
func (e *Errors) HasErrors() bool {
	return e != nil && len(e.errors) > 0
}

// Count returns the number of errors in the collection.
func (e *Errors) Count() int {
	if e == nil {
		return 0
	}
	return len(e.errors)
}

// Errors returns the accumulated errors in the order they were added. The
// returned slice must not be modified.
func (e *Errors) Errors() []Error {
	return e.errors
}

// Status returns the HTTP-equivalent status for the collection: the worst
// status implied by any contained error code, or an explicitly assigned
// status. An empty collection reports 200.
func (e *Errors) Status() int {
	if e == nil || len(e.errors) == 0 {
		return 200
	}
	if e.status == 0 {
		return 500
	}
	return e.status
}

// SetStatus overrides the collection's status. The dispatch core uses this to
// re-flag error collections parsed from a transport response with the
// original response's status code.
func (e *Errors) SetStatus(status int) {
	e.status = status
}

// Error implements the error interface, summarizing the collection.
func (e *Errors) Error() string {
	if !e.HasErrors() {
		return "no errors"
	}
	parts := make([]string, len(e.errors))
	for i, err := range e.errors {
		parts[i] = err.Code
	}
	return fmt.Sprintf("%d error(s): %s", len(e.errors), strings.Join(parts, ", "))
}

// errorsEnvelope is the wire shape of an error collection.
type errorsEnvelope struct {
	Kind   string  `json:"kind"`
	Errors []Error `json:"errors"`
}

// MarshalJSON renders the collection in its wire shape, with kind "Errors".
func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(errorsEnvelope{Kind: "Errors", Errors: e.errors})
}

// UnmarshalJSON parses a wire-shaped error collection.
func (e *Errors) UnmarshalJSON(data []byte) error {
	var env errorsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	e.errors = nil
	e.status = 0
	for _, entry := range env.Errors {
		e.AddError(entry)
	}
	return nil
}
