// internal/form/validate.go
//
// Launchpad – Forms subsystem: form evaluation.
//
// Context
//   Evaluate binds a decoded POST payload to a Schema and runs every rule.
//   Fields are evaluated in declaration order and independently of one
//   another.  Within a field, rules run in order and evaluation stops at the
//   first failure, so at most one error surfaces per field per submission.
//
// Workflow
//   •  Evaluate creates one Field per declared name.  Payload keys the Schema
//      does not declare are ignored.
//   •  Form.IsValid is true iff no Field carries an error.
//   •  Form.Errors lists failures in declaration order so templates and flash
//      messages keep a stable order.
//   •  Callers that need an error value wrap the list in ValidationError and
//      treat it as a user error, not a 500.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// -----------------------------------------------------------------------------
// Evaluated state
// -----------------------------------------------------------------------------

// Field is one evaluated input slot.  Raw is never changed after creation;
// re-validation builds a new Form.
type Field struct {
	Name   string
	Raw    string
	Errors []string

	cause error
}

// Err returns the *RuleError behind the first message, or nil.
func (f *Field) Err() error { return f.cause }

// Form is the per-request result of Evaluate.  It is not shared across
// requests.
type Form struct {
	Schema *Schema
	fields map[string]*Field
	order  []string
}

// Evaluate runs schema against payload.  The result depends only on its
// arguments.
func Evaluate(schema *Schema, payload map[string]string) *Form {
	f := &Form{
		Schema: schema,
		fields: make(map[string]*Field, len(schema.Fields)),
		order:  make([]string, 0, len(schema.Fields)),
	}

	for i := range schema.Fields {
		spec := &schema.Fields[i]
		fld := &Field{Name: spec.Name, Raw: payload[spec.Name]}

		for _, rule := range spec.Rules {
			if err := rule.Check(fld.Raw); err != nil {
				fld.Errors = append(fld.Errors, err.Error())
				fld.cause = err
				break
			}
		}

		f.fields[spec.Name] = fld
		f.order = append(f.order, spec.Name)
	}
	return f
}

// Field returns the evaluated field or nil when the schema does not declare it.
func (f *Form) Field(name string) *Field { return f.fields[name] }

// Value returns the submitted value for name.
func (f *Form) Value(name string) string {
	if fld := f.fields[name]; fld != nil {
		return fld.Raw
	}
	return ""
}

// IsValid reports whether every field passed.
func (f *Form) IsValid() bool {
	for _, name := range f.order {
		if len(f.fields[name].Errors) > 0 {
			return false
		}
	}
	return true
}

// Errors lists failures in declaration order.
func (f *Form) Errors() []ErrorField {
	var out []ErrorField
	for i, name := range f.order {
		fld := f.fields[name]
		for _, msg := range fld.Errors {
			out = append(out, ErrorField{
				Name:    name,
				Label:   f.Schema.Fields[i].Label,
				Message: msg,
			})
		}
	}
	return out
}

// FirstError returns the message for name, or "".
func (f *Form) FirstError(name string) string {
	if fld := f.fields[name]; fld != nil && len(fld.Errors) > 0 {
		return fld.Errors[0]
	}
	return ""
}

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// ErrorField describes a single validation failure.  An empty Name marks a
// form-level message.
type ErrorField struct {
	Name    string // field name
	Label   string // display label, optional
	Message string // user-facing message
}

// Flash renders the failure as "<Field> error: <message>".
func (e ErrorField) Flash() string {
	if e.Name == "" {
		return e.Message
	}
	return capitalize(e.Name) + " error: " + e.Message
}

// ValidationError wraps []ErrorField and satisfies the error interface.
//
// It lets callers (submission handlers, component handlers) distinguish user
// input errors from system failures via errors.As or IsValidationError.
type ValidationError struct {
	Form   string
	Fields []ErrorField
}

func (ve *ValidationError) Error() string { return "form validation failed: " + ve.Form }

// Messages returns one flash line per failure, in field order.
func (ve *ValidationError) Messages() []string {
	out := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		out[i] = f.Flash()
	}
	return out
}

// IsValidationError reports whether err came from a rejected submission.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError unwraps err into its field list.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// -----------------------------------------------------------------------------
// Payload helpers
// -----------------------------------------------------------------------------

// Payload flattens parsed POST values into name → first value.
func Payload(v url.Values) map[string]string {
	out := make(map[string]string, len(v))
	for k, vals := range v {
		if len(vals) > 0 {
			out[k] = vals[0]
		}
	}
	return out
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}
