// internal/form/rule.go
//
// Launchpad – Forms subsystem: field rules.
//
// Context
//   A Rule is one constraint a submitted value must satisfy.  Rules are built
//   once when a Schema is declared and are shared, read-only, by every Form
//   evaluated against that Schema.  Check is a pure function of the rule and
//   the value: no clock, no I/O, no hidden state.
//
//   Required, length, and e-mail checks are delegated to go-playground's
//   validator (`Var` with built-in tags).  Regex and choice rules use a
//   precompiled pattern and a set lookup because tag syntax cannot carry
//   arbitrary patterns or option values that contain commas, pipes, or spaces.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RuleKind tags the variant held by a Rule.
type RuleKind int

const (
	KindRequired RuleKind = iota
	KindLength
	KindEmail
	KindRegexp
	KindChoice
)

func (k RuleKind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindLength:
		return "length_range"
	case KindEmail:
		return "email_format"
	case KindRegexp:
		return "regex_match"
	case KindChoice:
		return "choice_membership"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Failure classes.  Every RuleError unwraps to exactly one of these.
var (
	ErrFieldMissing       = errors.New("field missing")
	ErrFieldTooShort      = errors.New("field too short")
	ErrFieldTooLong       = errors.New("field too long")
	ErrFieldFormatInvalid = errors.New("field format invalid")
	ErrFieldChoiceInvalid = errors.New("field choice invalid")
)

// RuleError is the single, user-facing failure produced by Rule.Check.
type RuleError struct {
	Kind    RuleKind
	Err     error // one of the ErrField* sentinels
	Message string
}

func (e *RuleError) Error() string { return e.Message }
func (e *RuleError) Unwrap() error { return e.Err }

// Rule is a tagged variant.  Only the parameters relevant to Kind are set.
// Construct rules with Required, Length, Email, Regexp, or OneOf.
type Rule struct {
	Kind    RuleKind
	Min     int      // KindLength; 0 means no lower bound.
	Max     int      // KindLength; 0 means no upper bound.
	Pattern string   // KindRegexp, as declared (no anchors added).
	Choices []string // KindChoice, declaration order.
	Message string   // may contain {min} and {max}.

	re  *regexp.Regexp
	set map[string]struct{}
}

// validate is the shared go-playground instance.  Var is safe for concurrent
// use once no more validations are being registered.
var validate = validator.New()

// Required fails when the value is empty or whitespace only.
func Required(msg string) Rule {
	if msg == "" {
		msg = "This field is required."
	}
	return Rule{Kind: KindRequired, Message: msg}
}

// Length bounds the character count to [min, max].  A zero bound is ignored.
func Length(min, max int, msg string) Rule {
	if msg == "" {
		switch {
		case min > 0 && max > 0:
			msg = "Field must be between {min} and {max} characters long."
		case max > 0:
			msg = "Field cannot be longer than {max} characters."
		default:
			msg = "Field must be at least {min} characters long."
		}
	}
	return Rule{Kind: KindLength, Min: min, Max: max, Message: msg}
}

// MaxEmailLength is the longest address Email accepts, in characters.
const MaxEmailLength = 254

// Email requires a conventional local@domain address of at most
// MaxEmailLength characters.
func Email(msg string) Rule {
	if msg == "" {
		msg = "Invalid email address."
	}
	return Rule{Kind: KindEmail, Message: msg}
}

// Regexp requires the whole value to match pattern.
func Regexp(pattern, msg string) (Rule, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return Rule{}, fmt.Errorf("compile pattern %q: %w", pattern, err)
	}
	if msg == "" {
		msg = "Invalid input."
	}
	return Rule{Kind: KindRegexp, Pattern: pattern, Message: msg, re: re}, nil
}

// MustRegexp is Regexp for package-level schema declarations.
func MustRegexp(pattern, msg string) Rule {
	r, err := Regexp(pattern, msg)
	if err != nil {
		panic(err)
	}
	return r
}

// OneOf requires the value to be one of choices.
func OneOf(choices []string, msg string) Rule {
	if msg == "" {
		msg = "Not a valid choice."
	}
	set := make(map[string]struct{}, len(choices))
	for _, c := range choices {
		set[c] = struct{}{}
	}
	own := append([]string(nil), choices...)
	return Rule{Kind: KindChoice, Choices: own, Message: msg, set: set}
}

// Check evaluates value against r.  It returns nil on pass, otherwise a
// *RuleError carrying the rendered message.
func (r Rule) Check(value string) error {
	switch r.Kind {
	case KindRequired:
		if validate.Var(strings.TrimSpace(value), "required") != nil {
			return r.fail(ErrFieldMissing)
		}

	case KindLength:
		if r.Min > 0 && validate.Var(value, "min="+strconv.Itoa(r.Min)) != nil {
			return r.fail(ErrFieldTooShort)
		}
		if r.Max > 0 && validate.Var(value, "max="+strconv.Itoa(r.Max)) != nil {
			return r.fail(ErrFieldTooLong)
		}

	case KindEmail:
		if validate.Var(value, "max="+strconv.Itoa(MaxEmailLength)+",email") != nil {
			return r.fail(ErrFieldFormatInvalid)
		}

	case KindRegexp:
		if r.re == nil || !r.re.MatchString(value) {
			return r.fail(ErrFieldFormatInvalid)
		}

	case KindChoice:
		if _, ok := r.set[value]; !ok {
			return r.fail(ErrFieldChoiceInvalid)
		}

	default:
		return &RuleError{Kind: r.Kind, Err: ErrFieldFormatInvalid, Message: "Unsupported rule."}
	}
	return nil
}

func (r Rule) fail(sentinel error) *RuleError {
	return &RuleError{Kind: r.Kind, Err: sentinel, Message: r.message()}
}

// message expands {min} and {max} in the rule's template.
func (r Rule) message() string {
	if r.Kind != KindLength {
		return r.Message
	}
	return strings.NewReplacer(
		"{min}", strconv.Itoa(r.Min),
		"{max}", strconv.Itoa(r.Max),
	).Replace(r.Message)
}
