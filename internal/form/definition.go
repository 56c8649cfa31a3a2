// internal/form/definition.go
//
// Launchpad – Forms subsystem: schema registry and YAML overrides.
//
// Context
//   The built-in schemas (schema.go) are registered at package init.  An
//   operator may drop YAML definitions into `paths.forms_dir`; RegisterForms
//   parses every “*.yaml” and “*.yml” there and replaces the registered
//   schema with the same ID.  An override of a built-in must keep every
//   built-in field with the same type, and the built-in rules still run
//   after its own, so an override can tighten a form but never loosen it.  Handlers resolve schemas through Lookup once at construction,
//   so all requests see one immutable Schema per form.
//
// Workflow
//   •  FormDef / FieldDef mirror the YAML file.
//   •  LoadFormDef parses one file and validates structural rules.
//   •  FormDef.Schema converts the definition into rule lists in the fixed
//      order required → length → email → pattern → options.
//   •  RegisterForms walks a directory and registers each result.
//
// Example
//
//	id: newsletter
//	title: Stay in the loop
//	submit: Sign me up
//	fields:
//	  - name: email
//	    label: Work email
//	    type: email
//	    required: true
//	    messages:
//	      required: We need an address to write to.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
type FormDef struct {
	ID     string     `yaml:"id"`     // Must match a schema the site serves.
	Title  string     `yaml:"title"`  // Display title, optional.
	Submit string     `yaml:"submit"` // Button label, optional.
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef describes a single input control.  Validation metadata lives
// inline so the server enforces the same rules the browser hints at.
type FieldDef struct {
	Name        string      `yaml:"name"`        // Submission key.  Required.
	Label       string      `yaml:"label"`       // Human-readable label.  Required.
	Type        string      `yaml:"type"`        // text, email, textarea, select.
	Placeholder string      `yaml:"placeholder"` // Optional placeholder text.
	Required    bool        `yaml:"required"`    // True if input is mandatory.
	MinLength   int         `yaml:"minlength"`   // ≥ 0, 0 means unset.
	MaxLength   int         `yaml:"maxlength"`   // ≥ 0, 0 means unset.
	Pattern     string      `yaml:"pattern"`     // Full-match regex.
	Options     []OptionDef `yaml:"options"`     // For select.
	ErrorMsg    string      `yaml:"error"`       // Fallback message for every rule.
	Messages    MessageDefs `yaml:"messages"`    // Per-rule messages, optional.
}

// OptionDef accepts either a bare scalar (“support”) or a mapping with value
// and label keys.
type OptionDef struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *OptionDef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		o.Value, o.Label = n.Value, n.Value
		return nil
	}
	type plain OptionDef
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*o = OptionDef(p)
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

// MessageDefs overrides the default message per rule kind.
type MessageDefs struct {
	Required string `yaml:"required"`
	Length   string `yaml:"length"`
	Format   string `yaml:"format"`
	Choice   string `yaml:"choice"`
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = map[string]*Schema{
		ContactID:    ContactSchema,
		NewsletterID: NewsletterSchema,
	}
)

// Lookup returns the registered schema for id.
func Lookup(id string) (*Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[id]
	return s, ok
}

// IDs lists registered schema IDs in sorted order.
func IDs() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Register inserts or replaces s.  Call during startup only.
func Register(s *Schema) {
	registryMu.Lock()
	registry[s.ID] = s
	registryMu.Unlock()
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// LoadFormDef parses one YAML file and validates its structure.  It never
// touches the registry.
func LoadFormDef(path string) (*FormDef, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form file %s: %w", path, err)
	}

	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", path, err)
	}

	if err := validateFormDef(&fd, path); err != nil {
		return nil, err
	}
	return &fd, nil
}

// RegisterForms loads every “*.yaml” and “*.yml” under dir and registers the resulting
// schemas, replacing built-ins with the same ID.  A missing dir is not an
// error.  It returns the IDs it registered.
func RegisterForms(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}

	var loaded []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !isYAML(d.Name()) {
			return nil
		}

		fd, err := LoadFormDef(path)
		if err != nil {
			return err // fail fast so issues surface loudly.
		}
		s, err := fd.Schema()
		if err != nil {
			return fmt.Errorf("form definition %s: %w", path, err)
		}
		if err := guardBuiltin(s); err != nil {
			return fmt.Errorf("form definition %s: %w", path, err)
		}
		Register(s)
		loaded = append(loaded, s.ID)
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return loaded, err
	}
	return loaded, nil
}

// Schema converts the definition into an immutable Schema.
func (fd *FormDef) Schema() (*Schema, error) {
	s := &Schema{ID: fd.ID, Title: fd.Title, Submit: fd.Submit}
	if s.Submit == "" {
		s.Submit = "Submit"
	}

	for _, f := range fd.Fields {
		spec := FieldSpec{
			Name:        f.Name,
			Label:       f.Label,
			Type:        f.Type,
			Placeholder: f.Placeholder,
		}

		if f.Required {
			spec.Rules = append(spec.Rules, Required(f.msg(f.Messages.Required)))
		}
		if f.MinLength > 0 || f.MaxLength > 0 {
			spec.Rules = append(spec.Rules, Length(f.MinLength, f.MaxLength, f.msg(f.Messages.Length)))
		}
		if f.Type == "email" {
			spec.Rules = append(spec.Rules, Email(f.msg(f.Messages.Format)))
		}
		if f.Pattern != "" {
			r, err := Regexp(f.Pattern, f.msg(f.Messages.Format))
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			spec.Rules = append(spec.Rules, r)
		}
		if len(f.Options) > 0 {
			values := make([]string, len(f.Options))
			for i, o := range f.Options {
				values[i] = o.Value
				spec.Choices = append(spec.Choices, Choice{Value: o.Value, Label: o.Label})
			}
			spec.Rules = append(spec.Rules, OneOf(values, f.msg(f.Messages.Choice)))
		}

		s.Fields = append(s.Fields, spec)
	}
	return s, nil
}

// builtins are the schemas the site components depend on.
var builtins = map[string]*Schema{
	ContactID:    ContactSchema,
	NewsletterID: NewsletterSchema,
}

// ErrOverrideIncompatible marks an override that drops or retypes a field
// of the built-in schema it replaces.
var ErrOverrideIncompatible = errors.New("override incompatible with built-in form")

// guardBuiltin checks s against the built-in with the same ID, if any, and
// appends the built-in rules to each matching field.
func guardBuiltin(s *Schema) error {
	base, ok := builtins[s.ID]
	if !ok {
		return nil
	}
	for _, bf := range base.Fields {
		f, ok := s.Field(bf.Name)
		if !ok {
			return fmt.Errorf("%w: %s: field %q missing", ErrOverrideIncompatible, s.ID, bf.Name)
		}
		if f.Type != bf.Type {
			return fmt.Errorf("%w: %s: field %q has type %q, want %q",
				ErrOverrideIncompatible, s.ID, bf.Name, f.Type, bf.Type)
		}
		rules := make([]Rule, 0, len(f.Rules)+len(bf.Rules))
		f.Rules = append(append(rules, f.Rules...), bf.Rules...)
	}
	return nil
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// msg prefers the per-rule message, then the field-wide fallback.  An empty
// result selects the rule's default.
func (f *FieldDef) msg(specific string) string {
	if specific != "" {
		return specific
	}
	return f.ErrorMsg
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var knownTypes = map[string]bool{
	"text":     true,
	"email":    true,
	"textarea": true,
	"select":   true,
}

// validateFormDef enforces structural rules YAML tags cannot express.
func validateFormDef(fd *FormDef, path string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", path)
	}
	if len(fd.Fields) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields'", path)
	}

	seen := make(map[string]struct{}, len(fd.Fields))
	for i := range fd.Fields {
		if err := validateField(&fd.Fields[i], path); err != nil {
			return err
		}
		if _, dup := seen[fd.Fields[i].Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", path, fd.Fields[i].Name)
		}
		seen[fd.Fields[i].Name] = struct{}{}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, path string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", path)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", path, f.Name)
	}
	if !knownTypes[f.Type] {
		return fmt.Errorf("form %s: field '%s' has unsupported type '%s'", path, f.Name, f.Type)
	}
	if f.Type == "select" && len(f.Options) == 0 {
		return fmt.Errorf("form %s: select field '%s' needs 'options'", path, f.Name)
	}

	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", path, f.Name, err)
		}
	}

	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", path, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", path, f.Name)
	}
	return nil
}
