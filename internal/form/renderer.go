// internal/form/renderer.go
//
// Launchpad – Forms subsystem: HTML field renderer.
//
// Context
//   Templates call RenderField through the `formField` helper to emit one
//   input with its label, HTML5 validation attributes derived from the
//   field's rules, the previously submitted value, and the field's error (if
//   any).  Server-side rules stay authoritative; the attributes only give the
//   browser a head start.
//
// Style
//   Output HTML is deliberately plain so the theme styles via element
//   selectors or class hooks.  Each input gets id="fld-{form}-{name}" and is
//   wrapped in <div class="form-field">.  Fields with an error add the
//   “has-error” class.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
)

// RenderField returns the markup for one declared field.  f may be nil on a
// fresh GET, in which case no value or error is shown.
func RenderField(s *Schema, name string, f *Form) (template.HTML, error) {
	spec, ok := s.Field(name)
	if !ok {
		return "", fmt.Errorf("RenderField: form %q has no field %q", s.ID, name)
	}

	var val, errMsg string
	if f != nil {
		val = f.Value(name)
		errMsg = f.FirstError(name)
	}

	var buf bytes.Buffer
	if err := writeField(&buf, s.ID, spec, val, errMsg); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderFields renders every declared field in order.
func RenderFields(s *Schema, f *Form) (template.HTML, error) {
	var buf bytes.Buffer
	for i := range s.Fields {
		spec := &s.Fields[i]
		var val, errMsg string
		if f != nil {
			val = f.Value(spec.Name)
			errMsg = f.FirstError(spec.Name)
		}
		if err := writeField(&buf, s.ID, spec, val, errMsg); err != nil {
			return "", err
		}
	}
	return template.HTML(buf.String()), nil
}

// writeField emits HTML for an individual field into buf.
func writeField(buf *bytes.Buffer, formID string, f *FieldSpec, val, errMsg string) error {
	id := html.EscapeString("fld-" + formID + "-" + f.Name)
	idAttr := `id="` + id + `"`
	nameAttr := `name="` + html.EscapeString(f.Name) + `"`

	if errMsg != "" {
		buf.WriteString(`<div class="form-field has-error">` + "\n")
	} else {
		buf.WriteString(`<div class="form-field">` + "\n")
	}
	buf.WriteString(`<label for="` + id + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	switch f.Type {
	case "text", "email":
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="` + f.Type + `"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		writeConstraints(buf, f, true)
		if val != "" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(`>` + "\n")

	case "textarea":
		buf.WriteString(`<textarea ` + idAttr + ` ` + nameAttr + ` rows="6"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		writeConstraints(buf, f, false)
		buf.WriteString(`>` + html.EscapeString(val) + `</textarea>` + "\n")

	case "select":
		buf.WriteString(`<select ` + idAttr + ` ` + nameAttr)
		writeConstraints(buf, f, false)
		buf.WriteString(`>` + "\n")
		for _, opt := range f.Choices {
			sel := ""
			if val == opt.Value {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt.Value) + `"` + sel + `>` +
				html.EscapeString(opt.Label) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	buf.WriteString(`<span class="error" aria-live="polite">` + html.EscapeString(errMsg) + `</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
	return nil
}

// writeConstraints maps rules to HTML5 attributes.  pattern is only valid on
// <input>.
func writeConstraints(buf *bytes.Buffer, f *FieldSpec, allowPattern bool) {
	for _, r := range f.Rules {
		switch r.Kind {
		case KindRequired:
			buf.WriteString(` required`)
		case KindLength:
			if r.Min > 0 {
				buf.WriteString(` minlength="` + strconv.Itoa(r.Min) + `"`)
			}
			if r.Max > 0 {
				buf.WriteString(` maxlength="` + strconv.Itoa(r.Max) + `"`)
			}
		case KindRegexp:
			if allowPattern {
				buf.WriteString(` pattern="` + html.EscapeString(r.Pattern) + `"`)
			}
		}
	}
}

// HiddenCSRF renders the hidden token input.
func HiddenCSRF(token string) template.HTML {
	return template.HTML(`<input type="hidden" name="` + CSRFField + `" value="` + html.EscapeString(token) + `">`)
}
