package form

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// restoreRegistry puts the built-in schemas back after a test registers
// overrides.
func restoreRegistry(t *testing.T) {
	t.Helper()
	registryMu.Lock()
	saved := make(map[string]*Schema, len(registry))
	for k, v := range registry {
		saved[k] = v
	}
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		registry = saved
		registryMu.Unlock()
	})
}

func writeYAML(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const newsletterYAML = `
id: newsletter
title: Stay in the loop
submit: Sign me up
fields:
  - name: email
    label: Work email
    type: email
    required: true
    messages:
      required: We need an address.
  - name: topic
    label: Topic
    type: select
    error: Pick a topic.
    options:
      - product
      - value: events
        label: Events & Meetups
`

func TestRegisterFormsOverridesBuiltIn(t *testing.T) {
	restoreRegistry(t)
	dir := t.TempDir()
	writeYAML(t, dir, "newsletter.yaml", newsletterYAML)
	writeYAML(t, dir, "README.txt", "ignored")

	ids, err := RegisterForms(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{NewsletterID}, ids); diff != "" {
		t.Fatalf("ids mismatch:\n%s", diff)
	}

	s, ok := Lookup(NewsletterID)
	if !ok || s == NewsletterSchema {
		t.Fatal("override not registered")
	}
	if s.Submit != "Sign me up" {
		t.Errorf("Submit = %q", s.Submit)
	}

	f := Evaluate(s, map[string]string{"email": "", "topic": "sports"})
	want := []ErrorField{
		{Name: "email", Label: "Work email", Message: "We need an address."},
		{Name: "topic", Label: "Topic", Message: "Pick a topic."},
	}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("Errors() mismatch (-want +got):\n%s", diff)
	}

	topic, _ := s.Field("topic")
	wantChoices := []Choice{{"product", "product"}, {"events", "Events & Meetups"}}
	if diff := cmp.Diff(wantChoices, topic.Choices); diff != "" {
		t.Fatalf("choices mismatch:\n%s", diff)
	}
}

func TestRegisterFormsMissingDir(t *testing.T) {
	ids, err := RegisterForms(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(ids) != 0 {
		t.Fatalf("RegisterForms(missing) = %v, %v", ids, err)
	}
}

func TestLoadFormDefRejectsBadDefinitions(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"no id":        "fields:\n  - {name: a, label: A, type: text}\n",
		"no fields":    "id: x\n",
		"bad type":     "id: x\nfields:\n  - {name: a, label: A, type: checkbox}\n",
		"no label":     "id: x\nfields:\n  - {name: a, type: text}\n",
		"select no op": "id: x\nfields:\n  - {name: a, label: A, type: select}\n",
		"bad regex":    "id: x\nfields:\n  - {name: a, label: A, type: text, pattern: '('}\n",
		"min gt max":   "id: x\nfields:\n  - {name: a, label: A, type: text, minlength: 5, maxlength: 2}\n",
		"duplicate":    "id: x\nfields:\n  - {name: a, label: A, type: text}\n  - {name: a, label: B, type: text}\n",
	}
	for name, body := range cases {
		p := writeYAML(t, dir, strings.ReplaceAll(name, " ", "_")+".yaml", body)
		if _, err := LoadFormDef(p); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSchemaRuleOrder(t *testing.T) {
	fd := &FormDef{ID: "x", Fields: []FieldDef{{
		Name: "code", Label: "Code", Type: "text",
		Required: true, MinLength: 2, MaxLength: 4, Pattern: `[A-Z]+`,
	}}}
	s, err := fd.Schema()
	if err != nil {
		t.Fatal(err)
	}
	var kinds []RuleKind
	for _, r := range s.Fields[0].Rules {
		kinds = append(kinds, r.Kind)
	}
	if diff := cmp.Diff([]RuleKind{KindRequired, KindLength, KindRegexp}, kinds); diff != "" {
		t.Fatalf("rule order mismatch:\n%s", diff)
	}
	if s.Submit != "Submit" {
		t.Errorf("default Submit = %q", s.Submit)
	}
}

func TestRegisterFormsRejectsIncompatibleContact(t *testing.T) {
	cases := map[string]string{
		"missing fields": `
id: contact
fields:
  - {name: name, label: Name, type: text, required: true}
`,
		"retyped email": `
id: contact
fields:
  - {name: name, label: Name, type: text}
  - {name: email, label: Email, type: text}
  - {name: subject, label: Subject, type: select, options: [general]}
  - {name: message, label: Message, type: textarea}
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			restoreRegistry(t)
			dir := t.TempDir()
			writeYAML(t, dir, "contact.yaml", body)

			if _, err := RegisterForms(dir); !errors.Is(err, ErrOverrideIncompatible) {
				t.Fatalf("RegisterForms err = %v, want ErrOverrideIncompatible", err)
			}
			if s, _ := Lookup(ContactID); s != ContactSchema {
				t.Fatal("incompatible override replaced the built-in contact form")
			}
		})
	}
}

func TestRegisterFormsKeepsBuiltInRules(t *testing.T) {
	restoreRegistry(t)
	dir := t.TempDir()
	writeYAML(t, dir, "contact.yml", `
id: contact
fields:
  - {name: name, label: Your name, type: text, required: true}
  - {name: email, label: Email, type: email, required: true}
  - {name: subject, label: Topic, type: select, options: [general, billing]}
  - {name: message, label: Message, type: textarea, minlength: 1}
`)

	ids, err := RegisterForms(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{ContactID}, ids); diff != "" {
		t.Fatalf(".yml file not loaded:\n%s", diff)
	}

	s, _ := Lookup(ContactID)
	f := Evaluate(s, map[string]string{
		"name":    "Jane Doe",
		"email":   "jane@example.com",
		"subject": "billing",
		"message": "short",
	})
	want := []ErrorField{
		{Name: "subject", Label: "Topic", Message: "Not a valid choice."},
		{Name: "message", Label: "Message", Message: "Message must be between 10 and 500 characters"},
	}
	if diff := cmp.Diff(want, f.Errors()); diff != "" {
		t.Fatalf("Errors() mismatch (-want +got):\n%s", diff)
	}
}
