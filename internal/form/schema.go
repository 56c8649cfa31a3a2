// internal/form/schema.go
//
// Launchpad – Forms subsystem: schemas.
//
// Context
//   A Schema is the ordered list of fields a form accepts, each bound to its
//   own rule list.  Schemas are declared once and reused for every request;
//   nothing in a Schema is mutated after registration.  The two built-in
//   schemas below back the contact page and the newsletter signup.  Operators
//   may replace either one at startup with a YAML definition of the same ID
//   (see definition.go).
//
//------------------------------------------------------------------------------

package form

// Schema IDs used by the site components.
const (
	ContactID    = "contact"
	NewsletterID = "newsletter"
)

// Choice is one option of a select field.
type Choice struct {
	Value string
	Label string
}

// FieldSpec declares one input slot and its rules, evaluated in order.
type FieldSpec struct {
	Name        string
	Label       string
	Type        string // text, email, textarea, select
	Placeholder string
	Choices     []Choice
	Rules       []Rule
}

// Schema is an ordered, immutable set of field declarations.
type Schema struct {
	ID     string
	Title  string
	Submit string // submit button label
	Fields []FieldSpec
}

// Field returns the declaration for name.
func (s *Schema) Field(name string) (*FieldSpec, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// subjectChoices lists the contact subjects in display order.
var subjectChoices = []Choice{
	{Value: "general", Label: "General Inquiry"},
	{Value: "support", Label: "Support Request"},
	{Value: "feedback", Label: "Feedback"},
	{Value: "other", Label: "Other"},
}

// ContactSchema backs the /contact page.
var ContactSchema = &Schema{
	ID:     ContactID,
	Title:  "Contact Us",
	Submit: "Send Message",
	Fields: []FieldSpec{
		{
			Name:  "name",
			Label: "Full Name",
			Type:  "text",
			Rules: []Rule{
				Required("Name is required"),
				Length(2, 50, "Name must be between 2 and 50 characters"),
				MustRegexp(`[a-zA-Z\s]+`, "Name must contain only letters and spaces"),
			},
		},
		{
			Name:  "email",
			Label: "Email",
			Type:  "email",
			Rules: []Rule{
				Required("Email is required"),
				Email("Please enter valid email address"),
			},
		},
		{
			Name:    "subject",
			Label:   "Subject",
			Type:    "select",
			Choices: subjectChoices,
			Rules: []Rule{
				Required("This field is required."),
				OneOf(choiceValues(subjectChoices), "Not a valid choice."),
			},
		},
		{
			Name:  "message",
			Label: "Message",
			Type:  "textarea",
			Rules: []Rule{
				Required("Message is required"),
				Length(10, 500, "Message must be between 10 and 500 characters"),
			},
		},
	},
}

// NewsletterSchema backs the signup box on the home page.
var NewsletterSchema = &Schema{
	ID:     NewsletterID,
	Title:  "Newsletter",
	Submit: "Subscribe",
	Fields: []FieldSpec{
		{
			Name:        "email",
			Label:       "Email",
			Type:        "email",
			Placeholder: "you@example.com",
			Rules: []Rule{
				Required("Email is required"),
				Email("Please enter valid email address"),
			},
		},
	},
}

func choiceValues(cs []Choice) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Value
	}
	return out
}
