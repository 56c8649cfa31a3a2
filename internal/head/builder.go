// internal/head/builder.go
//
// The Builder collects the tags that belong inside a page's <head> beyond
// the title: description, canonical link, and Open Graph metadata.  One
// Builder is created per render.  Handlers describe the page with typed
// setters; the layout emits the result with {{ .Head.Tags }}.
//
// Features
// --------
//   - Meta      – <meta name=… content=…>, last value per name wins.
//   - Property  – <meta property=… content=…> for Open Graph.
//   - Link      – <link rel=… href=…>, last value per rel wins.
//   - Tags      – escaped, deterministic output in insertion order.
package head

import (
	"html/template"
	"strings"
)

type tag struct {
	kind  string // name, property, link
	key   string
	value string
}

// Builder is not safe for concurrent use.  Zero value is ready.
type Builder struct {
	tags []tag
}

// New returns an empty Builder.
func New() *Builder { return &Builder{} }

// Describe is shorthand for the description and og:description pair.
func (b *Builder) Describe(text string) *Builder {
	b.Meta("description", text)
	return b.Property("og:description", text)
}

// Meta sets <meta name="name" content="content">.
func (b *Builder) Meta(name, content string) *Builder { return b.set("name", name, content) }

// Property sets <meta property="prop" content="content">.
func (b *Builder) Property(prop, content string) *Builder { return b.set("property", prop, content) }

// Link sets <link rel="rel" href="href">.
func (b *Builder) Link(rel, href string) *Builder { return b.set("link", rel, href) }

// Has reports whether a tag of the given key was set by any setter.
func (b *Builder) Has(key string) bool {
	for _, t := range b.tags {
		if t.key == key {
			return true
		}
	}
	return false
}

func (b *Builder) set(kind, key, value string) *Builder {
	for i := range b.tags {
		if b.tags[i].kind == kind && b.tags[i].key == key {
			b.tags[i].value = value
			return b
		}
	}
	b.tags = append(b.tags, tag{kind: kind, key: key, value: value})
	return b
}

// Tags renders every tag, one per line.  A nil Builder renders nothing.
func (b *Builder) Tags() template.HTML {
	if b == nil || len(b.tags) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, t := range b.tags {
		k, v := template.HTMLEscapeString(t.key), template.HTMLEscapeString(t.value)
		switch t.kind {
		case "link":
			sb.WriteString(`<link rel="` + k + `" href="` + v + `">`)
		default:
			sb.WriteString(`<meta ` + t.kind + `="` + k + `" content="` + v + `">`)
		}
		sb.WriteString("\n")
	}
	return template.HTML(sb.String())
}
