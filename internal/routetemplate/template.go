// Package routetemplate converts ASP.NET-style route templates, as found in
// Azure Functions HTTP trigger bindings, into OpenAPI path templates.
//
// A route such as "orders/{id:int?}/{*rest}" becomes "orders/{id}/{rest}"
// with one descriptor per placeholder. Conversion is best effort: malformed
// input still yields a usable template and never an error.
package routetemplate

import (
	"regexp"
	"strings"
)

// Template is the result of parsing a route template.
type Template struct {
	// URLTemplate has every placeholder reduced to {name}.
	URLTemplate string `json:"urlTemplate" yaml:"urlTemplate"`
	// Parameters are listed in order of appearance.
	Parameters []Parameter `json:"parameters" yaml:"parameters"`
}

// Parameter describes a single route placeholder.
type Parameter struct {
	Name string `json:"name" yaml:"name"`
	// Type is the OpenAPI type implied by the first constraint, or "" when
	// there is none the table knows about.
	Type     string  `json:"type" yaml:"type"`
	Required bool    `json:"required" yaml:"required"`
	Default  *string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
}

// TypeOrDefault returns Type, or def when no type could be inferred.
func (p Parameter) TypeOrDefault(def string) string {
	if p.Type == "" {
		return def
	}
	return p.Type
}

// nameSep matches the first character that ends a parameter name.
var nameSep = regexp.MustCompile(`[:=?]`)

// Parse converts template. Literal text is kept verbatim; each outermost
// {...} pair becomes one parameter. An unclosed '{' and everything after it
// is appended as-is without producing a parameter, and a '}' with no open
// brace is kept as a literal.
func Parse(template string) Template {
	var b strings.Builder
	params := []Parameter{}

	depth := 0
	start := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case c == '}' && depth > 0:
			depth--
			if depth > 0 {
				continue
			}
			raw := template[start:i]
			if raw == "" {
				b.WriteString("{}")
				continue
			}
			p := parseParameter(raw)
			params = append(params, p)
			b.WriteString("{" + p.Name + "}")
		case depth == 0:
			b.WriteByte(c)
		}
	}
	if depth > 0 {
		b.WriteString(template[start-1:])
	}

	return Template{URLTemplate: b.String(), Parameters: params}
}

func parseParameter(raw string) Parameter {
	name := nameSep.Split(raw, 2)[0]
	name = strings.TrimPrefix(name, "*")

	p := Parameter{
		Name:     name,
		Type:     ConstraintType(firstConstraint(raw)),
		Required: !strings.HasSuffix(raw, "?"),
	}
	if parts := strings.Split(raw, "="); len(parts) > 1 {
		def := strings.TrimSuffix(parts[1], "?")
		p.Default = &def
	}
	return p
}

// firstConstraint returns the text between the first ':' and the next ':',
// '=' or '?', or "" when the token has no constraint.
func firstConstraint(raw string) string {
	loc := nameSep.FindStringIndex(raw)
	if loc == nil || raw[loc[0]] != ':' {
		return ""
	}
	rest := raw[loc[1]:]
	if end := strings.IndexAny(rest, ":=?"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

// ConstraintType maps a route constraint keyword to an OpenAPI parameter
// type. Unknown or empty constraints map to "".
func ConstraintType(constraint string) string {
	switch constraint {
	case "alpha", "datetime", "guid":
		return "string"
	case "decimal", "float", "double":
		return "number"
	case "int", "long":
		return "integer"
	case "bool":
		return "boolean"
	}
	switch {
	case hasAnyPrefix(constraint, "length(", "maxlength(", "minlength(", "regex("):
		return "string"
	case hasAnyPrefix(constraint, "min(", "max(", "range("):
		return "integer"
	}
	return ""
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
