// Package arm builds Azure Resource Manager request bodies for API Management
// from normalized documents and route templates. It does not talk to ARM.
package arm

import (
	"fmt"
	"strings"

	"github.com/mark3labs/apimport/internal/routetemplate"
	"github.com/mark3labs/apimport/internal/spec"
	"gopkg.in/yaml.v3"
)

// APICreateOrUpdate is the body of an Api.createOrUpdate request that imports
// a document.
type APICreateOrUpdate struct {
	Properties APIImportProperties `json:"properties"`
}

type APIImportProperties struct {
	Format      spec.ImportFormat `json:"format"`
	Value       string            `json:"value"`
	Path        string            `json:"path"`
	DisplayName string            `json:"displayName,omitempty"`
	ServiceURL  string            `json:"serviceUrl,omitempty"`
	Protocols   []string          `json:"protocols,omitempty"`
}

// ImportOptions controls NewAPIImport.
type ImportOptions struct {
	// Path is the API URL suffix inside the APIM service.
	Path        string
	DisplayName string
	ServiceURL  string
	// Protocols overrides the protocols derived from the document schemes.
	Protocols []string
	// AsYAML submits a 3.x document as YAML with the "openapi" format.
	AsYAML bool
}

// NewAPIImport builds the import body for desc.
func NewAPIImport(desc *spec.ImportDescriptor, opts ImportOptions) (*APICreateOrUpdate, error) {
	if desc == nil {
		return nil, fmt.Errorf("arm: nil descriptor")
	}
	path := strings.Trim(strings.TrimSpace(opts.Path), "/")
	if path == "" {
		return nil, fmt.Errorf("arm: API path is required")
	}

	format := desc.Format
	var value string
	if opts.AsYAML && !desc.IsV2() {
		b, err := yaml.Marshal(desc.Source)
		if err != nil {
			return nil, fmt.Errorf("arm: encode document as YAML: %w", err)
		}
		format, value = spec.FormatOpenAPI, string(b)
	} else {
		v, err := desc.Value()
		if err != nil {
			return nil, fmt.Errorf("arm: %w", err)
		}
		value = v
	}

	displayName := strings.TrimSpace(opts.DisplayName)
	if displayName == "" {
		displayName = desc.Info.Title
	}

	return &APICreateOrUpdate{Properties: APIImportProperties{
		Format:      format,
		Value:       value,
		Path:        path,
		DisplayName: displayName,
		ServiceURL:  strings.TrimSpace(opts.ServiceURL),
		Protocols:   protocols(opts.Protocols, desc.Schemes),
	}}, nil
}

// protocols keeps only the schemes APIM accepts, falling back to https.
func protocols(override, schemes []string) []string {
	src := override
	if len(src) == 0 {
		src = schemes
	}
	var out []string
	seen := map[string]struct{}{}
	for _, s := range src {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case "http", "https", "ws", "wss":
		default:
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return []string{"https"}
	}
	return out
}

// OperationContract is the body of an ApiOperation.createOrUpdate request.
type OperationContract struct {
	Properties OperationProperties `json:"properties"`
}

type OperationProperties struct {
	DisplayName        string              `json:"displayName"`
	Method             string              `json:"method"`
	URLTemplate        string              `json:"urlTemplate"`
	TemplateParameters []ParameterContract `json:"templateParameters"`
}

type ParameterContract struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Required     bool   `json:"required"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// NewOperationContract builds an operation from an HTTP method and a route
// template. Parameters without an inferable type become strings.
func NewOperationContract(method, displayName, route string) OperationContract {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		method = "GET"
	}
	tmpl := routetemplate.Parse(route)
	if !strings.HasPrefix(tmpl.URLTemplate, "/") {
		tmpl.URLTemplate = "/" + tmpl.URLTemplate
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = method + " " + tmpl.URLTemplate
	}

	params := make([]ParameterContract, 0, len(tmpl.Parameters))
	for _, p := range tmpl.Parameters {
		pc := ParameterContract{
			Name:     p.Name,
			Type:     p.TypeOrDefault("string"),
			Required: p.Required,
		}
		if p.Default != nil {
			pc.DefaultValue = *p.Default
		}
		params = append(params, pc)
	}

	return OperationContract{Properties: OperationProperties{
		DisplayName:        displayName,
		Method:             method,
		URLTemplate:        tmpl.URLTemplate,
		TemplateParameters: params,
	}}
}
