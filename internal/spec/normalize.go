package spec

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mohae/deepcopy"
)

const (
	versionMessage = "spec: the document could not be parsed: missing or unsupported version (expected 'swagger: \"2.0\"' or 'openapi: 3.x')"
	objectMessage  = "spec: the document could not be parsed: expected a JSON object"
)

// Parse validates the minimal structure of a decoded OpenAPI/Swagger document
// and extracts its import descriptor. The returned descriptor's Source is
// source itself; nothing is copied.
func Parse(source any) (*ImportDescriptor, error) {
	doc, ok := source.(map[string]any)
	if !ok || doc == nil {
		return nil, invalidDocument("", objectMessage)
	}

	version, format, ok := detectVersion(doc)
	if !ok {
		return nil, invalidDocument("#", versionMessage)
	}

	info, ok := doc["info"].(map[string]any)
	if !ok {
		return nil, invalidDocument("#/info", `spec: missing required field "info"`)
	}
	desc := &ImportDescriptor{
		Version: version,
		Format:  format,
		Source:  doc,
		Info: Info{
			Title:          scalarString(info["title"]),
			Description:    scalarString(info["description"]),
			Version:        scalarString(info["version"]),
			TermsOfService: scalarString(info["termsOfService"]),
		},
	}
	if desc.Info.Title == "" {
		return nil, invalidDocument("#/info/title", `spec: missing required field "info.title"`)
	}
	if desc.Info.Version == "" {
		return nil, invalidDocument("#/info/version", `spec: missing required field "info.version"`)
	}

	desc.derive()
	return desc, nil
}

// detectVersion checks the 3.x marker before the 2.0 one.
func detectVersion(doc Document) (string, ImportFormat, bool) {
	if s, ok := doc["openapi"].(string); ok && strings.HasPrefix(s, "3.") {
		return s, FormatOpenAPIJSON, true
	}
	if s, ok := doc["swagger"].(string); ok && strings.HasPrefix(s, "2.0") {
		return s, FormatSwaggerJSON, true
	}
	return "", "", false
}

// derive refreshes Host, BasePath and Schemes from Source.
func (d *ImportDescriptor) derive() {
	d.Host, d.BasePath, d.Schemes = "", "", nil

	if d.IsV2() {
		d.Host = scalarString(d.Source["host"])
		d.BasePath = scalarString(d.Source["basePath"])
		if list, ok := d.Source["schemes"].([]any); ok {
			for _, s := range list {
				if str, ok := s.(string); ok && str != "" {
					d.Schemes = append(d.Schemes, str)
				}
			}
		}
		return
	}

	if first, ok := firstServer(d.Source); ok {
		_, d.Host, d.BasePath = splitServerURL(scalarString(first["url"]))
	}
	seen := map[string]struct{}{}
	for _, server := range serverEntries(d.Source) {
		scheme, _, _ := splitServerURL(scalarString(server["url"]))
		if scheme == "" || strings.Contains(scheme, "{") {
			continue
		}
		if _, dup := seen[scheme]; dup {
			continue
		}
		seen[scheme] = struct{}{}
		d.Schemes = append(d.Schemes, scheme)
	}
}

// UpdateBasePath rewrites the document's base path in place.
//
// Swagger 2.0 documents get basePath set, or removed when basePath is empty;
// host is never touched. OpenAPI 3.x documents get every server URL
// rewritten to point at proxyHost+basePath. When proxyHost already carries a
// scheme it is used verbatim, otherwise each server keeps its own scheme.
func UpdateBasePath(doc Document, basePath, proxyHost string) {
	_, format, ok := detectVersion(doc)
	if !ok {
		return
	}
	if format == FormatSwaggerJSON {
		if basePath != "" {
			doc["basePath"] = basePath
		} else {
			delete(doc, "basePath")
		}
		return
	}

	for _, server := range serverEntries(doc) {
		if strings.Contains(proxyHost, "://") {
			server["url"] = proxyHost + basePath
			continue
		}
		server["url"] = serverScheme(scalarString(server["url"])) + "://" + proxyHost + basePath
	}
}

// UpdateBackend points the document's declared backend at backendURL in place.
func UpdateBackend(doc Document, backendURL string) error {
	_, format, ok := detectVersion(doc)
	if !ok {
		return invalidDocument("#", versionMessage)
	}
	if format != FormatSwaggerJSON {
		doc["servers"] = []any{map[string]any{"url": backendURL}}
		return nil
	}

	u, err := url.Parse(backendURL)
	if err != nil {
		return &SpecError{Code: InputError, Message: fmt.Sprintf("spec: invalid backend URL %q: %v", backendURL, err), Cause: err}
	}
	if u.Host == "" {
		return &SpecError{Code: InputError, Message: fmt.Sprintf("spec: backend URL %q has no host", backendURL)}
	}
	doc["host"] = u.Host
	if u.Path != "" {
		doc["basePath"] = u.Path
	} else {
		delete(doc, "basePath")
	}
	return nil
}

// UpdateBasePath applies UpdateBasePath to the source document and refreshes
// the derived fields.
func (d *ImportDescriptor) UpdateBasePath(basePath, proxyHost string) {
	UpdateBasePath(d.Source, basePath, proxyHost)
	d.derive()
}

// UpdateBackend applies UpdateBackend to the source document and refreshes
// the derived fields.
func (d *ImportDescriptor) UpdateBackend(backendURL string) error {
	if err := UpdateBackend(d.Source, backendURL); err != nil {
		return err
	}
	d.derive()
	return nil
}

// Clone returns a descriptor over a deep copy of the source document, so the
// mutators can run without touching the caller's document.
func (d *ImportDescriptor) Clone() *ImportDescriptor {
	out := *d
	out.Source = CloneDocument(d.Source)
	out.derive()
	return &out
}

// Value serializes the source document as the JSON string submitted in the
// import request.
func (d *ImportDescriptor) Value() (string, error) {
	b, err := json.Marshal(d.Source)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

// CloneDocument deep-copies a decoded document.
func CloneDocument(doc Document) Document {
	if doc == nil {
		return nil
	}
	out, _ := deepcopy.Copy(doc).(map[string]any)
	return out
}

func serverEntries(doc Document) []map[string]any {
	switch list := doc["servers"].(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, s := range list {
			if m, ok := s.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// firstServer returns servers[0] when it is an object. Later entries never
// stand in for a malformed first one.
func firstServer(doc Document) (map[string]any, bool) {
	switch list := doc["servers"].(type) {
	case []map[string]any:
		if len(list) > 0 {
			return list[0], true
		}
	case []any:
		if len(list) > 0 {
			m, ok := list[0].(map[string]any)
			return m, ok
		}
	}
	return nil, false
}

// splitServerURL splits a server URL into scheme, authority and path without
// rejecting {variable} placeholders. Query and fragment are dropped.
func splitServerURL(raw string) (scheme, host, path string) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	rest := raw
	if before, after, found := strings.Cut(raw, "://"); found {
		scheme, rest = strings.ToLower(before), after
	} else if after, found := strings.CutPrefix(raw, "//"); found {
		rest = after
	} else {
		return "", "", raw
	}
	if i := strings.Index(rest, "/"); i >= 0 {
		return scheme, rest[:i], rest[i:]
	}
	return scheme, rest, ""
}

// serverScheme returns the scheme prefix of a server URL. Templated schemes
// such as "{protocol}" are kept as written; relative URLs fall back to https.
func serverScheme(raw string) string {
	if before, _, found := strings.Cut(raw, "://"); found && before != "" {
		return before
	}
	return "https"
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case int, int64, float64, uint64:
		return fmt.Sprint(val)
	default:
		return ""
	}
}
