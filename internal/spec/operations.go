package spec

import (
	"regexp"
	"sort"
	"strings"
)

var httpMethods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// ListOption configures which operations Operations returns.
type ListOption func(*listConfig)

type listConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[string]struct{}
	pathRes     []*regexp.Regexp
}

// WithIncludeTags keeps only operations that have at least one of the given tags.
func WithIncludeTags(tags []string) ListOption {
	return func(c *listConfig) {
		c.includeTags = addToSet(c.includeTags, tags, false)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) ListOption {
	return func(c *listConfig) {
		c.excludeTags = addToSet(c.excludeTags, tags, false)
	}
}

// WithMethods keeps only operations using one of the provided HTTP methods.
// Matching is case-insensitive.
func WithMethods(methods []string) ListOption {
	return func(c *listConfig) {
		c.methods = addToSet(c.methods, methods, true)
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of the
// provided regular expressions.
func WithPathPatterns(patterns []string) ListOption {
	return func(c *listConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				// An invalid pattern matches nothing.
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

func addToSet(set map[string]struct{}, values []string, lower bool) map[string]struct{} {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(values))
		}
		set[v] = struct{}{}
	}
	return set
}

// Operations lists the operations declared under paths, sorted by path and
// then by method order.
func Operations(doc Document, opts ...ListOption) []Operation {
	cfg := &listConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	paths, _ := doc["paths"].(map[string]any)
	keys := make([]string, 0, len(paths))
	for p := range paths {
		keys = append(keys, p)
	}
	sort.Strings(keys)

	var out []Operation
	for _, path := range keys {
		if !cfg.allowPath(path) {
			continue
		}
		item, ok := paths[path].(map[string]any)
		if !ok {
			continue
		}
		for _, method := range httpMethods {
			raw, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			if len(cfg.methods) > 0 {
				if _, keep := cfg.methods[method]; !keep {
					continue
				}
			}
			op := Operation{
				Method:      strings.ToUpper(method),
				Path:        path,
				OperationID: scalarString(raw["operationId"]),
				Summary:     strings.TrimSpace(scalarString(raw["summary"])),
				Tags:        stringList(raw["tags"]),
			}
			if !cfg.allowTags(op.Tags) {
				continue
			}
			out = append(out, op)
		}
	}
	return out
}

func (c *listConfig) allowPath(path string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (c *listConfig) allowTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func stringList(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
