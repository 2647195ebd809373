package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// configEnv names the environment variable that supplies a default --config.
const configEnv = "APIMPORT_CONFIG"

// Config captures every input that influences a command after merging
// defaults, config file values, and CLI overrides.
type Config struct {
	Input         string
	BasePath      string
	ProxyHost     string
	Backend       string
	Out           string
	APIPath       string
	DisplayName   string
	ServiceURL    string
	Method        string
	IncludeTags   []string
	ExcludeTags   []string
	Methods       []string
	Paths         []string
	Validate      bool
	AllowFileRefs bool
	YAML          bool
	Verbose       bool
	ConfigPath    string
}

// loadDotEnv loads ./.env when present. Variables already set win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return newUsageError(fmt.Sprintf("load .env: %v", err))
	}
	return nil
}

func resolveConfig(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath == "" {
		configPath = strings.TrimSpace(os.Getenv(configEnv))
	}
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFromFile(cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(cmd.Flags(), cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if overlap := intersect(cfg.IncludeTags, cfg.ExcludeTags); len(overlap) > 0 {
		return nil, newUsageError(fmt.Sprintf("%s: include/exclude tags overlap: %s", cmd.Name(), strings.Join(overlap, ", ")))
	}
	return cfg, nil
}

// field binds one config key (normalized) and its flag to a Config member.
type field struct {
	key     string
	flag    string
	str     func(*Config) *string
	list    func(*Config) *[]string
	boolean func(*Config) *bool
}

var fields = []field{
	{key: "input", flag: "input", str: func(c *Config) *string { return &c.Input }},
	{key: "basepath", flag: "base-path", str: func(c *Config) *string { return &c.BasePath }},
	{key: "proxyhost", flag: "proxy-host", str: func(c *Config) *string { return &c.ProxyHost }},
	{key: "backend", flag: "backend", str: func(c *Config) *string { return &c.Backend }},
	{key: "out", flag: "out", str: func(c *Config) *string { return &c.Out }},
	{key: "apipath", flag: "api-path", str: func(c *Config) *string { return &c.APIPath }},
	{key: "displayname", flag: "display-name", str: func(c *Config) *string { return &c.DisplayName }},
	{key: "serviceurl", flag: "service-url", str: func(c *Config) *string { return &c.ServiceURL }},
	{key: "method", flag: "method", str: func(c *Config) *string { return &c.Method }},
	{key: "includetags", flag: "include-tags", list: func(c *Config) *[]string { return &c.IncludeTags }},
	{key: "excludetags", flag: "exclude-tags", list: func(c *Config) *[]string { return &c.ExcludeTags }},
	{key: "methods", flag: "methods", list: func(c *Config) *[]string { return &c.Methods }},
	{key: "paths", flag: "paths", list: func(c *Config) *[]string { return &c.Paths }},
	{key: "validate", flag: "validate", boolean: func(c *Config) *bool { return &c.Validate }},
	{key: "allowfilerefs", flag: "allow-file-refs", boolean: func(c *Config) *bool { return &c.AllowFileRefs }},
	{key: "yaml", flag: "yaml", boolean: func(c *Config) *bool { return &c.YAML }},
	{key: "verbose", flag: "verbose", boolean: func(c *Config) *bool { return &c.Verbose }},
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *Config) error {
	for _, f := range fields {
		if flags.Lookup(f.flag) == nil || !flags.Changed(f.flag) {
			continue
		}
		switch {
		case f.str != nil:
			value, err := flags.GetString(f.flag)
			if err != nil {
				return err
			}
			*f.str(cfg) = strings.TrimSpace(value)
		case f.list != nil:
			value, err := flags.GetStringSlice(f.flag)
			if err != nil {
				return err
			}
			*f.list(cfg) = sanitizeList(value)
		case f.boolean != nil:
			value, err := flags.GetBool(f.flag)
			if err != nil {
				return err
			}
			*f.boolean(cfg) = value
		}
	}
	return nil
}

func (c *Config) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.BasePath = strings.TrimSpace(c.BasePath)
	c.ProxyHost = strings.TrimSpace(c.ProxyHost)
	c.Backend = strings.TrimSpace(c.Backend)
	c.Out = strings.TrimSpace(c.Out)
	c.APIPath = strings.TrimSpace(c.APIPath)
	c.DisplayName = strings.TrimSpace(c.DisplayName)
	c.ServiceURL = strings.TrimSpace(c.ServiceURL)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))
	c.IncludeTags = sanitizeList(c.IncludeTags)
	c.ExcludeTags = sanitizeList(c.ExcludeTags)
	c.Methods = sanitizeList(c.Methods)
	c.Paths = sanitizeList(c.Paths)
}

func (c *Config) requireInput(command string) error {
	if c.Input == "" {
		return newUsageError(fmt.Sprintf("%s: --input is required (set via flag or config file)", command))
	}
	return nil
}

func applyConfigFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	byKey := make(map[string]field, len(fields))
	for _, f := range fields {
		byKey[f.key] = f
	}

	for key, value := range raw {
		f, ok := byKey[normalizeKey(key)]
		if !ok {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		switch {
		case f.str != nil:
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.str(cfg) = str
		case f.list != nil:
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.list(cfg) = sanitizeList(list)
		case f.boolean != nil:
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.boolean(cfg) = val
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n", "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func sanitizeList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
