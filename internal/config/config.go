package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/plancheck/internal/conformance"
	"github.com/dgallion1/plancheck/internal/lint"
)

type Config struct {
	// Serve mode
	Port           string
	APIKey         string // Empty disables bearer auth.
	MaxUploadBytes int64

	// Document discovery
	TemplatePath string // Global template, used when no local override exists.
	PlanGlob     string // Glob pattern for instance documents.

	// Formatting
	LineLimit int

	// Optional-element overrides; nil keeps the stock sets.
	OptionalSections       []string
	OptionalSubsections    []string
	OptionalSubsubsections []string
	OptionalFields         []string
}

func Load() Config {
	return Config{
		Port:           envOr("PORT", "8091"),
		APIKey:         os.Getenv("PLANCHECK_API_KEY"),
		MaxUploadBytes: envInt64("PLANCHECK_MAX_UPLOAD", 10485760), // 10MB

		TemplatePath: envOr("PLANCHECK_TEMPLATE", "doc/source/test_plans/template.rst"),
		PlanGlob:     envOr("PLANCHECK_GLOB", "doc/source/test_plans/*/plan.rst"),

		LineLimit: envInt("PLANCHECK_LINE_LIMIT", lint.DefaultLineLimit),

		OptionalSections:       envList("PLANCHECK_OPTIONAL_SECTIONS"),
		OptionalSubsections:    envList("PLANCHECK_OPTIONAL_SUBSECTIONS"),
		OptionalSubsubsections: envList("PLANCHECK_OPTIONAL_SUBSUBSECTIONS"),
		OptionalFields:         envList("PLANCHECK_OPTIONAL_FIELDS"),
	}
}

func (c Config) Validate() error {
	if c.TemplatePath == "" {
		return fmt.Errorf("PLANCHECK_TEMPLATE is required")
	}
	if c.PlanGlob == "" {
		return fmt.Errorf("PLANCHECK_GLOB is required")
	}
	if c.LineLimit <= 0 {
		return fmt.Errorf("PLANCHECK_LINE_LIMIT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("PLANCHECK_MAX_UPLOAD must be positive")
	}
	return nil
}

// Optionality resolves the exemption sets, starting from the stock sets
// and replacing each one that has an override. The sets are fixed for
// the whole run.
func (c Config) Optionality() conformance.Optionality {
	opt := conformance.DefaultOptionality()
	if c.OptionalSections != nil {
		opt.Sections = conformance.Set(c.OptionalSections...)
	}
	if c.OptionalSubsections != nil {
		opt.Subsections = conformance.Set(c.OptionalSubsections...)
	}
	if c.OptionalSubsubsections != nil {
		opt.Subsubsections = conformance.Set(c.OptionalSubsubsections...)
	}
	if c.OptionalFields != nil {
		opt.Fields = conformance.Set(c.OptionalFields...)
	}
	return opt
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

// envList splits a comma-separated env value into trimmed entries.
// Unset returns nil; set-but-empty returns an empty, non-nil list so an
// override can clear a stock set.
func envList(key string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
