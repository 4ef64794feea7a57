package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"rdsa-hq/dataval/pkg/schema/ast"
	schemaErrors "rdsa-hq/dataval/pkg/schema/errors"
)

// ErrMissingDataTypes is returned when the type universe is consulted on a
// rule configuration that has no [datatypes] section.
var ErrMissingDataTypes = errors.New("the 'datatypes' section is missing from the rule configuration")

// Category names with built-in fallbacks.
const (
	CategoryString   = "string"
	CategoryNumeric  = "numeric"
	CategoryDatetime = "datetime"
	CategoryBoolean  = "boolean"
	CategoryCategory = "category"
)

//go:embed default_rules.toml
var defaultRules []byte

var builtinCategories = map[string][]string{
	CategoryString:   {"str", "object", "StringType"},
	CategoryNumeric:  {"int", "float", "int64", "int32", "int16", "int8", "float64", "float32", "IntegerType", "FloatType", "DoubleType"},
	CategoryDatetime: {"datetime.datetime", "datetime64[ns]", "TimestampType", "DateType"},
	CategoryBoolean:  {"bool", "bool_", "BooleanType"},
}

// Category is a named group of data_type literals.
type Category struct {
	Types []string `toml:"types"`
}

// Config is a loaded rule configuration.
type Config struct {
	// Source is the file the configuration was read from, or "<default>".
	Source string

	// RequiredFields lists the fields every column must declare.
	RequiredFields []string

	// DataTypes maps category name to its data_type literals.
	DataTypes map[string]Category

	categories   []string
	hasDataTypes bool
}

type ruleFile struct {
	RequiredFields struct {
		Fields []string `toml:"fields"`
	} `toml:"required_fields"`
	DataTypes map[string]Category `toml:"datatypes"`
}

// Default returns the rule configuration embedded in the binary.
func Default() *Config {
	cfg, err := LoadBytes(defaultRules, "<default>")
	if err != nil {
		panic(fmt.Sprintf("rules: embedded default configuration is invalid: %v", err))
	}
	return cfg
}

// DefaultBytes returns the raw embedded default configuration.
func DefaultBytes() []byte {
	return slices.Clone(defaultRules)
}

// Empty returns a configuration with no sections. Any lookup of the type
// universe on it fails with ErrMissingDataTypes.
func Empty() *Config {
	return &Config{Source: "<empty>", DataTypes: map[string]Category{}}
}

// Load reads a rule configuration from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &schemaErrors.Error{
			Type:     schemaErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Rule configuration file %q could not be read: %v", path, err),
			Location: ast.Location{File: path},
			Err:      err,
		}
	}
	return LoadBytes(data, path)
}

// LoadBytes parses a rule configuration from TOML bytes.
func LoadBytes(data []byte, source string) (*Config, error) {
	var rf ruleFile
	md, err := toml.Decode(string(data), &rf)
	if err != nil {
		loc := ast.Location{File: source}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			loc.Line = perr.Position.Line
		}
		return nil, &schemaErrors.Error{
			Type:       schemaErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("Error decoding rule configuration: %v", err),
			Location:   loc,
			Context:    schemaErrors.ExtractContextFromSource(data, loc, 2),
			Suggestion: "Check TOML syntax (brackets, quotes, '=' between key and value)",
			Err:        err,
		}
	}

	cfg := &Config{
		Source:         source,
		RequiredFields: rf.RequiredFields.Fields,
		DataTypes:      rf.DataTypes,
		hasDataTypes:   md.IsDefined("datatypes"),
	}
	if cfg.DataTypes == nil {
		cfg.DataTypes = map[string]Category{}
	}

	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "datatypes" && !slices.Contains(cfg.categories, key[1]) {
			cfg.categories = append(cfg.categories, key[1])
		}
	}

	return cfg, nil
}

// LoadOrEmpty loads the rule configuration at path, or the embedded default
// when path is empty. Load failures are logged and an empty configuration is
// returned; the problem resurfaces as ErrMissingDataTypes once the type
// universe is consulted.
func LoadOrEmpty(path string, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return Default()
	}

	cfg, err := Load(path)
	if err != nil {
		logger.Error("failed to load rule configuration",
			"path", path,
			"error", err,
		)
		return Empty()
	}
	return cfg
}

// HasDataTypes reports whether the [datatypes] section was present.
func (c *Config) HasDataTypes() bool {
	return c.hasDataTypes
}

// Categories returns the category names in declaration order.
func (c *Config) Categories() []string {
	return slices.Clone(c.categories)
}

// AllTypeNames returns every recognized data_type literal across categories,
// in declaration order.
func (c *Config) AllTypeNames() ([]string, error) {
	if !c.hasDataTypes {
		return nil, ErrMissingDataTypes
	}

	var names []string
	for _, cat := range c.categories {
		names = append(names, c.DataTypes[cat].Types...)
	}
	return names, nil
}

// TypesOf returns the literals for a category. The string, numeric,
// datetime and boolean categories fall back to built-in lists when the
// configuration does not define them.
func (c *Config) TypesOf(category string) []string {
	if cat, ok := c.DataTypes[category]; ok && len(cat.Types) > 0 {
		return cat.Types
	}
	return builtinCategories[category]
}

// CategoryOf returns the category a data_type literal belongs to, or "".
func (c *Config) CategoryOf(dataType string) string {
	for _, cat := range c.categories {
		if slices.Contains(c.DataTypes[cat].Types, dataType) {
			return cat
		}
	}
	for _, cat := range []string{CategoryString, CategoryNumeric, CategoryDatetime, CategoryBoolean} {
		if slices.Contains(builtinCategories[cat], dataType) {
			return cat
		}
	}
	return ""
}

// IsString reports whether dataType is a string-like type.
func (c *Config) IsString(dataType string) bool {
	return slices.Contains(c.TypesOf(CategoryString), dataType)
}

// IsNumeric reports whether dataType is a numeric type.
func (c *Config) IsNumeric(dataType string) bool {
	return slices.Contains(c.TypesOf(CategoryNumeric), dataType)
}

// IsDatetime reports whether dataType is a datetime type.
func (c *Config) IsDatetime(dataType string) bool {
	return slices.Contains(c.TypesOf(CategoryDatetime), dataType)
}

// IsBoolean reports whether dataType is a boolean type.
func (c *Config) IsBoolean(dataType string) bool {
	return slices.Contains(c.TypesOf(CategoryBoolean), dataType)
}

// Check validates the configuration eagerly. It returns ErrMissingDataTypes
// when [datatypes] is absent, otherwise an ErrorList describing empty
// categories, duplicate literals and required fields outside knownFields.
// Pass no knownFields to skip the required-field check.
func (c *Config) Check(knownFields ...string) error {
	if !c.hasDataTypes {
		return ErrMissingDataTypes
	}

	errList := schemaErrors.NewErrorList()
	loc := ast.Location{File: c.Source}

	if len(c.categories) == 0 {
		errList.AddError(schemaErrors.ErrorTypeRule, "The 'datatypes' section defines no categories", loc)
	}

	seen := make(map[string]string)
	for _, cat := range c.categories {
		types := c.DataTypes[cat].Types
		if len(types) == 0 {
			errList.AddError(schemaErrors.ErrorTypeRule,
				fmt.Sprintf("Category 'datatypes.%s' has no types", cat), loc)
		}
		for _, t := range types {
			if prev, dup := seen[t]; dup {
				errList.AddError(schemaErrors.ErrorTypeRule,
					fmt.Sprintf("Data type '%s' is declared in both '%s' and '%s'", t, prev, cat), loc)
				continue
			}
			seen[t] = cat
		}
	}

	if len(knownFields) > 0 {
		for _, f := range c.RequiredFields {
			if !slices.Contains(knownFields, f) {
				errList.AddErrorWithSuggestion(schemaErrors.ErrorTypeRule,
					fmt.Sprintf("Required field '%s' is not a recognized validation field", f), loc,
					schemaErrors.SuggestFieldName(f, knownFields))
			}
		}
	}

	return errList.ToError()
}
