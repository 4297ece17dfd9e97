package confguard

import (
	"strings"

	"github.com/spf13/afero"
)

// Validator compares a loaded Config against a Schema.
//
// A Validator holds no results; every call to Validate or Check starts from
// an empty problem list.
type Validator struct {
	config *Config
	schema Schema
	fs     afero.Fs
}

// Option configures a Validator.
type Option func(*Validator)

// WithFs sets the filesystem used to load the file and by filesystem rules.
// Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(v *Validator) {
		v.fs = fs
	}
}

// WithSchema replaces DefaultSchema.
func WithSchema(schema Schema) Option {
	return func(v *Validator) {
		v.schema = schema
	}
}

// New resolves path (falling back to CONFIG_PATH) and loads it.
// It returns ErrConfigPathNotSet before reading anything when no path is
// available. Unreadable or unparsable files load as empty configurations.
func New(path string, opts ...Option) (*Validator, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	v := newValidator(opts)
	v.config = Load(v.fs, resolved)
	return v, nil
}

// NewFromConfig returns a Validator for an already loaded configuration.
func NewFromConfig(cfg *Config, opts ...Option) *Validator {
	v := newValidator(opts)
	if cfg == nil {
		cfg = NewConfig()
	}
	v.config = cfg
	return v
}

func newValidator(opts []Option) *Validator {
	v := &Validator{
		schema: DefaultSchema,
		fs:     afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Config returns the loaded configuration.
func (v *Validator) Config() *Config {
	return v.config
}

// Validate returns one message per problem. An empty slice means the
// configuration is valid.
func (v *Validator) Validate() []string {
	return Messages(v.Check())
}

// Check returns the problems found, in detection order: sections in schema
// order; within a section the missing-section check, then each field in
// schema order, then unexpected keys in file order.
func (v *Validator) Check() []Problem {
	problems := []Problem{}
	for _, sec := range v.schema {
		problems = v.checkSection(problems, sec)
	}
	return problems
}

func (v *Validator) checkSection(problems []Problem, schema SectionSchema) []Problem {
	section, ok := v.config.Section(schema.Name)
	if !ok {
		return append(problems, Problem{Kind: KindMissingSection, Section: schema.Name})
	}

	known := make(map[string]struct{}, len(schema.Fields))
	for _, field := range schema.Fields {
		known[strings.ToLower(field.Key)] = struct{}{}

		entry, ok := section.Lookup(field.Key)
		if !ok {
			problems = append(problems, Problem{Kind: KindMissingKey, Section: schema.Name, Key: field.Key})
			continue
		}

		switch field.Rule.Check(v.fs, entry.Value) {
		case Invalid:
			problems = append(problems, Problem{
				Kind:    KindInvalidValue,
				Section: schema.Name,
				Key:     field.Key,
				Value:   entry.Value,
			})
		case Malformed:
			problems = append(problems, Problem{
				Kind:    KindInvalidFormat,
				Section: schema.Name,
				Key:     field.Key,
				Value:   entry.Value,
			})
		}
	}

	for _, entry := range section.Entries() {
		if _, ok := known[strings.ToLower(entry.Key)]; !ok {
			problems = append(problems, Problem{Kind: KindUnexpectedKey, Section: schema.Name, Key: entry.Key})
		}
	}

	return problems
}
