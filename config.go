package confguard

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"unicode"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

// EnvConfigPath names the environment variable consulted when no path is given.
const EnvConfigPath = "CONFIG_PATH"

// Entry is a key as written in the file and its raw value.
type Entry struct {
	Key   string
	Value string
}

// Section is a named group of entries. Lookups are case-insensitive.
type Section struct {
	name    string
	entries []Entry
	index   map[string]int
}

func newSection(name string) *Section {
	return &Section{name: name, index: make(map[string]int)}
}

// add stores an entry. Keys must be unique within a section, ignoring case.
func (s *Section) add(key, value string) error {
	lower := strings.ToLower(key)
	if i, ok := s.index[lower]; ok {
		return fmt.Errorf("key %q in section %q already defined as %q", key, s.name, s.entries[i].Key)
	}
	s.index[lower] = len(s.entries)
	s.entries = append(s.entries, Entry{Key: key, Value: value})
	return nil
}

// Name returns the section name as written.
func (s *Section) Name() string {
	return s.name
}

// Lookup finds key ignoring case.
func (s *Section) Lookup(key string) (Entry, bool) {
	i, ok := s.index[strings.ToLower(key)]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Entries returns the section's entries in file order.
func (s *Section) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Section) Len() int {
	return len(s.entries)
}

// Config is a parsed configuration file. Section names are case-sensitive.
type Config struct {
	sections map[string]*Section
	order    []string
}

// NewConfig returns a configuration with no sections.
func NewConfig() *Config {
	return &Config{sections: make(map[string]*Section)}
}

// Section returns the named section.
func (c *Config) Section(name string) (*Section, bool) {
	s, ok := c.sections[name]
	return s, ok
}

// SectionNames returns section names in file order.
func (c *Config) SectionNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Config) section(name string) *Section {
	if s, ok := c.sections[name]; ok {
		return s
	}
	s := newSection(name)
	c.sections[name] = s
	c.order = append(c.order, name)
	return s
}

var loadOptions = ini.LoadOptions{
	IgnoreInlineComment:        true,
	IgnoreContinuation:         true,
	PreserveSurroundedQuote:    true,
	AllowPythonMultilineValues: true,
	// Shadows expose repeated keys so Parse can reject them.
	AllowShadows:               true,
	AllowDuplicateShadowValues: true,
}

// guard prefixes every key and value handed to ini. ini unwraps values that
// start with a backtick or triple quote, strips quotes around key names and
// renames "-" keys; none of that applies to a guarded token.
const guard = "\uE000"

var utf8BOM = []byte("\xEF\xBB\xBF")

// indented matches lines ini folds into the previous value.
var indented = regexp.MustCompile(`^[\t\f ]+`)

// guardEntries inserts guard before the key and the value of every key line,
// leaving comments, section headers and continuation lines untouched.
func guardEntries(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))

	inValue := false
	for _, line := range strings.SplitAfter(string(bytes.TrimPrefix(data, utf8BOM)), "\n") {
		if inValue && indented.MatchString(line) {
			out.WriteString(line)
			continue
		}
		inValue = false

		body := strings.TrimLeftFunc(line, unicode.IsSpace)
		if body == "" || strings.ContainsRune("#;[", rune(body[0])) {
			out.WriteString(line)
			continue
		}

		i := strings.IndexAny(body, "=:")
		if i <= 0 {
			out.WriteString(line)
			continue
		}

		out.WriteString(line[:len(line)-len(body)])
		out.WriteString(guard)
		out.WriteString(body[:i+1])
		out.WriteString(guard)
		out.WriteString(body[i+1:])
		inValue = true
	}

	return out.Bytes()
}

// rawValue removes the guard and folds continuation lines: each line is
// trimmed, comment lines are dropped and trailing blank lines removed.
func rawValue(v string) string {
	lines := strings.Split(strings.TrimPrefix(v, guard), "\n")

	kept := make([]string, 0, len(lines))
	kept = append(kept, strings.TrimSpace(lines[0]))
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		kept = append(kept, line)
	}

	return strings.TrimRightFunc(strings.Join(kept, "\n"), unicode.IsSpace)
}

// Parse reads INI text. Values are kept as written apart from surrounding
// whitespace; indented lines continue the previous value. A key repeated
// within a section, in any case, is an error. Keys before the first section
// header and the explicit DEFAULT section are ignored.
func Parse(data []byte) (*Config, error) {
	f, err := ini.LoadSources(loadOptions, guardEntries(data))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := NewConfig()
	for _, s := range f.Sections() {
		if s.Name() == ini.DefaultSection {
			continue
		}
		section := cfg.section(s.Name())
		for _, k := range s.Keys() {
			name := strings.TrimPrefix(k.Name(), guard)
			if len(k.ValueWithShadows()) > 1 {
				return nil, fmt.Errorf("parse config: key %q in section %q repeated", name, s.Name())
			}
			if err := section.add(name, rawValue(k.Value())); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	return cfg, nil
}

// Load reads and parses path from fs. A missing, unreadable or unparsable
// file yields an empty configuration so validation reports every section
// as missing.
func Load(fs afero.Fs, path string) *Config {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		slog.Warn("error reading config file", "file", path, "err", err)
		return NewConfig()
	}

	cfg, err := Parse(data)
	if err != nil {
		slog.Warn("error parsing config file", "file", path, "err", err)
		return NewConfig()
	}

	return cfg
}

// ResolvePath returns path, or the value of CONFIG_PATH when path is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, nil
	}
	return "", ErrConfigPathNotSet
}
