package confguard

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Rule checks a raw value. Rules that consult the filesystem receive it
// through fs; pure rules ignore it.
type Rule struct {
	desc    string
	check   func(value string) Outcome
	fsCheck func(fs afero.Fs, value string) Outcome
}

// Check runs the rule against value.
func (r Rule) Check(fs afero.Fs, value string) Outcome {
	if r.fsCheck != nil {
		return r.fsCheck(fs, value)
	}
	return r.check(value)
}

// UsesFilesystem reports whether the rule's outcome depends on fs.
func (r Rule) UsesFilesystem() bool {
	return r.fsCheck != nil
}

// String describes the rule for humans.
func (r Rule) String() string {
	return r.desc
}

// digitGroups matches a signed decimal number whose underscores sit between
// digits, as in 1_000.
var digitGroups = regexp.MustCompile(`^[+-]?[0-9]+(?:_[0-9]+)*$`)

// parseInt reports Malformed for text that is not a decimal integer. Integers
// too large for int are still integers, just out of any range we accept.
func parseInt(value string) (int, Outcome) {
	s := strings.TrimSpace(value)
	if !digitGroups.MatchString(s) {
		return 0, Malformed
	}
	n, err := strconv.Atoi(strings.ReplaceAll(s, "_", ""))
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, Invalid
		}
		return 0, Malformed
	}
	return n, Valid
}

// parseFloat accepts decimal and exponent forms plus inf and nan. Hex floats
// are rejected. Underscores must sit between digits.
func parseFloat(value string) (float64, bool) {
	s := strings.TrimSpace(value)
	if strings.ContainsAny(s, "xX") {
		return 0, false
	}
	if strings.Contains(s, "_") {
		for i := 0; i < len(s); i++ {
			if s[i] != '_' {
				continue
			}
			if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
				return 0, false
			}
		}
		s = strings.ReplaceAll(s, "_", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// IntRange accepts integers in [minVal, maxVal].
func IntRange(minVal, maxVal int) Rule {
	return Rule{
		desc: fmt.Sprintf("integer in [%d, %d]", minVal, maxVal),
		check: func(value string) Outcome {
			n, out := parseInt(value)
			if out != Valid {
				return out
			}
			if n < minVal || n > maxVal {
				return Invalid
			}
			return Valid
		},
	}
}

// OneOf accepts any of values, ignoring case.
func OneOf(values ...string) Rule {
	allowed := make(map[string]struct{}, len(values))
	for _, v := range values {
		allowed[strings.ToLower(v)] = struct{}{}
	}
	return Rule{
		desc: "one of " + strings.Join(values, ", ") + " (case-insensitive)",
		check: func(value string) Outcome {
			if _, ok := allowed[strings.ToLower(value)]; ok {
				return Valid
			}
			return Invalid
		},
	}
}

// Bool accepts true, false, yes and no in any case.
func Bool() Rule {
	r := OneOf("true", "false", "yes", "no")
	r.desc = "boolean (true, false, yes, no)"
	return r
}

// UUID accepts any RFC 4122 UUID form understood by uuid.Parse.
func UUID() Rule {
	return Rule{
		desc: "UUID",
		check: func(value string) Outcome {
			if _, err := uuid.Parse(value); err != nil {
				return Invalid
			}
			return Valid
		},
	}
}

// Pattern accepts values matching re.
func Pattern(re *regexp.Regexp, desc string) Rule {
	return Rule{
		desc: desc,
		check: func(value string) Outcome {
			if re.MatchString(value) {
				return Valid
			}
			return Invalid
		},
	}
}

var localeRegex = regexp.MustCompile(`^[a-z]{2,3}_[A-Z]{2}(?:\.[A-Za-z0-9-]+)?$`)

// Locale accepts values such as en_US or en_US.UTF-8.
func Locale() Rule {
	return Pattern(localeRegex, "locale such as en_US or en_US.UTF-8")
}

// Minutes accepts an integer followed by "m", in [minVal, maxVal].
func Minutes(minVal, maxVal int) Rule {
	return Rule{
		desc: fmt.Sprintf("minutes with m suffix in [%d, %d]", minVal, maxVal),
		check: func(value string) Outcome {
			prefix, ok := strings.CutSuffix(value, "m")
			if !ok {
				return Invalid
			}
			n, out := parseInt(prefix)
			if out != Valid {
				return out
			}
			if n < minVal || n > maxVal {
				return Invalid
			}
			return Valid
		},
	}
}

// PercentOrKeyword accepts one of keywords (any case) or a number in (0, 100].
// Text that is neither is Invalid, never Malformed.
func PercentOrKeyword(keywords ...string) Rule {
	kw := OneOf(keywords...)
	return Rule{
		desc: strings.Join(keywords, ", ") + " or number in (0, 100]",
		check: func(value string) Outcome {
			if kw.check(value) == Valid {
				return Valid
			}
			f, ok := parseFloat(value)
			if !ok {
				return Invalid
			}
			if f > 0 && f <= 100 {
				return Valid
			}
			return Invalid
		},
	}
}

// ExistingAbsPath accepts an absolute path that exists on fs.
func ExistingAbsPath() Rule {
	return Rule{
		desc: "absolute path that exists",
		fsCheck: func(fs afero.Fs, value string) Outcome {
			if !filepath.IsAbs(value) {
				return Invalid
			}
			if _, err := fs.Stat(value); err != nil {
				return Invalid
			}
			return Valid
		},
	}
}
