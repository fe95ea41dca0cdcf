// Package versioning provides the ordered version values which version-from-git reads from tag
// names.
package versioning

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// SuffixRelease is the suffix which ranks above every other suffix, including no suffix at all.
	SuffixRelease = "RELEASE"
	// SuffixSnapshot is the suffix which marks a tag as a snapshot; derivation stops at such a tag.
	SuffixSnapshot = "SNAPSHOT"

	prefix          = 'v'
	suffixDelimiter = '-'
	separator       = '.'
)

// A Version is a version parsed from text of the form `[v]N(.N)*[-suffix]`. Versions are
// immutable values.
type Version struct {
	components []int
	suffix     string
	hasSuffix  bool
	hasPrefix  bool
	text       string
}

// Parse parses a version from its text. Blank text is parsed as the empty version, whose string
// form is "". Leading and trailing whitespace is ignored.
func Parse(text string) (Version, error) {
	if strings.TrimSpace(text) == "" {
		return Version{}, nil
	}
	if trimmed := strings.TrimSpace(text); trimmed != text {
		return Parse(trimmed)
	}

	v := Version{
		hasPrefix: text[0] == prefix,
	}
	i := 0
	if v.hasPrefix {
		i = 1
	}
	start := i
	for ; i < len(text); i++ {
		c := text[i]
		if c >= '0' && c <= '9' {
			continue
		}
		if i == start {
			return Version{}, newParseError(text, i)
		}
		n, err := strconv.Atoi(text[start:i])
		if err != nil {
			return Version{}, newParseError(text, start)
		}
		v.components = append(v.components, n)
		start = i + 1
		if c == suffixDelimiter {
			break
		}
		if c != separator {
			return Version{}, newParseError(text, i)
		}
	}
	if start < i {
		n, err := strconv.Atoi(text[start:i])
		if err != nil {
			return Version{}, newParseError(text, start)
		}
		v.components = append(v.components, n)
	}
	if i+1 < len(text) {
		v.suffix = text[i+1:]
		v.hasSuffix = true
	}
	v.text = v.render()
	return v, nil
}

// MustParse is like Parse, but panics if the text can't be parsed.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) render() string {
	b := strings.Builder{}
	if v.hasPrefix {
		b.WriteByte(prefix)
	}
	for i, c := range v.components {
		if i > 0 {
			b.WriteByte(separator)
		}
		b.WriteString(strconv.Itoa(c))
	}
	if v.hasSuffix {
		b.WriteByte(suffixDelimiter)
		b.WriteString(v.suffix)
	}
	return b.String()
}

// Components returns a copy of the numeric components of the version.
func (v Version) Components() []int {
	return append([]int(nil), v.components...)
}

// Suffix returns the text after the suffix delimiter, and whether the version has a suffix.
func (v Version) Suffix() (suffix string, ok bool) {
	return v.suffix, v.hasSuffix
}

// HasPrefix reports whether the version was written with a leading `v`.
func (v Version) HasPrefix() bool {
	return v.hasPrefix
}

// IsSnapshot reports whether the version's suffix is exactly [SuffixSnapshot].
func (v Version) IsSnapshot() bool {
	return v.hasSuffix && v.suffix == SuffixSnapshot
}

// IsEmpty reports whether the version was parsed from blank text.
func (v Version) IsEmpty() bool {
	return v.text == ""
}

func (v Version) String() string {
	return v.text
}

// Equal reports whether both versions have the same string form. So "1.2.3" is not equal to
// "v1.2.3", although neither of them is greater than the other.
func (v Version) Equal(w Version) bool {
	return v.text == w.text
}

// Compare returns -1, 0, or +1 depending on whether v is lower than, equivalent to, or greater
// than w. Numeric components are compared pairwise and a shorter list of components is lower
// (so "1.2" < "1.2.0"). Among versions with the same components, a "RELEASE" suffix is the
// greatest, followed by no suffix, followed by all other suffixes in lexical order.
func (v Version) Compare(w Version) int {
	if v.Equal(w) {
		return 0
	}
	for i := 0; i < min(len(v.components), len(w.components)); i++ {
		if c := compareInts(v.components[i], w.components[i]); c != 0 {
			return c
		}
	}
	if c := compareInts(len(v.components), len(w.components)); c != 0 {
		return c
	}
	return compareSuffixes(v, w)
}

func compareSuffixes(v, w Version) int {
	switch {
	case v.hasSuffix == w.hasSuffix && v.suffix == w.suffix:
		return 0
	case v.hasSuffix && v.suffix == SuffixRelease:
		return 1
	case w.hasSuffix && w.suffix == SuffixRelease:
		return -1
	case !v.hasSuffix:
		return 1
	case !w.hasSuffix:
		return -1
	}
	return strings.Compare(v.suffix, w.suffix)
}

func compareInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// ParseError

// A ParseError reports an unexpected character in the text of a version.
type ParseError struct {
	Text string
	Char rune
	Pos  int
}

func newParseError(text string, pos int) *ParseError {
	c, _ := utf8.DecodeRuneInString(text[pos:])
	return &ParseError{Text: text, Char: c, Pos: pos}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected character '%c' at position %d of version %q", e.Char, e.Pos, e.Text)
}
