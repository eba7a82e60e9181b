// Package frontmatter extracts the metadata block at the head of a
// content file. The block is delimited by lines consisting solely of
// three hyphens and holds a flat key/value mapping; everything after
// the closing delimiter is the body.
package frontmatter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter is the marker line opening and closing a front matter block.
const Delimiter = "---"

// ErrMalformed reports an opening delimiter with no matching closing
// delimiter before end of file.
var ErrMalformed = errors.New("frontmatter: missing closing delimiter")

// Recognized keys. Any other key is carried through untouched.
const (
	KeyLayout      = "layout"
	KeyTitle       = "title"
	KeyDescription = "description"
	KeyKeywords    = "keywords"
	KeyTags        = "tags"
)

// FrontMatter is a flat mapping from keys to values. Values are plain
// strings, except that a value containing commas is split into a
// []string list.
type FrontMatter map[string]any

// Parse splits raw file text into front matter and body.
//
// If the text does not begin with the delimiter line the whole text is
// the body and the returned mapping is empty. An opening delimiter with
// no closing delimiter fails with ErrMalformed.
func Parse(text string) (FrontMatter, string, error) {
	fm := FrontMatter{}

	first, rest, _ := strings.Cut(text, "\n")
	if strings.TrimRight(first, "\r") != Delimiter {
		return fm, text, nil
	}

	block, body, err := splitBlock(rest)
	if err != nil {
		return nil, "", err
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	for key, value := range raw {
		fm[key] = normalize(value)
	}
	return fm, body, nil
}

// splitBlock scans line by line for the closing delimiter and returns
// the block before it and the body after it.
func splitBlock(text string) (block, body string, err error) {
	var blockLines []string
	for len(text) > 0 {
		line, rest, found := strings.Cut(text, "\n")
		if strings.TrimRight(line, "\r") == Delimiter {
			return strings.Join(blockLines, "\n"), rest, nil
		}
		blockLines = append(blockLines, line)
		if !found {
			break
		}
		text = rest
	}
	return "", "", ErrMalformed
}

// normalize coerces a decoded yaml value into the string-or-list shape
// of the mapping. Scalar comma lists become []string.
func normalize(value any) any {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return splitList(v)
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			list = append(list, fmt.Sprintf("%v", item))
		}
		return list
	default:
		return fmt.Sprintf("%v", v)
	}
}

func splitList(s string) any {
	if !strings.Contains(s, ",") {
		return s
	}
	parts := strings.Split(s, ",")
	list := make([]string, 0, len(parts))
	for _, p := range parts {
		list = append(list, strings.TrimSpace(p))
	}
	return list
}

// Serialize re-emits the mapping as "key: value" lines, keys sorted,
// list values joined with ", ". Parsing the output yields an equal
// mapping.
func (fm FrontMatter) Serialize() string {
	keys := make([]string, 0, len(fm))
	for key := range fm {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, fm.Get(key))
	}
	return b.String()
}

// Get returns the value for key as a single string; list values are
// joined with ", ". Missing keys return "".
func (fm FrontMatter) Get(key string) string {
	switch v := fm[key].(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	default:
		return ""
	}
}

// List returns the value for key as a list. A plain string value is a
// one-element list; missing keys return nil.
func (fm FrontMatter) List(key string) []string {
	switch v := fm[key].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	default:
		return nil
	}
}

// Layout names the layout template the post renders into.
func (fm FrontMatter) Layout() string { return fm.Get(KeyLayout) }

// Title is the post title, empty when the front matter carries none.
func (fm FrontMatter) Title() string { return fm.Get(KeyTitle) }

// Description is the meta description used in layout slots.
func (fm FrontMatter) Description() string { return fm.Get(KeyDescription) }

// Keywords returns the comma-separated keywords as a list.
func (fm FrontMatter) Keywords() []string { return fm.List(KeyKeywords) }

// Tags returns the free-text tags, tokenized the same way as keywords.
func (fm FrontMatter) Tags() []string { return fm.List(KeyTags) }
