package markdown

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

// directivePattern matches Jekyll-style include directives of the form
// {% include NAME key="value" ... %}. The attribute section is matched
// loosely so a malformed attribute list still reaches the warning path
// instead of slipping through unrecognized.
var directivePattern = regexp.MustCompile(`\{%\s*include\s+([^\s%]+)((?:%[^}]|[^%])*)%\}`)

var attrPattern = regexp.MustCompile(`([\w-]+)="([^"]*)"`)

// imageInclude is the one directive the renderer expands itself:
// {% include image.html url="..." description="..." %} with optional
// by / by-url / licence / licence-url attribution attributes.
const imageInclude = "image.html"

// expandDirectives replaces recognized include directives with their
// HTML expansion. Unknown or malformed directives fail open: the
// literal text stays in place and a warning is appended to warns.
func expandDirectives(body string, warns *[]string) string {
	return directivePattern.ReplaceAllStringFunc(body, func(match string) string {
		groups := directivePattern.FindStringSubmatch(match)
		name := groups[1]

		if name != imageInclude {
			*warns = append(*warns, fmt.Sprintf("unknown include directive %q, left verbatim", name))
			return match
		}

		attrs, err := parseAttrs(groups[2])
		if err != nil {
			*warns = append(*warns, fmt.Sprintf("image include: %v, left verbatim", err))
			return match
		}

		expanded, err := expandImage(attrs)
		if err != nil {
			*warns = append(*warns, fmt.Sprintf("image include: %v, left verbatim", err))
			return match
		}
		return expanded
	})
}

// parseAttrs decodes a key="value" attribute list. Anything left over
// after the well-formed pairs (unquoted or single-quoted values, stray
// tokens) makes the whole list malformed.
func parseAttrs(list string) (map[string]string, error) {
	attrs := map[string]string{}
	for _, kv := range attrPattern.FindAllStringSubmatch(list, -1) {
		attrs[kv[1]] = kv[2]
	}
	if leftover := strings.TrimSpace(attrPattern.ReplaceAllString(list, "")); leftover != "" {
		return nil, fmt.Errorf("malformed attribute list near %q", leftover)
	}
	return attrs, nil
}

// expandImage renders the captioned figure block for an image include.
func expandImage(attrs map[string]string) (string, error) {
	url := attrs["url"]
	desc := attrs["description"]
	if url == "" {
		return "", fmt.Errorf("missing required attribute %q", "url")
	}
	if desc == "" {
		return "", fmt.Errorf("missing required attribute %q", "description")
	}

	var b strings.Builder
	b.WriteString(`<figure class="image">` + "\n")
	fmt.Fprintf(&b, `  <img src="%s" alt="%s">`+"\n", html.EscapeString(url), html.EscapeString(desc))
	fmt.Fprintf(&b, `  <figcaption>%s%s</figcaption>`+"\n", html.EscapeString(desc), attribution(attrs))
	b.WriteString(`</figure>`)
	return b.String(), nil
}

// attribution builds the optional "by AUTHOR, licence NAME" span. Parts
// with a matching -url attribute become links.
func attribution(attrs map[string]string) string {
	var parts []string
	if by := attrs["by"]; by != "" {
		parts = append(parts, "by "+linkOrText(by, attrs["by-url"]))
	}
	if licence := attrs["licence"]; licence != "" {
		parts = append(parts, "licence "+linkOrText(licence, attrs["licence-url"]))
	}
	if len(parts) == 0 {
		return ""
	}
	return ` <span class="attribution">` + strings.Join(parts, ", ") + `</span>`
}

func linkOrText(text, url string) string {
	if url == "" {
		return html.EscapeString(text)
	}
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), html.EscapeString(text))
}
