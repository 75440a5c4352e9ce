// Package urlutil composes query strings onto caller-supplied URLs without
// parsing them. Upstream data sources hand out base URLs that may already
// carry a partial query or a trailing separator, so the composer only
// inspects the string far enough to pick the join character.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Param is a single query parameter. A nil Value marks the parameter as
// absent and it is skipped during encoding; a slice value is serialized as
// repeated key=value pairs.
type Param struct {
	Name  string
	Value any
}

// Params is an ordered parameter list. Encoding preserves slice order.
type Params []Param

// AppendQueryParams returns baseURL with the encoded parameters appended.
// The base URL is never parsed or validated: an existing query string is
// left untouched (no de-duplication), and the only inspection performed is
// the choice of separator. The call is pure and never fails.
func AppendQueryParams(baseURL string, params Params) string {
	encoded := params.Encode()
	if encoded == "" {
		return baseURL
	}

	separator := "?"
	switch {
	case strings.HasSuffix(baseURL, "?") || strings.HasSuffix(baseURL, "&"):
		separator = ""
	case strings.Contains(baseURL, "?"):
		separator = "&"
	}
	return baseURL + separator + encoded
}

// Encode renders the non-nil parameters as an application/x-www-form-urlencoded
// query string, preserving insertion order.
func (p Params) Encode() string {
	var builder strings.Builder
	for _, param := range p {
		if param.Value == nil {
			continue
		}
		for _, value := range expandValues(param.Value) {
			if builder.Len() > 0 {
				builder.WriteByte('&')
			}
			builder.WriteString(url.QueryEscape(param.Name))
			builder.WriteByte('=')
			builder.WriteString(url.QueryEscape(value))
		}
	}
	return builder.String()
}

func expandValues(value any) []string {
	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		values := make([]string, 0, len(typed))
		for _, item := range typed {
			values = append(values, coerce(item))
		}
		return values
	default:
		return []string{coerce(value)}
	}
}

func coerce(value any) string {
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprint(value)
}
