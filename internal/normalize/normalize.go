// Package normalize reshapes decoded request bodies before validation,
// driven by per-field rules.
package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rule maps a field value to its normalised form. Rules only see fields
// present in the payload.
type Rule func(v any) any

// Rules is the per-field configuration: {field: Rule}.
type Rules map[string]Rule

// Schema adds field aliases to Rules. An alias is renamed to its target
// unless the target is also present.
type Schema struct {
	Aliases map[string]string
	Fields  Rules
}

// Apply normalises m in place and returns it.
func (s Schema) Apply(m map[string]any) map[string]any {
	for alias, target := range s.Aliases {
		v, ok := m[alias]
		if !ok {
			continue
		}
		delete(m, alias)
		if _, exists := m[target]; !exists {
			m[target] = v
		}
	}
	return s.Fields.Apply(m)
}

func (r Rules) Apply(m map[string]any) map[string]any {
	for field, rule := range r {
		if v, ok := m[field]; ok {
			m[field] = rule(v)
		}
	}
	return m
}

// Chain applies rules left to right.
func Chain(rules ...Rule) Rule {
	return func(v any) any {
		for _, r := range rules {
			v = r(v)
		}
		return v
	}
}

func onString(fn func(string) any) Rule {
	return func(v any) any {
		s, ok := v.(string)
		if !ok {
			return v
		}
		return fn(s)
	}
}

// Trim removes surrounding whitespace.
var Trim Rule = onString(func(s string) any { return strings.TrimSpace(s) })

// EmptyToNull turns blank strings into null.
var EmptyToNull Rule = onString(func(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
})

// StripNonDigits keeps only the digits of a string.
var StripNonDigits Rule = onString(func(s string) any {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
})

// Upper upper-cases text using Portuguese casing rules.
var Upper Rule = onString(func(s string) any {
	// Casers are stateful and must not be shared across goroutines.
	return cases.Upper(language.BrazilianPortuguese).String(s)
})

// DateISO rewrites DD-MM-YYYY and DD/MM/YYYY to YYYY-MM-DD. Other values
// pass through for validation to judge.
var DateISO Rule = onString(func(s string) any {
	s = strings.TrimSpace(s)
	if len(s) != 10 || (s[2] != '-' && s[2] != '/') || s[5] != s[2] {
		return s
	}
	for _, i := range []int{0, 1, 3, 4, 6, 7, 8, 9} {
		if s[i] < '0' || s[i] > '9' {
			return s
		}
	}
	return s[6:10] + "-" + s[3:5] + "-" + s[0:2]
})

// IDList turns "1, 2,3" into [1 2 3]. Blank items are dropped and items
// that are not integers stay strings so validation reports the type.
// Arrays pass through.
var IDList Rule = onString(func(s string) any {
	list := []any{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.ParseInt(part, 10, 64); err == nil {
			list = append(list, n)
			continue
		}
		list = append(list, part)
	}
	return list
})

// Optional is the common chain for nullable text fields.
var Optional = Chain(Trim, EmptyToNull)

// OptionalUpper is Optional followed by Upper.
var OptionalUpper = Chain(Trim, EmptyToNull, Upper)

// OptionalDigits is Optional on the digits only.
var OptionalDigits = Chain(StripNonDigits, EmptyToNull)
