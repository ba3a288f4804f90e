package policy

import "regexp"

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern  = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
)

// RedactPII masks common high-risk PII patterns in free text.
func RedactPII(input string) (redacted string, changed bool) {
	out := input

	next := emailPattern.ReplaceAllString(out, "[REDACTED_EMAIL]")
	changed = changed || next != out
	out = next

	// Run card redaction before phone to avoid card numbers being classified as phone.
	next = cardPattern.ReplaceAllString(out, "[REDACTED_CARD]")
	changed = changed || next != out
	out = next

	next = phonePattern.ReplaceAllString(out, "[REDACTED_PHONE]")
	changed = changed || next != out
	out = next

	return out, changed
}

// RedactFields returns a copy of a trace content payload with every string
// value passed through RedactPII. Non-string values (budgets, durations) pass
// through untouched. The input map is never mutated: traced payloads are
// immutable once built.
func RedactFields(fields map[string]any) (map[string]any, bool) {
	if fields == nil {
		return nil, false
	}
	out := make(map[string]any, len(fields))
	anyChanged := false
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			red, changed := RedactPII(val)
			out[k] = red
			anyChanged = anyChanged || changed
		case map[string]any:
			red, changed := RedactFields(val)
			out[k] = red
			anyChanged = anyChanged || changed
		default:
			out[k] = v
		}
	}
	return out, anyChanged
}
