package utils

import (
	"regexp"
	"strings"

	"github.com/goccy/go-json"
)

var trailingCommaRegexp = regexp.MustCompile(`,(\s*[}\]])`)

func stripCodeFences(raw string) string {
	text := raw
	if strings.Contains(text, "```json") {
		parts := strings.SplitN(text, "```json", 2)
		text = strings.SplitN(parts[1], "```", 2)[0]
	} else if strings.Contains(text, "```") {
		parts := strings.Split(text, "```")
		if len(parts) >= 2 {
			text = parts[1]
		}
	}
	return strings.TrimSpace(text)
}

// SanitizeOracleJSON cleans up the raw text returned by the extraction
// model so it can be unmarshalled. Model output routinely arrives wrapped
// in markdown code fences, with trailing commas, or embedded in prose.
func SanitizeOracleJSON(raw string) string {
	text := stripCodeFences(raw)
	text = trailingCommaRegexp.ReplaceAllString(text, "$1")

	if strings.HasPrefix(text, "[") {
		return text
	}
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}
	return strings.TrimSpace(text)
}

// DecodeOracleJSON sanitizes and unmarshals model output into out.
// A list-shaped payload is coerced to its first element, since the
// prompts always ask for a single object.
func DecodeOracleJSON(raw string, out interface{}) error {
	text := SanitizeOracleJSON(raw)

	if strings.HasPrefix(text, "[") {
		var elements []json.RawMessage
		if err := json.Unmarshal([]byte(text), &elements); err == nil && len(elements) > 0 {
			return json.Unmarshal(elements[0], out)
		}
	}
	return json.Unmarshal([]byte(text), out)
}

// RecoverPartialObject salvages the value of a single top-level key from
// truncated model output. It returns a minimal JSON object containing
// just that key, or false when nothing parseable could be found.
func RecoverPartialObject(raw, key string) ([]byte, bool) {
	quoted := `"` + key + `"`
	start := strings.Index(raw, quoted)
	if start < 0 {
		return nil, false
	}
	end := strings.Index(raw[start+1:], "}")
	if end < 0 {
		return nil, false
	}
	fragment := "{" + raw[start:start+1+end+1] + "}"
	fragment = trailingCommaRegexp.ReplaceAllString(fragment, "$1")

	var probe map[string]interface{}
	if err := json.Unmarshal([]byte(fragment), &probe); err != nil {
		return nil, false
	}
	return []byte(fragment), true
}
