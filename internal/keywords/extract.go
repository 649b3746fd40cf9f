package keywords

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON is a best-effort structured extractor for LLM responses that
// embed a JSON object in free text. It strictly parses the largest
// brace-delimited substring into v. LLM output is not schema-guaranteed, so
// callers treat a failure as log-and-default, keeping the raw text for
// audit, rather than retrying.
func ExtractJSON(raw string, v any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in response")
	}

	candidate := raw[start : end+1]
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return fmt.Errorf("failed to parse embedded JSON: %w", err)
	}
	return nil
}
