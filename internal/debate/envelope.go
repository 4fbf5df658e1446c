package debate

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// decodeEnvelope parses a model response as JSON, tolerating markdown
// code fences and prose around the object. Models in JSON mode should
// return a bare object, but fenced output still shows up in practice.
func decodeEnvelope(text string, out any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("debate: empty response")
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return fmt.Errorf("debate: no JSON object in response: %.80q", text)
		}
		text = text[start : end+1]
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("debate: parse response: %w", err)
	}
	return nil
}

func validPosition(pos string) bool {
	switch strings.ToUpper(strings.TrimSpace(pos)) {
	case "A", "B", "C", "D":
		return true
	default:
		return false
	}
}

func normalizePosition(pos string) string {
	return strings.ToUpper(strings.TrimSpace(pos))
}
