package enrich

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// ExtractJSONObject finds the first well-formed JSON object embedded in free
// text and unmarshals it. The generation service wraps its JSON in prose
// often enough that whole-body parsing is useless; brace matching (aware of
// strings and escapes) is the reliable path.
func ExtractJSONObject(text string) (map[string]any, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(text[start:i+1]), &obj); err != nil {
					return nil, eris.Wrap(err, "enrich: parse embedded json")
				}
				return obj, nil
			}
		}
	}

	return nil, eris.New("enrich: no json object found in response")
}
