package llm

import "strings"

// ExtractJSONArray pulls a top-level JSON array string out of raw model
// output. Models emit arrays three ways, tried in order:
//
//   - a bare array: `[ ... ]`
//   - a fenced code block: ```json\n[ ... ]\n```
//   - prose with an embedded array: "here you go ... [ ... ] ... thanks"
//
// The embedded case uses a string-aware bracket-depth scan so that
// brackets inside JSON string values do not confuse the match. Returns
// ErrNoJSONArray when nothing array-shaped is found; the caller decides
// whether that warrants a regeneration attempt.
func ExtractJSONArray(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return s, nil
	}

	if strings.Contains(s, "```") {
		if block, ok := arrayFromFences(s); ok {
			return block, nil
		}
	}

	if candidate, ok := scanBalancedArray(s); ok {
		return candidate, nil
	}

	return "", ErrNoJSONArray
}

// arrayFromFences searches fenced code blocks for an array. Language tags
// on the opening fence (json, json5, jsonc) are stripped.
func arrayFromFences(s string) (string, bool) {
	parts := strings.Split(s, "```")
	// Odd-indexed parts are fence interiors.
	for i := 1; i < len(parts); i += 2 {
		block := parts[i]
		if lines := strings.SplitN(block, "\n", 2); len(lines) == 2 {
			switch strings.ToLower(strings.TrimSpace(lines[0])) {
			case "json", "json5", "jsonc":
				block = lines[1]
			}
		}
		block = strings.TrimSpace(block)
		if strings.HasPrefix(block, "[") && strings.HasSuffix(block, "]") {
			return block, true
		}
	}
	return "", false
}

// scanBalancedArray finds the first balanced top-level array in s,
// tracking string literals and escapes so embedded brackets are skipped.
func scanBalancedArray(s string) (string, bool) {
	start := strings.Index(s, "[")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escape := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return strings.TrimSpace(s[start : i+1]), true
			}
		}
	}
	return "", false
}
