package routing

import "strings"

// GetTokenValuesFromURL extracts placeholder values by walking the pattern
// and the URL in lockstep. For each {token} it consumes the span of the URL
// up to the next occurrence of the full literal run that follows the
// placeholder in the pattern, or the rest of the URL when the placeholder
// is terminal.
//
// This is deliberately a manual scanner rather than regex capture groups:
// the literal runs between placeholders must be matched against the URL to
// bound each extraction, not merely captured. Searching for the whole run
// rather than its first byte keeps extraction aligned with the compiled
// regex when a token value itself contains that byte.
func GetTokenValuesFromURL(pattern, url string) map[string]string {
	tokens := make(map[string]string)

	pi, ui := 0, 0
	for pi < len(pattern) {
		if pattern[pi] != '{' {
			// Literal byte: the URL already matched the compiled regex, so
			// pattern and URL stay aligned; advance both.
			pi++
			if ui < len(url) {
				ui++
			}
			continue
		}

		end := strings.IndexByte(pattern[pi:], '}')
		if end < 0 {
			break
		}
		name := pattern[pi+1 : pi+end]
		pi += end + 1

		if pi >= len(pattern) {
			// Terminal placeholder consumes the remainder of the URL.
			tokens[name] = url[ui:]
			ui = len(url)
			continue
		}

		literal := pattern[pi:]
		if next := strings.IndexByte(literal, '{'); next >= 0 {
			literal = literal[:next]
		}
		idx := strings.Index(url[ui:], literal)
		if idx < 0 {
			tokens[name] = url[ui:]
			ui = len(url)
			continue
		}
		tokens[name] = url[ui : ui+idx]
		ui += idx
	}

	return tokens
}
