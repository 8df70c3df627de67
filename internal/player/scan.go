// internal/player/scan.go
package player

import (
	"fmt"

	"github.com/evostudios/StableScraper/internal/utils"
)

// ExtractBalancedObject returns the JSON object literal starting at
// markup[start], which must be an opening brace. The scan tracks brace
// depth and string state so that braces inside string values, including
// escaped quotes, do not terminate the object early.
func ExtractBalancedObject(markup string, start int) (string, error) {
	if start < 0 || start >= len(markup) {
		return "", utils.NewError(utils.ErrCodeConfigParse,
			fmt.Sprintf("object start %d out of range", start))
	}
	if markup[start] != '{' {
		return "", utils.NewError(utils.ErrCodeConfigParse,
			fmt.Sprintf("expected '{' at offset %d, found %q", start, markup[start]))
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(markup); i++ {
		ch := markup[i]

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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return markup[start : i+1], nil
			}
		}
	}

	return "", utils.NewError(utils.ErrCodeConfigParse, "unterminated object literal").
		WithContext("start", start)
}
