package usecase

import (
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
)

// stripCodeFences returns the body of the first markdown code block, or the
// trimmed text when no fences are present. Extraction agents are prompted to
// return bare JSON but often wrap it in ```json fences anyway.
func stripCodeFences(text string) string {
	if !strings.Contains(text, "```") {
		return strings.TrimSpace(text)
	}

	var body []string
	inBlock := false
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inBlock {
				break
			}
			inBlock = true
			continue
		}
		if inBlock {
			body = append(body, line)
		}
	}
	if len(body) > 0 {
		return strings.TrimSpace(strings.Join(body, "\n"))
	}
	return strings.TrimSpace(text)
}

// extractJSON parses agent reply text into v. It first tries the fence-
// stripped text as a whole, then falls back to the first JSON object
// containing one of the required fields. Returns false when nothing parsed.
func extractJSON(text string, requiredFields []string, v interface{}) bool {
	if text == "" {
		return false
	}

	cleaned := stripCodeFences(text)
	if sonic.UnmarshalString(cleaned, v) == nil {
		return true
	}

	if len(requiredFields) == 0 {
		return false
	}
	quoted := make([]string, len(requiredFields))
	for i, f := range requiredFields {
		quoted[i] = regexp.QuoteMeta(`"` + f + `"`)
	}
	pattern, err := regexp.Compile(`\{[^{}]*(` + strings.Join(quoted, "|") + `)[^{}]*\}`)
	if err != nil {
		return false
	}
	match := pattern.FindString(cleaned)
	if match == "" {
		return false
	}
	return sonic.UnmarshalString(match, v) == nil
}
