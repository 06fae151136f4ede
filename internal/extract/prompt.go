package extract

import (
	"fmt"
	"unicode/utf8"
)

// Small models drift when given long inputs, so the request text is truncated
// before prompting.
const maxPromptBody = 500

const promptTemplate = `Extract meeting info from email. Return JSON only.

Required format:
{"participants": ["email1", "email2"], "duration_minutes": 30, "time_constraints": "constraint", "topic": "topic"}

Rules:
- If names only, add %s
- Default duration: %d minutes
- Extract time constraints like "next week", "Thursday"

Email: %s

JSON:`

// BuildPrompt renders the extraction prompt for the request text. The same
// text always renders the same prompt, which is what makes the response cache
// effective across the strategy chain.
func BuildPrompt(domain string, defaultDuration int, text string) string {
	if len(text) > maxPromptBody {
		// Back up to a rune boundary so the cut never produces invalid UTF-8.
		cut := maxPromptBody
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return fmt.Sprintf(promptTemplate, domain, defaultDuration, text)
}
