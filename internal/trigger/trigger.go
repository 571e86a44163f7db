// ABOUTME: Detects whether a shared-room message is directed at the AI
// ABOUTME: Pure functions, no state: substring detection plus prompt cleanup

package trigger

import (
	"regexp"
	"strings"
)

// triggers is the fixed set of markers that address the AI in a shared
// room. Detection is case-insensitive substring containment; longer
// markers come first so Normalize strips "hey ai" rather than a bare "ai".
var triggers = []string{"hey ai", "ai help", "@ai", "@bot", "ai:", "bot:"}

// patterns holds one word-boundary matcher per trigger, in triggers order.
// \b does not work next to '@' or ':' so boundaries are spelled out as
// whitespace-or-edge on both sides.
var patterns = func() []*regexp.Regexp {
	ps := make([]*regexp.Regexp, len(triggers))
	for i, t := range triggers {
		ps[i] = regexp.MustCompile(`(?i)(^|\s)` + regexp.QuoteMeta(t) + `(\s|$)`)
	}
	return ps
}()

var whitespace = regexp.MustCompile(`\s+`)

// ShouldRespond reports whether the message contains any AI trigger,
// case-insensitively.
func ShouldRespond(text string) bool {
	lowered := strings.ToLower(text)
	for _, t := range triggers {
		if strings.Contains(lowered, t) {
			return true
		}
	}
	return false
}

// Normalize strips the first trigger token from the message and trims the
// result. Only whole tokens are removed: trigger-like substrings inside
// other words are left alone. Always returns a string, possibly empty.
func Normalize(text string) string {
	text = strings.TrimSpace(text)
	for _, p := range patterns {
		if loc := p.FindStringIndex(text); loc != nil {
			text = text[:loc[0]] + " " + text[loc[1]:]
			break
		}
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
