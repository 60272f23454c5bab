package chat

import "strings"

// DefaultTitle is the placeholder given to a newly created chat.
const DefaultTitle = "🔒 New Secret Chat"

// titleWordLimit caps how many leading words of the first user message are
// used for a derived title.
const titleWordLimit = 4

// placeholderTitles are the title values that content derivation may still
// overwrite. Any other title is considered user-set and sticky.
var placeholderTitles = map[string]struct{}{
	DefaultTitle:            {},
	"New Request":           {},
	"🎯 New Request":        {},
	"🔒 New Secret Request": {},
}

// IsPlaceholderTitle reports whether title is one of the recognized
// placeholder values.
func IsPlaceholderTitle(title string) bool {
	_, ok := placeholderTitles[title]
	return ok
}

// DeriveTitle builds a chat title from the leading words of text, capped at
// four words with a trailing ellipsis marker when truncated.
func DeriveTitle(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return DefaultTitle
	}

	n := len(words)
	if n > titleWordLimit {
		n = titleWordLimit
	}

	title := "🔒 " + strings.Join(words[:n], " ")
	if len(words) > titleWordLimit {
		title += "..."
	}
	return title
}
