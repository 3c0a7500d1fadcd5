package memo

import (
	"regexp"
	"strings"
)

var (
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	bareURLRe      = regexp.MustCompile(`https?://\S+`)
	wwwRe          = regexp.MustCompile(`www\.\S+`)
	citationRe     = regexp.MustCompile(`\[\d+\]`)
	spaceRunRe     = regexp.MustCompile(` {2,}`)
	blankRunRe     = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// StripLinks makes generated text safe for audio narration: markdown
// links collapse to their label, bare URLs and numeric citation markers
// disappear, and the whitespace left behind is normalized. The transform
// is order-sensitive and idempotent.
func StripLinks(text string) string {
	text = markdownLinkRe.ReplaceAllString(text, "$1")
	text = bareURLRe.ReplaceAllString(text, "")
	text = wwwRe.ReplaceAllString(text, "")
	text = citationRe.ReplaceAllString(text, "")
	text = spaceRunRe.ReplaceAllString(text, " ")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
