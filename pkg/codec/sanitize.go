package codec

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	richTextOnce   sync.Once
	richTextPolicy *bluemonday.Policy
)

// sanitizeRichText strips unsafe markup from descriptions and notes. Text
// without tags passes through untouched, so "Price < 5" survives a save.
func sanitizeRichText(raw string) string {
	if !hasMarkup(raw) {
		return raw
	}
	return strings.TrimSpace(richTextSanitizer().Sanitize(raw))
}

// hasMarkup reports whether raw tokenizes to at least one tag or comment.
func hasMarkup(raw string) bool {
	if !strings.ContainsAny(raw, "<>") {
		return false
	}
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken,
			html.CommentToken, html.DoctypeToken:
			return true
		}
	}
}

func richTextSanitizer() *bluemonday.Policy {
	richTextOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		richTextPolicy = policy
	})
	return richTextPolicy
}
