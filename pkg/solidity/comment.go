package solidity

import "regexp"

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
)

// StripComments removes all /* ... */ block comments (including multi-line
// ones) and all // comments to end of line. The removal is purely textual:
// comment-like sequences inside string literals are stripped too. That is an
// accepted approximation for locating declarations, where literals never
// carry structure we rely on.
func StripComments(text string) string {
	text = blockCommentRe.ReplaceAllString(text, "")
	return lineCommentRe.ReplaceAllString(text, "")
}
