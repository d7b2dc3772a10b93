package feedback

import "regexp"

// Pattern pairs a verbal-habit matcher with its advisory.
type Pattern struct {
	re       *regexp.Regexp
	Advisory string
}

// defaultPatterns is the ordered habit catalog. Every matching pattern
// is recorded in the result, but only the first match's advisory is
// appended to the primary message.
var defaultPatterns = []Pattern{
	{
		re:       regexp.MustCompile(`\b(sorry|apologize|apologies)\b`),
		Advisory: "Try to avoid apologizing too much in your conversations. It can diminish your message.",
	},
	{
		re:       regexp.MustCompile(`\b(um|uh|like|you know)\b`),
		Advisory: "Try to reduce filler words to sound more confident and articulate.",
	},
	{
		re:       regexp.MustCompile(`\bi think\b`),
		Advisory: "Consider making more definitive statements instead of prefacing with 'I think' to sound more confident.",
	},
	{
		re:       regexp.MustCompile(`\b(cant|cannot|can't|won't|wont)\b`),
		Advisory: "Focus on what you can do rather than what you can't to maintain a positive tone.",
	},
	{
		re:       regexp.MustCompile(`\b(never|always)\b`),
		Advisory: "Avoid absolute terms like 'never' and 'always' as they can sound exaggerated or confrontational.",
	},
	{
		re:       regexp.MustCompile(`\b(maybe|perhaps|possibly)\b`),
		Advisory: "Too many qualifiers can make you sound uncertain. Be more direct when appropriate.",
	},
}

// matchPatterns returns advisories for every pattern matching the
// lowercased input, in catalog order.
func matchPatterns(patterns []Pattern, lowered string) []string {
	var matched []string
	for _, p := range patterns {
		if p.re.MatchString(lowered) {
			matched = append(matched, p.Advisory)
		}
	}
	return matched
}
