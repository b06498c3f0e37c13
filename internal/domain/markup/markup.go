// Package markup extracts inline annotations from card and board text.
package markup

import "regexp"

// Labels are written as #word, mentions as @word. Assignee mentions accept
// dots (user.name) while generic mention tags do not; the two patterns are
// deliberately separate because they feed different record fields.
var (
	labelPattern    = regexp.MustCompile(`#([\w-]+)`)
	mentionPattern  = regexp.MustCompile(`@([\w-]+)`)
	assigneePattern = regexp.MustCompile(`@([\w.-]+)`)
)

// Labels returns the distinct #label annotations in order of first appearance.
func Labels(text string) []string {
	return extract(labelPattern, text)
}

// Mentions returns the distinct @mention annotations (no dots) in order of
// first appearance. These become the record's generic tags.
func Mentions(text string) []string {
	return extract(mentionPattern, text)
}

// Assignees returns the distinct @user mentions, dots allowed.
func Assignees(text string) []string {
	return extract(assigneePattern, text)
}

func extract(p *regexp.Regexp, text string) []string {
	if text == "" {
		return nil
	}
	matches := p.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		out = append(out, m[1])
	}
	return out
}
