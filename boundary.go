package epubtai

import "strings"

// phraseDelimiters are the characters that end a phrase when they appear at
// the end of a segment's text (after trailing whitespace is trimmed).
const phraseDelimiters = ".!?;:"

// endsWithDelimiter reports whether text, trimmed of trailing whitespace,
// ends in a phrase delimiter.
func endsWithDelimiter(text string) bool {
	trimmed := strings.TrimRight(text, " \t\n\r")
	if trimmed == "" {
		return false
	}
	return strings.ContainsRune(phraseDelimiters, rune(trimmed[len(trimmed)-1]))
}

// forceBoundary decides whether a new segment must start its own phrase
// instead of extending the current one. It is consulted only when the current
// phrase already holds at least one segment; last is that phrase's final
// segment and candidate is the incoming one.
//
// A boundary is forced when any of these hold:
//   - last's text ends in a phrase delimiter;
//   - either segment sits in a blocking context (anchor, heading, title),
//     whose text must never merge with neighbors;
//   - the candidate repeats last's context and that context is a valid one;
//   - the candidate's context differs from last's.
//
// The repeated-context clause is kept literal: a repeated invalid context is
// the only combination that does not force a boundary, and the traversal
// filter keeps invalid contexts from ever reaching the buffer.
func forceBoundary(last, candidate segment) bool {
	delimiter := endsWithDelimiter(last.Text)
	blocking := BlockingTags[candidate.ParentTag] || BlockingTags[last.ParentTag]
	sameContext := candidate.ParentTag == last.ParentTag
	validRepeat := sameContext && !InvalidTags[last.ParentTag]
	changedContext := !sameContext

	return delimiter || blocking || validRepeat || changedContext
}
