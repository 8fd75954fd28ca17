// Package normalise cleans raw extracted text before chunking.
//
// The cleaner is a pure function with no failure modes: whatever the
// extraction step produced (crawled page text, file contents), Clean
// returns a stable plain-text form. Binary payloads never reach this
// package; extraction happens first and fails on its own terms.
package normalise

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// spaceRun matches runs of whitespace that contain no newline.
	spaceRun = regexp.MustCompile(`[^\S\n]+`)

	// newlineGap matches a newline with surrounding spaces, so blank
	// lines collapse cleanly even when lines carry trailing spaces.
	newlineGap = regexp.MustCompile(`[ ]*\n[ ]*`)

	// paragraphRun matches three or more consecutive newlines.
	paragraphRun = regexp.MustCompile(`\n{3,}`)
)

// Clean normalises raw text: line endings become \n, runs of
// non-newline whitespace collapse to single spaces, three or more
// consecutive newlines collapse to exactly two (paragraphs survive,
// larger gaps do not), null bytes and control characters are stripped,
// and the result is trimmed. Always returns a string, possibly empty.
func Clean(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = stripControl(s)
	s = spaceRun.ReplaceAllString(s, " ")
	s = newlineGap.ReplaceAllString(s, "\n")
	s = paragraphRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// stripControl removes null bytes and control characters. Newlines
// survive; tabs survive here and collapse to spaces in the whitespace
// pass.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
