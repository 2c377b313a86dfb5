package responder

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Query is the parsed form of the trigger message's trailing text: a time
// cutoff, a participant count, or neither. Note carries any free text that
// followed the recognized token.
type Query struct {
	Cutoff time.Time
	Count  int
	Note   string
}

// HasCutoff reports whether the query carries a time window.
func (q Query) HasCutoff() bool {
	return !q.Cutoff.IsZero()
}

// Parse interprets the text following the trigger keyword. Recognized forms,
// first match wins:
//
//	today            start of the current day
//	this <word>      magnitude 0, unit from the word's first letter
//	<number><unit>   also <unit><number>; unit is "min" or one of s,h,d,w,m
//	<number>         bare positive integer, a participant count
//
// Anything else yields a zero Query; parse failures never surface as errors,
// the caller falls back to the default lookback window.
func Parse(raw string, now time.Time) Query {
	token, rest := splitFirstToken(raw)
	if token == "" {
		return Query{}
	}
	head := strings.ToLower(token)

	if head == "today" {
		return Query{Cutoff: Resolve(now, 0, UnitDay), Note: rest}
	}

	if head == "this" {
		if unitWord, tail := splitFirstToken(rest); unitWord != "" {
			unit := Unit(strings.ToLower(unitWord)[:1])
			return Query{Cutoff: Resolve(now, 0, unit), Note: tail}
		}
		return Query{}
	}

	if magnitude, unit, ok := splitTimeToken(head); ok {
		return Query{Cutoff: Resolve(now, magnitude, unit), Note: rest}
	}

	if count, err := strconv.Atoi(head); err == nil && count > 0 {
		return Query{Count: count, Note: rest}
	}

	return Query{}
}

// splitTimeToken splits a token like "5d", "d5", "10min", "min10", or a bare
// unit ("d" meaning "0d") into magnitude and unit. A single unit letter
// outside the known set still parses; the resolver clamps it to the default
// cutoff. A token of digits only, or with a multi-letter word other than
// "min", does not parse.
func splitTimeToken(token string) (int, Unit, bool) {
	digits, letters := splitRuns(token)
	if letters == "" {
		return 0, "", false
	}
	if letters != string(UnitMinute) && len(letters) != 1 {
		return 0, "", false
	}

	magnitude := 0
	if digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil {
			return 0, "", false
		}
		magnitude = n
	}

	return magnitude, Unit(letters), true
}

// splitRuns accepts exactly one digit run and one letter run in either order
// and returns them. Any other shape yields two empty strings.
func splitRuns(token string) (digits, letters string) {
	i := 0
	for i < len(token) && token[i] >= '0' && token[i] <= '9' {
		i++
	}

	if i > 0 {
		if !allLetters(token[i:]) {
			return "", ""
		}
		return token[:i], token[i:]
	}

	j := 0
	for j < len(token) && isASCIILetter(token[j]) {
		j++
	}
	if j == 0 || !allDigits(token[j:]) {
		return "", ""
	}

	return token[j:], token[:j]
}

func allLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isASCIILetter(s[i]) {
			return false
		}
	}
	return s != ""
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// splitFirstToken returns the first whitespace-delimited token and the
// trimmed remainder.
func splitFirstToken(s string) (token, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}

	return s[:i], strings.TrimSpace(s[i:])
}
