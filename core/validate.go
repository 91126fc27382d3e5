package core

import (
	"regexp"
	"strings"
)

// codePattern matches exactly six alphanumerics between word boundaries.
// Extraction runs over upper-cased text, so lowercase ranges are not needed.
var codePattern = regexp.MustCompile(`\b[0-9A-Z]{6}\b`)

// blacklist holds common English and reserved words that match the code
// pattern shape and dominate false positives in prose. Membership is checked
// on the upper-cased candidate.
var blacklist = map[string]bool{}

var blacklistWords = []string{
	"PLEASE", "THANKS", "NOBODY", "ANYONE", "INVITE", "REDDIT",
	"ACCESS", "ACCEPT", "ALMOST", "ALWAYS", "AROUND", "BEFORE",
	"BETTER", "CANNOT", "COMING", "DIRECT", "DOUBLE", "EITHER",
	"ENOUGH", "EXPIRE", "FRIEND", "GIVING", "HAVENT", "HOPING",
	"LITTLE", "LOOKED", "MOMENT", "MYSELF", "NEEDED", "PEOPLE",
	"PRETTY", "PROMPT", "RANDOM", "REALLY", "REPOST", "SEARCH",
	"SECOND", "SHOULD", "SOCIAL", "THANKU", "THOUGH", "UPDATE",
	"WANTED", "WORKED",
}

func init() {
	for _, w := range blacklistWords {
		blacklist[strings.ToUpper(w)] = true
	}
}

// IsValidCandidate reports whether token belongs in the result set:
// not blacklisted and carrying at least two letters and two digits.
// Comparison is case-insensitive.
func IsValidCandidate(token string) bool {
	token = strings.ToUpper(token)
	if blacklist[token] {
		return false
	}
	var letters, digits int
	for _, ch := range token {
		switch {
		case ch >= 'A' && ch <= 'Z':
			letters++
		case ch >= '0' && ch <= '9':
			digits++
		}
	}
	return letters >= 2 && digits >= 2
}

// ExtractCodes returns the valid candidate tokens of text in first-occurrence
// order. Duplicates within the same text are preserved; deduplication happens
// at store merge time.
func ExtractCodes(text string) []string {
	var codes []string
	for _, candidate := range codePattern.FindAllString(strings.ToUpper(text), -1) {
		if !IsValidCandidate(candidate) {
			continue
		}
		codes = append(codes, candidate)
	}
	return codes
}
