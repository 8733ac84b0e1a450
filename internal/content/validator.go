// Package content provides stateless validation, sanitization, and abuse
// heuristics applied to user-supplied text before it is persisted or
// compared. The injection and spam batteries are defense-in-depth signals;
// the persistence layer always uses parameterized queries regardless of what
// this package concludes.
package content

import (
	"regexp"
	"strings"
)

const maxEmailLength = 254

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(union|select|insert|update|delete|drop|create|alter)\b.*\b(from|into|table|database)\b`),
	regexp.MustCompile(`['"]\s*(or|and)\s*['"]\s*=\s*['"]\s*['"]\s*`),
	regexp.MustCompile(`['"]\s*(or|and)\s+\d+\s*=\s*\d+\s*['"]\s*`),
	regexp.MustCompile(`['"]\s*(or|and)\s*['"][^'"]*['"]\s*=\s*['"]`),
	regexp.MustCompile(`;\s*(drop|delete|truncate|insert|update)`),
	regexp.MustCompile(`(exec|execute|sp_|xp_)`),
	regexp.MustCompile(`<script[^>]*>.*</script>`),
}

var spamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`http[s]?://.*\.tk/`),
	regexp.MustCompile(`http[s]?://.*\.ml/`),
	regexp.MustCompile(`(buy|purchase|sale).*(viagra|cialis|cheap)`),
	regexp.MustCompile(`(win|winner|won).*(money|prize|lottery)`),
	regexp.MustCompile(`[a-zA-Z]{50,}`),
}

// maxRepeatedRuneRun bounds how many times the same rune may repeat
// consecutively before the text is considered spam. RE2 has no
// backreferences, so the run check is a plain scan.
const maxRepeatedRuneRun = 10

func hasExcessiveRuneRun(text string) bool {
	var previous rune
	runLength := 0
	for _, char := range text {
		if char == previous {
			runLength++
			if runLength > maxRepeatedRuneRun {
				return true
			}
			continue
		}
		previous = char
		runLength = 1
	}
	return false
}

var (
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	taxIDPattern   = regexp.MustCompile(`^[0-9]{9,13}$`)
)

// ValidateEmail reports whether the value is a plausible email address.
func ValidateEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}
	return emailPattern.MatchString(email)
}

// LooksLikeInjection reports whether the text matches any of the heuristic
// SQL-injection or script-tag patterns. Matching is case-insensitive.
func LooksLikeInjection(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// LooksLikeSpam reports whether the text trips any of the spam heuristics:
// disposable link domains, pharmacy or lottery keyword pairs, abnormally long
// tokens, or long runs of a single character.
func LooksLikeSpam(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, pattern := range spamPatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return hasExcessiveRuneRun(lowered)
}

// Sanitize normalizes free text for storage. Injection-like input is dropped
// entirely rather than escaped. Control characters other than newline,
// carriage return, and tab are removed, HTML tags are stripped, and the
// result is truncated to maxLength characters and trimmed of surrounding
// whitespace. Sanitize is idempotent on already-clean input.
func Sanitize(text string, maxLength int) string {
	if text == "" {
		return ""
	}
	if LooksLikeInjection(text) {
		return ""
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, char := range text {
		if char >= 32 || char == '\n' || char == '\r' || char == '\t' {
			builder.WriteRune(char)
		}
	}

	cleaned := htmlTagPattern.ReplaceAllString(builder.String(), "")
	cleaned = truncateRunes(cleaned, maxLength)
	return strings.TrimSpace(cleaned)
}

// truncateRunes cuts text to at most maxLength characters on a rune
// boundary. A non-positive maxLength leaves the text unchanged.
func truncateRunes(text string, maxLength int) string {
	if maxLength <= 0 {
		return text
	}
	count := 0
	for index := range text {
		if count == maxLength {
			return text[:index]
		}
		count++
	}
	return text
}

// ValidatePassword checks the password against the platform length rules and
// returns a caller-facing reason when the check fails.
func ValidatePassword(password string) (bool, string) {
	if password == "" {
		return false, "password is required"
	}
	if len(password) < 6 {
		return false, "password must be at least 6 characters"
	}
	if len(password) > 128 {
		return false, "password is too long"
	}
	return true, ""
}

// ValidateTaxID checks an optional company tax identifier. An empty value is
// accepted; a present value must be 9 to 13 ASCII digits.
func ValidateTaxID(taxID string) bool {
	if taxID == "" {
		return true
	}
	return taxIDPattern.MatchString(taxID)
}
