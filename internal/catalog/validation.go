package catalog

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minTextLength  = 2
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

var (
	isbnSeparators  = regexp.MustCompile(`[\s-]`)
	phoneSeparators = regexp.MustCompile(`[ -]`)
	allDigits       = regexp.MustCompile(`^[0-9]+$`)
	memberName      = regexp.MustCompile(`^[\p{L}\s]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
)

// CleanISBN strips separators and checks the ISBN is 10 or 13 digits.
func CleanISBN(raw string) (string, error) {
	isbn := isbnSeparators.ReplaceAllString(raw, "")
	if isbn == "" {
		return "", invalid("isbn", "must not be empty")
	}
	if !allDigits.MatchString(isbn) {
		return "", invalid("isbn", "must contain only digits, spaces or hyphens")
	}
	if len(isbn) != 10 && len(isbn) != 13 {
		return "", invalid("isbn", "must have 10 or 13 digits, got %d", len(isbn))
	}
	return isbn, nil
}

// cleanText trims s and requires at least two characters.
func cleanText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, "must not be empty")
	}
	if utf8.RuneCountInString(s) < minTextLength {
		return "", invalid(field, "must have at least %d characters", minTextLength)
	}
	return s, nil
}

func cleanMemberName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid("name", "must not be empty")
	}
	if !memberName.MatchString(name) {
		return "", invalid("name", "must contain only letters and spaces")
	}
	return name, nil
}

// cleanPhone keeps the number as entered but checks its digits.
func cleanPhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", invalid("phone", "must not be empty")
	}
	digits := phoneSeparators.ReplaceAllString(phone, "")
	if !allDigits.MatchString(digits) {
		return "", invalid("phone", "must contain only digits, spaces or hyphens")
	}
	if len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		return "", invalid("phone", "must have between %d and %d digits, got %d", minPhoneDigits, maxPhoneDigits, len(digits))
	}
	return phone, nil
}

func cleanEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", invalid("email", "must not be empty")
	}
	if !emailPattern.MatchString(email) {
		return "", invalid("email", "must look like user@domain.com")
	}
	return NormalizeEmail(email), nil
}

func cleanName(field, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", invalid(field, "must not be empty")
	}
	return name, nil
}
