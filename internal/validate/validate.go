package validate

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ErrInvalid = errors.New("invalid")

// RequireBounded trims and ensures length bounds.
func RequireBounded(name, s string, min, max int) (string, error) {
	s = strings.TrimSpace(s)
	if n := utf8.RuneCountInString(s); n < min || n > max {
		return "", errors.New(name + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters")
	}
	return s, nil
}

// ParseID parses a positive row id.
func ParseID(name, raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.Join(ErrInvalid, errors.New(name+" must be a positive integer"))
	}
	return n, nil
}

// Flag is the tri-state success=0|1 query parameter of the form pages.
type Flag int

const (
	FlagNone Flag = iota
	FlagSuccess
	FlagFailure
)

func ParseFlag(raw string) Flag {
	switch raw {
	case "1":
		return FlagSuccess
	case "0":
		return FlagFailure
	default:
		return FlagNone
	}
}
