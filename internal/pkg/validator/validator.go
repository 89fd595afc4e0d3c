package validator

import (
	"strconv"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (v ValidationError) Error() string {
	return v.Field + ": " + v.Message
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var ratingValues = []string{"low", "medium", "high"}

// IsValidRating accepts Low, Medium or High in any letter case.
func IsValidRating(s string) bool {
	return IsInSlice(strings.ToLower(strings.TrimSpace(s)), ratingValues)
}

// IsValidPosition checks a grid position in the 1..9 range.
func IsValidPosition(p int) bool {
	return p >= 1 && p <= 9
}

// Slice contains check
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// ParseYears parses a tenure cell such as "4", "4.5" or "4 years".
func ParseYears(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "years")
	s = strings.TrimSuffix(s, "year")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
