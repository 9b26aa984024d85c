package service

import "strings"

// NormalizeRegisterNo trims whitespace; purely numeric register numbers
// also lose their leading zeros so "00123" and "123" name the same student.
func NormalizeRegisterNo(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return s
		}
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0"
	}
	return s
}
