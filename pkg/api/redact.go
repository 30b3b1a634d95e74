package api

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// Raw phone numbers and emails never reach log bodies; only short hashes do,
// so two log lines about the same contact remain correlatable.
var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)
)

// hashPII maps an identifier to a stable 8-hex-char tag.
func hashPII(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:4])
}

// redactText replaces embedded emails and phone numbers with hash tags.
func redactText(text string) string {
	out := emailRe.ReplaceAllStringFunc(text, func(m string) string {
		return "<email:" + hashPII(m) + ">"
	})
	out = phoneRe.ReplaceAllStringFunc(out, func(m string) string {
		return "<phone:" + hashPII(m) + ">"
	})
	return out
}
