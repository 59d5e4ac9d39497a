package models

import "strings"

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so that a client-controlled value containing ':' cannot address another
// bucket. IPv6 addresses are affected too.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// NewAdminKey is the bucket for gateway calls from one client address.
func NewAdminKey(ip string) string {
	return "admin:" + SanitizeKeySegment(ip)
}
