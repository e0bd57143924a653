package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// NormalizedHash hashes a title after lowercasing, trimming and collapsing
// whitespace runs, so re-scrapes that differ only in case or spacing map to
// the same dedup key.
func NormalizedHash(title string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = strings.Join(strings.Fields(normalized), " ")
	return HashString(normalized)
}
