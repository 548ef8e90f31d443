package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// Hash generates a SHA-256 hash of the input string
func Hash(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashLink hashes a canonical form of link so that trivially different
// spellings of the same article URL share a cache key.
func HashLink(link string) string {
	return Hash(CanonicalLink(link))
}

// CanonicalLink trims the link, unescapes "&amp;", lowercases scheme and host
// and drops the fragment. Unparseable input is returned trimmed.
func CanonicalLink(link string) string {
	link = strings.ReplaceAll(strings.TrimSpace(link), "&amp;", "&")
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return link
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
