package share

import (
	"net/url"
	"strings"
)

const (
	// TokenPrefix marks a string as a fact-share token. ':' is outside the
	// base64url alphabet, so the prefix never collides with the body.
	TokenPrefix = "FACTSHARE:"

	SharePath  = "/share"
	TokenParam = "token"

	// SlugAlphabet omits characters that are easy to misread (0/O, 1/l/I, o).
	SlugAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"

	MinSlugLength = 4
	MaxSlugLength = 32
)

// HasTokenPrefix reports whether s starts with TokenPrefix.
func HasTokenPrefix(s string) bool {
	return strings.HasPrefix(s, TokenPrefix)
}

// ShortLink builds <origin>/share/<slug>.
func ShortLink(origin, slug string) string {
	return strings.TrimRight(origin, "/") + SharePath + "/" + slug
}

// LongLink builds <origin>/share?token=<escaped token>.
func LongLink(origin, token string) string {
	q := url.Values{}
	q.Set(TokenParam, token)
	return strings.TrimRight(origin, "/") + SharePath + "?" + q.Encode()
}

// IsSlug reports whether s could have been minted by the alias registry.
func IsSlug(s string) bool {
	if len(s) < MinSlugLength || len(s) > MaxSlugLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(SlugAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// IsTokenByte reports whether c belongs to the unpadded base64url alphabet.
func IsTokenByte(c byte) bool {
	return c >= 'A' && c <= 'Z' ||
		c >= 'a' && c <= 'z' ||
		c >= '0' && c <= '9' ||
		c == '-' || c == '_'
}
