// Package locator finds a fact-share token in whatever a scanner or a paste
// produced: the raw token, a percent-encoded copy, a long share link, a short
// link carrying an alias slug, or a token buried in surrounding text.
package locator

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/factshare/internal/share"
)

var ErrNoToken = errors.New("no fact-share token found")

type Kind int

const (
	KindToken Kind = iota + 1
	KindSlug
)

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "token"
	case KindSlug:
		return "slug"
	default:
		return "unknown"
	}
}

// Target is what Locate found: a token ready for decoding or a slug that
// still has to be exchanged for one.
type Target struct {
	Kind  Kind
	Value string
}

// SlugResolver exchanges an alias slug for the token it stands for.
type SlugResolver interface {
	ResolveSlug(ctx context.Context, slug string) (string, error)
}

// Locate tries, in order: the input as is, the percent-decoded input, the
// token query parameter of a URL, a /share/<slug> path, and finally a
// substring search for the token prefix.
func Locate(raw string) (Target, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Target{}, false
	}

	if share.HasTokenPrefix(s) {
		return tokenTarget(s), true
	}

	decoded := s
	if d, err := url.QueryUnescape(s); err == nil {
		decoded = strings.TrimSpace(d)
	}
	if share.HasTokenPrefix(decoded) {
		return tokenTarget(decoded), true
	}

	if u, err := url.Parse(s); err == nil {
		if q := strings.TrimSpace(u.Query().Get(share.TokenParam)); share.HasTokenPrefix(q) {
			return tokenTarget(q), true
		}
		if slug, ok := slugFromPath(u.Path); ok {
			return Target{Kind: KindSlug, Value: slug}, true
		}
	}

	for _, c := range []string{s, decoded} {
		if i := strings.Index(c, share.TokenPrefix); i >= 0 {
			return tokenTarget(c[i:]), true
		}
	}
	return Target{}, false
}

// ExtractToken returns the token embedded in raw. Short links do not count:
// they need Resolve.
func ExtractToken(raw string) (string, bool) {
	t, ok := Locate(raw)
	if !ok || t.Kind != KindToken {
		return "", false
	}
	return t.Value, true
}

// Resolve locates a token in raw, exchanging a slug through r when needed.
func Resolve(ctx context.Context, raw string, r SlugResolver) (string, error) {
	t, ok := Locate(raw)
	if !ok {
		return "", ErrNoToken
	}
	if t.Kind == KindToken {
		return t.Value, nil
	}
	if r == nil {
		return "", fmt.Errorf("%w: short link %q cannot be resolved offline", ErrNoToken, t.Value)
	}

	token, err := r.ResolveSlug(ctx, t.Value)
	if err != nil {
		return "", fmt.Errorf("resolve slug %s: %w", t.Value, err)
	}
	if !share.HasTokenPrefix(token) {
		return "", fmt.Errorf("%w: slug %s resolved to something else", ErrNoToken, t.Value)
	}
	return token, nil
}

// tokenTarget keeps the prefix and the base64url run after it, dropping any
// trailing text.
func tokenTarget(s string) Target {
	end := len(share.TokenPrefix)
	for end < len(s) && share.IsTokenByte(s[end]) {
		end++
	}
	return Target{Kind: KindToken, Value: s[:end]}
}

func slugFromPath(p string) (string, bool) {
	p = strings.TrimSuffix(p, "/")
	seg := strings.TrimPrefix(share.SharePath, "/") + "/"

	var rest string
	switch {
	case strings.HasPrefix(p, seg):
		rest = p[len(seg):]
	case strings.Contains(p, "/"+seg):
		rest = p[strings.LastIndex(p, "/"+seg)+len(seg)+1:]
	default:
		return "", false
	}
	if !share.IsSlug(rest) {
		return "", false
	}
	return rest, true
}
