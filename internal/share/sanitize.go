package share

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field caps, in characters.
const (
	MaxFieldLength       = 64
	MaxAvatarURLLength   = 200
	DefaultMaxFactLength = 280

	// Entitlement limits; surplus groups/facts are dropped in order.
	DefaultMaxGroups        = 20
	DefaultMaxFactsPerGroup = 50
)

// Limits configures the sanitizer. Zero fields fall back to the defaults.
type Limits struct {
	MaxFactLength    int
	MaxGroups        int
	MaxFactsPerGroup int
}

func DefaultLimits() Limits {
	return Limits{
		MaxFactLength:    DefaultMaxFactLength,
		MaxGroups:        DefaultMaxGroups,
		MaxFactsPerGroup: DefaultMaxFactsPerGroup,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxFactLength <= 0 {
		l.MaxFactLength = d.MaxFactLength
	}
	if l.MaxGroups <= 0 {
		l.MaxGroups = d.MaxGroups
	}
	if l.MaxFactsPerGroup <= 0 {
		l.MaxFactsPerGroup = d.MaxFactsPerGroup
	}
	return l
}

// Sanitize normalizes p so it satisfies the payload invariants. It never
// fails: oversized fields are truncated, disallowed avatars dropped, empty
// facts removed and missing ids derived from the surrounding content, so the
// same raw payload always sanitizes to the same ids. Groups sharing an id are
// folded into the first one and repeated fact texts within a group are kept
// once. Sanitize(Sanitize(p)) equals Sanitize(p).
func (c *Codec) Sanitize(p Payload) Payload {
	owner := Owner{
		Name:      clip(p.Owner.Name, MaxFieldLength),
		Avatar:    avatar(p.Owner.Avatar),
		Phone:     clip(p.Owner.Phone, MaxFieldLength),
		Telegram:  clip(p.Owner.Telegram, MaxFieldLength),
		Instagram: clip(p.Owner.Instagram, MaxFieldLength),
	}
	owner.ID = c.id(p.Owner.ID, "owner", owner.Name, owner.Avatar, owner.Phone, owner.Telegram, owner.Instagram)

	out := Payload{
		V:           Version,
		Owner:       owner,
		Groups:      make([]Group, 0, min(len(p.Groups), c.limits.MaxGroups)),
		GeneratedAt: max(p.GeneratedAt, 0),
	}

	byID := make(map[string]int, len(p.Groups))
	for i, g := range p.Groups {
		sg := c.sanitizeGroup(owner.ID, i, g)
		if at, ok := byID[sg.ID]; ok {
			out.Groups[at] = c.foldGroup(out.Groups[at], sg.Facts)
			continue
		}
		if len(out.Groups) == c.limits.MaxGroups {
			continue
		}
		byID[sg.ID] = len(out.Groups)
		out.Groups = append(out.Groups, sg)
	}
	return out
}

func (c *Codec) sanitizeGroup(ownerID string, index int, g Group) Group {
	name := clip(g.Name, MaxFieldLength)
	id := c.id(g.ID, ownerID, "group", strconv.Itoa(index), name)

	facts := make([]Fact, 0, len(g.Facts))
	for _, f := range g.Facts {
		text := clip(f.Text, c.limits.MaxFactLength)
		if text == "" {
			continue
		}
		facts = append(facts, Fact{ID: c.id(f.ID, id, "fact", text), Text: text})
	}

	out := Group{
		ID:    id,
		Name:  name,
		Color: clip(g.Color, MaxFieldLength),
		Facts: make([]Fact, 0, min(len(facts), c.limits.MaxFactsPerGroup)),
	}
	return c.foldGroup(out, facts)
}

// foldGroup appends facts whose text g does not hold yet, up to the per-group
// cap.
func (c *Codec) foldGroup(g Group, facts []Fact) Group {
	for _, f := range facts {
		if len(g.Facts) == c.limits.MaxFactsPerGroup {
			break
		}
		if slices.ContainsFunc(g.Facts, func(have Fact) bool { return have.Text == f.Text }) {
			continue
		}
		g.Facts = append(g.Facts, f)
	}
	return g
}

// id keeps a usable raw id, or derives a name-based UUID from seed.
func (c *Codec) id(raw string, seed ...string) string {
	if s := clip(raw, MaxFieldLength); s != "" {
		return s
	}
	return uuid.NewSHA1(c.ns, []byte(strings.Join(seed, "\x00"))).String()
}

// clip trims s, drops invalid UTF-8 and cuts it to n runes. Trimming again
// after the cut keeps the function idempotent.
func clip(s string, n int) string {
	s = strings.TrimSpace(strings.ToValidUTF8(s, ""))
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n]))
}

// avatar keeps only short absolute http(s) URLs. data: and blob: URLs would
// push the token far past a scannable size.
func avatar(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || utf8.RuneCountInString(s) > MaxAvatarURLLength || !utf8.ValidString(s) {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return s
	default:
		return ""
	}
}

// idNamespace scopes ids derived for payloads that omit them.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://factshare.app/ids"))
