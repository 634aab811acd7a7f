// Package share implements the fact-share token: the payload a user hands to
// someone else, its sanitization rules and the versioned wire encoding.
//
// A token is TokenPrefix followed by the unpadded URL-safe base64 of the
// payload's canonical JSON. Decoding never trusts the wire: every decoded
// payload passes through the same sanitizer used when encoding.
package share

// Version is the only payload version this package reads or writes.
const Version = 1

// Payload is one share event: an owner and the fact groups they selected.
type Payload struct {
	V           int     `json:"v"`
	Owner       Owner   `json:"owner"`
	Groups      []Group `json:"groups"`
	GeneratedAt int64   `json:"generatedAt"` // epoch milliseconds
}

// Owner identifies the person sharing. ID is stable across shares and is the
// key the receiving side merges on.
type Owner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

// Group is a named, colored collection of facts.
type Group struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Facts []Fact `json:"facts"`
}

type Fact struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FactCount returns the number of facts across all groups.
func (p Payload) FactCount() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Facts)
	}
	return n
}
