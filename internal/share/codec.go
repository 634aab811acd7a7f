package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// SoftTokenLength is the advisory size above which QR scanning is no longer
// reliable at typical print and display sizes. Encode still succeeds.
const SoftTokenLength = 2000

var encoding = base64.RawURLEncoding

// Codec encodes and decodes fact-share tokens. The zero value is not usable;
// build one with NewCodec. A Codec is safe for concurrent use.
type Codec struct {
	limits Limits
	ns     uuid.UUID
}

type Option func(*Codec)

// WithLimits overrides the sanitizer limits.
func WithLimits(l Limits) Option {
	return func(c *Codec) { c.limits = l.withDefaults() }
}

// WithIDNamespace replaces the namespace missing ids are derived in.
func WithIDNamespace(ns uuid.UUID) Option {
	return func(c *Codec) {
		if ns != uuid.Nil {
			c.ns = ns
		}
	}
}

func NewCodec(opts ...Option) *Codec {
	c := &Codec{limits: DefaultLimits(), ns: idNamespace}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// EncodeResult carries the token and the advisory size signal.
type EncodeResult struct {
	Token    string
	Length   int
	Oversize bool
}

// Encode sanitizes p and renders it as a token. Size never makes it fail;
// callers should surface Oversize to the user instead.
func (c *Codec) Encode(p Payload) (EncodeResult, error) {
	body, err := json.Marshal(c.Sanitize(p))
	if err != nil {
		return EncodeResult{}, fmt.Errorf("marshal payload: %w", err)
	}
	token := TokenPrefix + encoding.EncodeToString(body)
	return EncodeResult{
		Token:    token,
		Length:   len(token),
		Oversize: len(token) > SoftTokenLength,
	}, nil
}

// Decode parses and validates a token. It returns an error wrapping
// ErrFormat, ErrDecode or ErrVersion; a returned payload is always sanitized.
func (c *Codec) Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if !HasTokenPrefix(token) {
		return Payload{}, ErrFormat
	}

	body, err := encoding.DecodeString(strings.TrimRight(token[len(TokenPrefix):], "="))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return Payload{}, fmt.Errorf("%w: json: %v", ErrDecode, err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return Payload{}, fmt.Errorf("%w: payload is not an object", ErrDecode)
	}

	if v, ok := number(obj["v"]); !ok || v != Version {
		return Payload{}, fmt.Errorf("%w: got %v", ErrVersion, obj["v"])
	}

	return c.Sanitize(fromDocument(obj)), nil
}

// fromDocument maps loosely typed JSON onto Payload. Anything of the wrong
// type reads as its zero value and is then repaired by Sanitize.
func fromDocument(obj map[string]any) Payload {
	owner, _ := obj["owner"].(map[string]any)
	p := Payload{
		V: Version,
		Owner: Owner{
			ID:        str(owner["id"]),
			Name:      str(owner["name"]),
			Avatar:    str(owner["avatar"]),
			Phone:     str(owner["phone"]),
			Telegram:  str(owner["telegram"]),
			Instagram: str(owner["instagram"]),
		},
	}
	if ms, ok := number(obj["generatedAt"]); ok {
		p.GeneratedAt = ms
	}

	groups, _ := obj["groups"].([]any)
	for _, item := range groups {
		g, ok := item.(map[string]any)
		if !ok {
			continue
		}
		group := Group{ID: str(g["id"]), Name: str(g["name"]), Color: str(g["color"])}
		facts, _ := g["facts"].([]any)
		for _, fi := range facts {
			f, ok := fi.(map[string]any)
			if !ok {
				continue
			}
			group.Facts = append(group.Facts, Fact{ID: str(f["id"]), Text: str(f["text"])})
		}
		p.Groups = append(p.Groups, group)
	}
	return p
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func number(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	// 1.0 and 1e0 are the same JSON number as 1.
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

var defaultCodec = NewCodec()

// Encode uses a Codec with default limits.
func Encode(p Payload) (EncodeResult, error) { return defaultCodec.Encode(p) }

// Decode uses a Codec with default limits.
func Decode(token string) (Payload, error) { return defaultCodec.Decode(token) }

// Sanitize uses a Codec with default limits.
func Sanitize(p Payload) Payload { return defaultCodec.Sanitize(p) }
