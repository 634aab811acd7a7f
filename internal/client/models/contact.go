// Package models defines client-side data models of the fact-share CLI.
package models

import (
	"slices"
	"time"
)

// Contact is a person met through a scanned share. RemoteID is the owner id
// from their payloads and identifies them across scans.
type Contact struct {
	ID        string `json:"id"`
	RemoteID  string `json:"remoteId"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Telegram  string `json:"telegram,omitempty"`
	Instagram string `json:"instagram,omitempty"`

	ConnectedAt time.Time `json:"connectedAt"`
	LastUpdated time.Time `json:"lastUpdated"`

	Groups []ContactGroup `json:"groups"`

	// Local-only annotations, never overwritten by a scan.
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
	Connections []string `json:"connections,omitempty"`
}

type ContactGroup struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Color string        `json:"color"`
	Facts []ContactFact `json:"facts"`
}

type ContactFact struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FactCount returns the number of facts across all groups.
func (c Contact) FactCount() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Facts)
	}
	return n
}

// Clone returns a deep copy of c.
func (c Contact) Clone() Contact {
	out := c
	out.Tags = slices.Clone(c.Tags)
	out.Connections = slices.Clone(c.Connections)
	out.Groups = slices.Clone(c.Groups)
	for i := range out.Groups {
		out.Groups[i].Facts = slices.Clone(c.Groups[i].Facts)
	}
	return out
}
