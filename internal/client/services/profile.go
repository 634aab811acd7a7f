package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/factshare/internal/share"
)

// Profile is what the user chose to share: their contact card and the fact
// groups to include. The owner id is assigned by the client, not the file.
type Profile struct {
	Name      string        `json:"name"`
	Avatar    string        `json:"avatar,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Telegram  string        `json:"telegram,omitempty"`
	Instagram string        `json:"instagram,omitempty"`
	Groups    []share.Group `json:"groups"`
}

func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *Profile) payload(ownerID string, generatedAt int64) share.Payload {
	return share.Payload{
		V: share.Version,
		Owner: share.Owner{
			ID:        ownerID,
			Name:      p.Name,
			Avatar:    p.Avatar,
			Phone:     p.Phone,
			Telegram:  p.Telegram,
			Instagram: p.Instagram,
		},
		Groups:      p.Groups,
		GeneratedAt: generatedAt,
	}
}
