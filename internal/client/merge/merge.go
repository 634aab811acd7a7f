// Package merge folds a decoded share payload into the local contact book.
//
// Merge is pure: it reads a snapshot of the contacts and returns a new one,
// leaving persistence and its atomicity to the caller. Applying the same
// payload twice adds nothing the second time; only LastUpdated moves.
package merge

import (
	"time"

	"github.com/dmitrijs2005/factshare/internal/client/models"
	"github.com/dmitrijs2005/factshare/internal/share"
	"github.com/google/uuid"
)

// newID assigns local surrogate ids to new contacts.
var newID = uuid.NewString

type Result struct {
	Contact    models.Contact
	Contacts   []models.Contact
	WasCreated bool
	AddedFacts int
}

// Merge applies p to existing. The contact whose RemoteID equals p.Owner.ID is
// updated in place in the returned list; when there is none a new contact is
// appended. existing is never modified.
func Merge(p share.Payload, existing []models.Contact, now time.Time) Result {
	contacts := make([]models.Contact, len(existing), len(existing)+1)
	for i, c := range existing {
		contacts[i] = c.Clone()
	}

	idx := find(contacts, p.Owner.ID)
	if idx < 0 {
		c := create(p, now)
		contacts = append(contacts, c)
		return Result{Contact: c.Clone(), Contacts: contacts, WasCreated: true, AddedFacts: c.FactCount()}
	}

	added := update(&contacts[idx], p, now)
	return Result{Contact: contacts[idx].Clone(), Contacts: contacts, AddedFacts: added}
}

func find(contacts []models.Contact, remoteID string) int {
	if remoteID == "" {
		return -1
	}
	for i := range contacts {
		if contacts[i].RemoteID == remoteID {
			return i
		}
	}
	return -1
}

func create(p share.Payload, now time.Time) models.Contact {
	c := models.Contact{
		ID:          newID(),
		RemoteID:    p.Owner.ID,
		Name:        p.Owner.Name,
		Avatar:      p.Owner.Avatar,
		Phone:       p.Owner.Phone,
		Telegram:    p.Owner.Telegram,
		Instagram:   p.Owner.Instagram,
		ConnectedAt: now,
		LastUpdated: now,
		Groups:      make([]models.ContactGroup, 0, len(p.Groups)),
		Tags:        []string{},
	}
	mergeGroups(&c, p.Groups)
	return c
}

func update(c *models.Contact, p share.Payload, now time.Time) int {
	overwrite(&c.Name, p.Owner.Name)
	overwrite(&c.Avatar, p.Owner.Avatar)
	overwrite(&c.Phone, p.Owner.Phone)
	overwrite(&c.Telegram, p.Owner.Telegram)
	overwrite(&c.Instagram, p.Owner.Instagram)

	added := mergeGroups(c, p.Groups)
	c.LastUpdated = now
	return added
}

// mergeGroups folds incoming groups into c by group id and returns the number
// of facts whose text the target group did not hold yet. New contacts and
// updates share it, so a payload repeating a group id lands the same way on
// the first scan as on every later one.
func mergeGroups(c *models.Contact, groups []share.Group) int {
	added := 0
	for _, in := range groups {
		gi := findGroup(c.Groups, in.ID)
		if gi < 0 {
			c.Groups = append(c.Groups, models.ContactGroup{
				ID:    in.ID,
				Name:  in.Name,
				Color: in.Color,
				Facts: make([]models.ContactFact, 0, len(in.Facts)),
			})
			gi = len(c.Groups) - 1
		} else {
			overwrite(&c.Groups[gi].Name, in.Name)
			overwrite(&c.Groups[gi].Color, in.Color)
		}

		g := &c.Groups[gi]
		seen := make(map[string]struct{}, len(g.Facts))
		for _, f := range g.Facts {
			seen[f.Text] = struct{}{}
		}
		for _, f := range in.Facts {
			if _, dup := seen[f.Text]; dup {
				continue
			}
			seen[f.Text] = struct{}{}
			g.Facts = append(g.Facts, models.ContactFact{ID: f.ID, Text: f.Text})
			added++
		}
	}
	return added
}

func findGroup(groups []models.ContactGroup, id string) int {
	for i := range groups {
		if groups[i].ID == id {
			return i
		}
	}
	return -1
}

func overwrite(dst *string, incoming string) {
	if incoming != "" {
		*dst = incoming
	}
}
