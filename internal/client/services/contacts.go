package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/factshare/internal/client/backup"
	"github.com/dmitrijs2005/factshare/internal/client/client"
	"github.com/dmitrijs2005/factshare/internal/client/models"
	"github.com/dmitrijs2005/factshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/dbx"
)

// Uploader stores snapshots of the contact book somewhere safe and reads
// them back.
type Uploader interface {
	Upload(ctx context.Context, ownerID string, contacts []models.Contact) (string, error)
	Download(ctx context.Context, key string) (*backup.Snapshot, error)
}

type ContactService interface {
	List(ctx context.Context) ([]models.Contact, error)
	// Find looks a contact up by local id, remote id or local id prefix.
	// Exact matches win over prefixes.
	Find(ctx context.Context, ref string) (*models.Contact, error)
	// Forget deletes the contact Find resolves ref to.
	Forget(ctx context.Context, ref string) (*models.Contact, error)
	Backup(ctx context.Context, ownerID string) (string, error)
	// Restore loads the snapshot stored under key into the contact book and
	// adopts its owner id. It returns the number of contacts written.
	Restore(ctx context.Context, key string) (int, error)
}

type contactService struct {
	db       *sql.DB
	uploader Uploader
}

func NewContactService(db *sql.DB, uploader Uploader) ContactService {
	return &contactService{db: db, uploader: uploader}
}

func (s *contactService) List(ctx context.Context) ([]models.Contact, error) {
	list, err := client.NewRepositories(s.db).Contacts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing contacts: %w", err)
	}
	return list, nil
}

func (s *contactService) Find(ctx context.Context, ref string) (*models.Contact, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, common.ErrorNotFound
	}

	repo := client.NewRepositories(s.db).Contacts
	for _, get := range []func(context.Context, string) (*models.Contact, error){repo.GetByID, repo.GetByRemoteID} {
		c, err := get(ctx, ref)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error finding contact: %w", err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var match *models.Contact
	for i := range list {
		if !strings.HasPrefix(list[i].ID, ref) {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%w: %q matches several contacts", common.ErrorValidation, ref)
		}
		match = &list[i]
	}
	if match == nil {
		return nil, common.ErrorNotFound
	}
	return match, nil
}

func (s *contactService) Forget(ctx context.Context, ref string) (*models.Contact, error) {
	c, err := s.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := client.NewRepositories(s.db).Contacts.DeleteByID(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *contactService) Backup(ctx context.Context, ownerID string) (string, error) {
	list, err := s.List(ctx)
	if err != nil {
		return "", err
	}
	key, err := s.uploader.Upload(ctx, ownerID, list)
	if err != nil {
		return "", fmt.Errorf("error uploading backup: %w", err)
	}
	if err := client.NewRepositories(s.db).Metadata.Set(ctx, metadata.KeyLastBackup, key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *contactService) Restore(ctx context.Context, key string) (int, error) {
	snap, err := s.uploader.Download(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("error downloading backup: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)
		for i := range snap.Contacts {
			c := &snap.Contacts[i]
			// remote_id is unique; a local contact for the same person gives
			// way to the restored one.
			local, err := repos.Contacts.GetByRemoteID(ctx, c.RemoteID)
			switch {
			case errors.Is(err, common.ErrorNotFound):
			case err != nil:
				return err
			case local.ID != c.ID:
				if err := repos.Contacts.DeleteByID(ctx, local.ID); err != nil {
					return err
				}
			}
			if err := repos.Contacts.Save(ctx, c); err != nil {
				return err
			}
		}
		if snap.OwnerID != "" {
			if err := repos.Metadata.Set(ctx, metadata.KeyOwnerID, snap.OwnerID); err != nil {
				return err
			}
		}
		return repos.Metadata.Set(ctx, metadata.KeyLastBackup, key)
	})
	if err != nil {
		return 0, fmt.Errorf("error restoring backup: %w", err)
	}
	return len(snap.Contacts), nil
}
