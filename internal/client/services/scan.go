package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/factshare/internal/client/client"
	"github.com/dmitrijs2005/factshare/internal/client/merge"
	"github.com/dmitrijs2005/factshare/internal/client/models"
	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/dbx"
	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/share"
	"github.com/dmitrijs2005/factshare/internal/share/locator"
)

type ScanService interface {
	Scan(ctx context.Context, raw string) (*ScanResult, error)
}

type ScanResult struct {
	Contact    models.Contact
	WasCreated bool
	AddedFacts int
}

type scanService struct {
	db       *sql.DB
	codec    *share.Codec
	resolver locator.SlugResolver
	log      logging.Logger
	now      func() time.Time
}

// NewScanService builds a ScanService. resolver may be nil; short links then
// fail with locator.ErrNoToken.
func NewScanService(db *sql.DB, codec *share.Codec, resolver locator.SlugResolver, log logging.Logger) ScanService {
	return &scanService{
		db:       db,
		codec:    codec,
		resolver: resolver,
		log:      log.With("module", "scan"),
		now:      time.Now,
	}
}

// Scan turns scanned or pasted text into an updated contact. The contact
// book is read and written in one transaction.
func (s *scanService) Scan(ctx context.Context, raw string) (*ScanResult, error) {
	token, err := locator.Resolve(ctx, raw, s.resolver)
	if err != nil {
		return nil, err
	}

	payload, err := s.codec.Decode(token)
	if err != nil {
		s.log.Info(ctx, "rejected token", "error", err, "length", len(token))
		return nil, err
	}

	var result merge.Result
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repos := client.NewRepositories(tx)

		existing, err := repos.Contacts.GetAll(ctx)
		if err != nil {
			return err
		}
		result = merge.Merge(payload, existing, s.now().UTC())
		return repos.Contacts.Save(ctx, &result.Contact)
	})
	if err != nil {
		return nil, fmt.Errorf("save contact: %w", err)
	}

	s.log.Info(ctx, "contact merged",
		"remote_id", result.Contact.RemoteID, "created", result.WasCreated, "added_facts", result.AddedFacts)

	return &ScanResult{Contact: result.Contact, WasCreated: result.WasCreated, AddedFacts: result.AddedFacts}, nil
}

// ScanMessage explains a Scan failure to the person holding the camera.
func ScanMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, locator.ErrNoToken):
		return "No shared facts found in this code. Try a different code."
	case errors.Is(err, common.ErrorNotFound):
		return "This link has expired. Ask the owner to share again."
	case errors.Is(err, common.ErrorUnavailable):
		return "The link service is unreachable. Try again later or ask for the full code."
	case errors.Is(err, share.ErrFormat), errors.Is(err, share.ErrDecode), errors.Is(err, share.ErrVersion):
		return share.UserMessage(err)
	default:
		return "Something went wrong while saving the contact."
	}
}
