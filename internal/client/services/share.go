package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/factshare/internal/client/client"
	"github.com/dmitrijs2005/factshare/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/factshare/internal/logging"
	"github.com/dmitrijs2005/factshare/internal/share"
	"github.com/google/uuid"
)

type ShareService interface {
	OwnerID(ctx context.Context) (string, error)
	// Settings returns every stored client setting, owner id included.
	Settings(ctx context.Context) (map[string]string, error)
	Share(ctx context.Context, p *Profile) (*ShareResult, error)
}

// ShareResult is a ready-to-distribute share. Link is the short link when the
// registry minted one, otherwise the long link carrying the whole token.
type ShareResult struct {
	Token     string
	Link      string
	Short     bool
	ExpiresAt time.Time
	Length    int
	Oversize  bool
	Facts     int
}

type shareService struct {
	db      *sql.DB
	codec   *share.Codec
	aliases client.AliasClient
	origin  string
	log     logging.Logger
	now     func() time.Time
}

// NewShareService builds a ShareService. aliases may be nil, in which case
// only long links are produced.
func NewShareService(db *sql.DB, codec *share.Codec, aliases client.AliasClient, origin string, log logging.Logger) ShareService {
	return &shareService{
		db:      db,
		codec:   codec,
		aliases: aliases,
		origin:  origin,
		log:     log.With("module", "share"),
		now:     time.Now,
	}
}

// OwnerID returns the id this installation shares under, creating it on
// first use. Receivers merge on it, so it must never change.
func (s *shareService) OwnerID(ctx context.Context) (string, error) {
	id, err := client.NewRepositories(s.db).Metadata.GetOrCreate(ctx, metadata.KeyOwnerID, uuid.NewString)
	if err != nil {
		return "", fmt.Errorf("owner id: %w", err)
	}
	return id, nil
}

func (s *shareService) Settings(ctx context.Context) (map[string]string, error) {
	if _, err := s.OwnerID(ctx); err != nil {
		return nil, err
	}
	return client.NewRepositories(s.db).Metadata.List(ctx)
}

func (s *shareService) Share(ctx context.Context, p *Profile) (*ShareResult, error) {
	ownerID, err := s.OwnerID(ctx)
	if err != nil {
		return nil, err
	}

	payload := s.codec.Sanitize(p.payload(ownerID, s.now().UnixMilli()))
	enc, err := s.codec.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	if enc.Oversize {
		s.log.Warn(ctx, "token exceeds the reliable QR size", "length", enc.Length, "limit", share.SoftTokenLength)
	}

	res := &ShareResult{
		Token:    enc.Token,
		Link:     share.LongLink(s.origin, enc.Token),
		Length:   enc.Length,
		Oversize: enc.Oversize,
		Facts:    payload.FactCount(),
	}

	if s.aliases == nil {
		return res, nil
	}
	alias, err := s.aliases.MintAlias(ctx, enc.Token)
	if err != nil {
		s.log.Warn(ctx, "alias mint failed, using long link", "error", err)
		return res, nil
	}

	res.Link = share.ShortLink(s.origin, alias.Slug)
	res.Short = true
	res.ExpiresAt = alias.ExpiresAt
	return res, nil
}
