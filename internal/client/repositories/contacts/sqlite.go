package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/factshare/internal/client/models"
	"github.com/dmitrijs2005/factshare/internal/common"
	"github.com/dmitrijs2005/factshare/internal/dbx"
)

const selectColumns = `id, remote_id, name, avatar, phone, telegram, instagram,
	connected_at, last_updated, groups_json, notes, tags_json, connections_json`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM contacts ORDER BY connected_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var result []models.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate contacts: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM contacts WHERE id = ?`, id)
	return getOne(row)
}

func (r *SQLiteRepository) GetByRemoteID(ctx context.Context, remoteID string) (*models.Contact, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM contacts WHERE remote_id = ?`, remoteID)
	return getOne(row)
}

func (r *SQLiteRepository) Save(ctx context.Context, c *models.Contact) error {
	groups, err := json.Marshal(orEmpty(c.Groups))
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}
	tags, err := json.Marshal(orEmpty(c.Tags))
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	connections, err := json.Marshal(orEmpty(c.Connections))
	if err != nil {
		return fmt.Errorf("failed to encode connections: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, remote_id, name, avatar, phone, telegram, instagram,
			connected_at, last_updated, groups_json, notes, tags_json, connections_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			remote_id = excluded.remote_id,
			name = excluded.name,
			avatar = excluded.avatar,
			phone = excluded.phone,
			telegram = excluded.telegram,
			instagram = excluded.instagram,
			connected_at = excluded.connected_at,
			last_updated = excluded.last_updated,
			groups_json = excluded.groups_json,
			notes = excluded.notes,
			tags_json = excluded.tags_json,
			connections_json = excluded.connections_json
	`, c.ID, c.RemoteID, c.Name, c.Avatar, c.Phone, c.Telegram, c.Instagram,
		c.ConnectedAt.UnixMilli(), c.LastUpdated.UnixMilli(),
		string(groups), c.Notes, string(tags), string(connections))
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return fmt.Errorf("contact %s: %w", c.RemoteID, common.ErrorConflict)
		}
		return fmt.Errorf("failed to save contact %s: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete contact %s: %w", id, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func getOne(row *sql.Row) (*models.Contact, error) {
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	return c, err
}

// scanContact reads one row. Unreadable JSON columns decode as empty values:
// a damaged group list should not hide the rest of the contact.
func scanContact(s scanner) (*models.Contact, error) {
	var (
		c                         models.Contact
		connectedAt, lastUpdated  int64
		groups, tags, connections string
	)
	err := s.Scan(&c.ID, &c.RemoteID, &c.Name, &c.Avatar, &c.Phone, &c.Telegram, &c.Instagram,
		&connectedAt, &lastUpdated, &groups, &c.Notes, &tags, &connections)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan contact: %w", err)
	}

	c.ConnectedAt = time.UnixMilli(connectedAt).UTC()
	c.LastUpdated = time.UnixMilli(lastUpdated).UTC()

	if json.Unmarshal([]byte(groups), &c.Groups) != nil || c.Groups == nil {
		c.Groups = []models.ContactGroup{}
	}
	for i := range c.Groups {
		if c.Groups[i].Facts == nil {
			c.Groups[i].Facts = []models.ContactFact{}
		}
	}
	if json.Unmarshal([]byte(tags), &c.Tags) != nil || c.Tags == nil {
		c.Tags = []string{}
	}
	if json.Unmarshal([]byte(connections), &c.Connections) != nil || len(c.Connections) == 0 {
		c.Connections = nil
	}
	return &c, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
