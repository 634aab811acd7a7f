// Package backup uploads snapshots of the local contact book to S3 or any
// S3-compatible store such as MinIO.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cc "github.com/dmitrijs2005/factshare/internal/client/config"
	"github.com/dmitrijs2005/factshare/internal/client/models"
	"github.com/dmitrijs2005/factshare/internal/cryptox"
)

var (
	ErrDisabled = errors.New("backup bucket is not configured")
	// ErrSealed is returned when a sealed snapshot is read without a passphrase.
	ErrSealed = errors.New("snapshot is sealed, a passphrase is required")
)

// maxSnapshotSize bounds how much of an object Download reads.
const maxSnapshotSize = 64 << 20

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in, optFns...)
	}
)

const snapshotVersion = 1

// Snapshot is the document written to the bucket.
type Snapshot struct {
	Version   int              `json:"version"`
	OwnerID   string           `json:"ownerId"`
	CreatedAt time.Time        `json:"createdAt"`
	Contacts  []models.Contact `json:"contacts"`
}

type Uploader struct {
	cfg cc.Backup
	now func() time.Time
}

func NewUploader(cfg cc.Backup) *Uploader {
	return &Uploader{cfg: cfg, now: time.Now}
}

// Key returns the object key for a snapshot taken at t. Sealed snapshots
// end in .sealed.json.
func (u *Uploader) Key(ownerID string, t time.Time) string {
	prefix := u.cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	ext := ".json"
	if u.cfg.Passphrase != "" {
		ext = ".sealed.json"
	}
	return fmt.Sprintf("%s%s/%s%s", prefix, ownerID, t.UTC().Format("20060102T150405Z"), ext)
}

// Upload writes the contacts as one JSON object and returns its key.
func (u *Uploader) Upload(ctx context.Context, ownerID string, contacts []models.Contact) (string, error) {
	if u.cfg.Bucket == "" {
		return "", ErrDisabled
	}

	now := u.now()
	if contacts == nil {
		contacts = []models.Contact{}
	}
	body, err := json.Marshal(Snapshot{Version: snapshotVersion, OwnerID: ownerID, CreatedAt: now.UTC(), Contacts: contacts})
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if u.cfg.Passphrase != "" {
		if body, err = seal(body, u.cfg.Passphrase); err != nil {
			return "", fmt.Errorf("seal snapshot: %w", err)
		}
	}

	client, err := u.client(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	key := u.Key(ownerID, now)
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func seal(body []byte, passphrase string) ([]byte, error) {
	sealed, err := cryptox.SealWithPassphrase(body, []byte(passphrase))
	if err != nil {
		return nil, err
	}
	return json.Marshal(sealed)
}

// Unseal decodes a sealed snapshot object.
func Unseal(data []byte, passphrase string) (*Snapshot, error) {
	var sealed cryptox.Sealed
	if err := json.Unmarshal(data, &sealed); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	body, err := cryptox.OpenWithPassphrase(&sealed, []byte(passphrase))
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// Download reads the snapshot stored under key. Keys ending in .sealed.json
// are opened with the configured passphrase.
func (u *Uploader) Download(ctx context.Context, key string) (*Snapshot, error) {
	if u.cfg.Bucket == "" {
		return nil, ErrDisabled
	}
	sealed := strings.HasSuffix(key, ".sealed.json")
	if sealed && u.cfg.Passphrase == "" {
		return nil, ErrSealed
	}

	client, err := u.client(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	out, err := getObject(client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	var snap *Snapshot
	if sealed {
		snap, err = Unseal(data, u.cfg.Passphrase)
	} else {
		snap = &Snapshot{}
		if err = json.Unmarshal(data, snap); err != nil {
			err = fmt.Errorf("decode snapshot: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return snap, nil
}

func (u *Uploader) client(ctx context.Context) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(u.cfg.Region)}
	if u.cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			u.cfg.AccessKeyID, u.cfg.SecretAccessKey, "",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if u.cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(u.cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
