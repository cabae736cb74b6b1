// Package storage keeps uploaded files (company logos) in MongoDB GridFS.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("file not found")

// FileStore stores blobs by bucket and path
type FileStore interface {
	Upload(ctx context.Context, bucket, name string, r io.Reader) (string, error)
	PublicURL(bucket, name string) string
	Download(ctx context.Context, bucket, name string, w io.Writer) error
}

// Connect creates a MongoDB client and checks the connection
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// GridFSStore implements FileStore with one GridFS bucket per name
type GridFSStore struct {
	db      *mongo.Database
	baseURL string
}

// NewGridFSStore creates a store whose public URLs start with baseURL
func NewGridFSStore(db *mongo.Database, baseURL string) *GridFSStore {
	return &GridFSStore{
		db:      db,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// gridfs.Bucket carries per-operation deadlines, so each call gets its own.
func (s *GridFSStore) bucket(name string) (*gridfs.Bucket, error) {
	b, err := gridfs.NewBucket(s.db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", name, err)
	}
	return b, nil
}

// Upload writes r under name and returns the stored path
func (s *GridFSStore) Upload(ctx context.Context, bucket, name string, r io.Reader) (string, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return "", err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetWriteDeadline(deadline); err != nil {
			return "", err
		}
	}

	if _, err := b.UploadFromStream(name, r); err != nil {
		return "", fmt.Errorf("failed to upload %s/%s: %w", bucket, name, err)
	}
	return name, nil
}

// Download streams the newest revision of name into w
func (s *GridFSStore) Download(ctx context.Context, bucket, name string, w io.Writer) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := b.SetReadDeadline(deadline); err != nil {
			return err
		}
	}

	if _, err := b.DownloadToStreamByName(name, w); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to download %s/%s: %w", bucket, name, err)
	}
	return nil
}

// PublicURL is where the API serves the file
func (s *GridFSStore) PublicURL(bucket, name string) string {
	return PublicURL(s.baseURL, bucket, name)
}

// PublicURL builds "<base>/storage/<bucket>/<name>".
func PublicURL(baseURL, bucket, name string) string {
	return strings.TrimRight(baseURL, "/") + "/storage/" + url.PathEscape(bucket) + "/" + url.PathEscape(name)
}

// LogoPath names an uploaded logo "<unix millis>-<file name>".
func LogoPath(now time.Time, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		base = "logo"
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), base)
}
