package store

import (
	"bytes"
	"context"
	"io"

	"lernplan_backend/internal/config"
	"lernplan_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore hält das Snapshot als einzelnes Objekt; das ETag dient als
// Versionsmarke. Die Prüfung ist Stat-dann-Put und damit nicht atomar;
// zwischen Vergleich und Schreiben bleibt ein Fenster, nur das
// Datenbank-Backend prüft serverseitig atomar.
type MinioStore struct {
	client *minio.Client
	bucket string
	object string
}

func NewMinioStore(cfg *config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, err
	}

	s := &MinioStore{
		client: client,
		bucket: cfg.MinioBucket,
		object: cfg.MinioObject,
	}
	if s.object == "" {
		s.object = "lernplan.json"
	}

	ctx, cancel := context.WithTimeout(context.Background(), OpTimeout)
	defer cancel()
	exists, err := client.BucketExists(ctx, s.bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *MinioStore) Name() string { return "minio" }

func (s *MinioStore) Fetch(ctx context.Context) ([]byte, string, error) {
	stat, err := s.client.StatObject(ctx, s.bucket, s.object, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", util.ErrStoreNotFound
		}
		return nil, "", err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", err
	}
	return content, stat.ETag, nil
}

func (s *MinioStore) CompareAndSwap(ctx context.Context, expected string, content []byte) (string, error) {
	current := ""
	stat, err := s.client.StatObject(ctx, s.bucket, s.object, minio.StatObjectOptions{})
	switch {
	case err == nil:
		current = stat.ETag
	case minio.ToErrorResponse(err).Code == "NoSuchKey":
	default:
		return "", err
	}

	if current != expected {
		return "", util.ErrStoreConflict
	}

	info, err := s.client.PutObject(ctx, s.bucket, s.object,
		bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", err
	}
	return info.ETag, nil
}
