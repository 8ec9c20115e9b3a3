package store

import (
	"context"
	"errors"
	"strconv"

	"lernplan_backend/internal/model"
	"lernplan_backend/internal/util"

	"gorm.io/gorm"
)

// DatabaseStore hält das Snapshot in einer versionierten Tabellenzeile.
// Das bedingte UPDATE auf die erwartete Version macht dieses Backend zum
// einzigen mit serverseitig atomarem Compare-and-Swap.
type DatabaseStore struct {
	db  *gorm.DB
	key string
}

func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db, key: "lernplan"}
}

func (s *DatabaseStore) Name() string { return "database" }

func (s *DatabaseStore) Fetch(ctx context.Context) ([]byte, string, error) {
	var snap model.DocumentSnapshot
	err := s.db.WithContext(ctx).Where("doc_key = ?", s.key).First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", util.ErrStoreNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return []byte(snap.Content), strconv.FormatInt(snap.Version, 10), nil
}

func (s *DatabaseStore) CompareAndSwap(ctx context.Context, expected string, content []byte) (string, error) {
	if expected == "" {
		snap := model.DocumentSnapshot{
			Key:     s.key,
			Content: string(content),
			Version: 1,
		}
		if err := s.db.WithContext(ctx).Create(&snap).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", util.ErrStoreConflict
			}
			return "", err
		}
		return "1", nil
	}

	version, err := strconv.ParseInt(expected, 10, 64)
	if err != nil {
		return "", util.ErrStoreConflict
	}

	res := s.db.WithContext(ctx).
		Model(&model.DocumentSnapshot{}).
		Where("doc_key = ? AND version = ?", s.key, version).
		Updates(map[string]interface{}{
			"content": string(content),
			"version": version + 1,
		})
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", util.ErrStoreConflict
	}
	return strconv.FormatInt(version+1, 10), nil
}
