package kvstore

import (
	"context"
	"errors"

	"github.com/lojinha-labs/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Gorm persists entries in the kv_entries table through the shared GORM
// connection. It is the production Store.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps the provided connection.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := g.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry.Value, true, nil
}

func (g *Gorm) Put(ctx context.Context, key string, value []byte) error {
	entry := models.KVEntry{Key: key, Value: value}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&models.KVEntry{}, "key = ?", key).Error
}
