package models

import "time"

// KVEntry is the single persisted table: one JSON document per storefront
// key (session, credentials, products, cart, orders, admin flags).
type KVEntry struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     []byte    `gorm:"column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name used by the goose migrations.
func (KVEntry) TableName() string {
	return "kv_entries"
}
