package data

import "time"

// PlayerItem is one owned inventory entry.
type PlayerItem struct {
	ID         uint64 `gorm:"primaryKey"`
	AccountID  uint64 `gorm:"index; not null"`
	ItemNumber uint32
	Count      uint32
	// Zero value means the item never expires.
	ExpireAt  time.Time
	CreatedAt time.Time
}

// DenyEntry is one row of an account's deny (block) list.
type DenyEntry struct {
	ID        uint64 `gorm:"primaryKey"`
	AccountID uint64 `gorm:"index; not null"`
	DenyID    uint64 `gorm:"not null"`
	Nickname  string
}
