package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// PlayerRecord holds the persistent, per-account game state. It is loaded
// once at login, cached on the in-memory player for the session's lifetime,
// and written back by the maintenance loop and on disconnect.
type PlayerRecord struct {
	AccountID        uint64 `gorm:"primaryKey"`
	Level            int
	TotalExperience  uint64
	PEN              uint
	AP               uint
	TotalWins        uint
	TotalLosses      uint
	PlayTimeSeconds  uint64
	CurrentCharacter int
	// Zero means the player belongs to no club.
	ClubID    uint
	UpdatedAt time.Time
}

// FindPlayerRecord returns the record for the given account or nil if the
// account has never connected to this server before.
func FindPlayerRecord(db *gorm.DB, accountID uint64) (*PlayerRecord, error) {
	var record PlayerRecord
	err := db.Where("account_id = ?", accountID).First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &record, nil
}

// CreatePlayerRecord persists a first-login record for an account.
func CreatePlayerRecord(db *gorm.DB, record *PlayerRecord) error {
	return db.Create(record).Error
}

// SavePlayerRecord writes the full record back to the database.
func SavePlayerRecord(db *gorm.DB, record *PlayerRecord) error {
	return db.Save(record).Error
}

// FindPlayerItems loads the inventory for an account.
func FindPlayerItems(db *gorm.DB, accountID uint64) ([]PlayerItem, error) {
	var items []PlayerItem
	if err := db.Where("account_id = ?", accountID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindDenyEntries loads the deny list for an account. The snapshot is
// delivered to the player's chat session when it attaches.
func FindDenyEntries(db *gorm.DB, accountID uint64) ([]DenyEntry, error) {
	var entries []DenyEntry
	if err := db.Where("account_id = ?", accountID).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateDenyEntry adds a player to an account's deny list.
func CreateDenyEntry(db *gorm.DB, entry *DenyEntry) error {
	return db.Create(entry).Error
}

// DeleteDenyEntry removes a player from an account's deny list.
func DeleteDenyEntry(db *gorm.DB, accountID, denyID uint64) error {
	return db.Where("account_id = ? AND deny_id = ?", accountID, denyID).Delete(&DenyEntry{}).Error
}
