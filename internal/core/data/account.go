package data

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Account contains the login information specific to each registered user.
type Account struct {
	ID            uint64 `gorm:"primaryKey"`
	Username      string `gorm:"unique; not null"`
	Password      string `gorm:"not null"`
	Nickname      string
	SecurityLevel int  `gorm:"default:0"`
	Banned        bool `gorm:"default:false"`
	// Zero value means a ban (if any) never expires.
	BanExpiresAt time.Time
	CreatedAt    time.Time
	DeletedAt    gorm.DeletedAt
}

// IsBanned reports whether the account is suspended as of now.
func (a *Account) IsBanned(now time.Time) bool {
	if !a.Banned {
		return false
	}
	return a.BanExpiresAt.IsZero() || a.BanExpiresAt.After(now)
}

// FindAccountByID searches for an account with the specified id, returning the
// *Account instance if found or nil if there is no match.
func FindAccountByID(db *gorm.DB, id uint64) (*Account, error) {
	var account Account
	err := db.First(&account, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

// FindAccountByUsername searches for an account with the specified username,
// returning the *Account instance if found or nil if there is no match.
func FindAccountByUsername(db *gorm.DB, username string) (*Account, error) {
	var account Account
	err := db.Where("username = ?", username).First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &account, nil
}

// CreateAccount persists the Account record to the database.
func CreateAccount(db *gorm.DB, account *Account) error {
	return db.Create(account).Error
}

// UpdateAccountNickname persists only the nickname of the given account.
func UpdateAccountNickname(db *gorm.DB, account *Account, nickname string) error {
	if err := db.Model(account).Update("nickname", nickname).Error; err != nil {
		return err
	}
	account.Nickname = nickname
	return nil
}

// DeleteAccount soft-deletes an Account record from the database.
func DeleteAccount(db *gorm.DB, account *Account) error {
	return db.Delete(account).Error
}
