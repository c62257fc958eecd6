package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/crc32"
	"time"

	"gorm.io/gorm"

	"github.com/slipgate-emu/slipgate/internal/core/data"
)

var (
	ErrUnknown            = errors.New("an unexpected error occurred, please contact your server administrator")
	ErrInvalidCredentials = errors.New("username/password combination not found")
	ErrAccountBanned      = errors.New("this account has been suspended")
)

// VerifyAccount checks the Accounts table for the specified credentials
// combination and validates that the account is accessible.
func VerifyAccount(db *gorm.DB, username, password string) (*data.Account, error) {
	account, err := data.FindAccountByUsername(db, username)
	if err != nil {
		return nil, ErrUnknown
	}

	if account == nil || account.Password != HashPassword(password) {
		return nil, ErrInvalidCredentials
	} else if account.IsBanned(time.Now()) {
		return nil, ErrAccountBanned
	}

	return account, nil
}

// CreateAccount takes the specified credentials and creates a new record in
// the database, returning either the result or any errors encountered.
func CreateAccount(db *gorm.DB, username, password string) (*data.Account, error) {
	account := &data.Account{
		Username: username,
		Password: HashPassword(password),
	}

	if err := data.CreateAccount(db, account); err != nil {
		return nil, err
	}

	return account, nil
}

// HashPassword returns a version of password with the server's chosen hashing strategy.
func HashPassword(password string) string {
	hash := sha256.New()
	hash.Write([]byte(password))
	return hex.EncodeToString(hash.Sum(nil))
}

// The login token chain is derived with CRC32 checksums over the account's
// credentials. The launcher computes the same chain when it hands a client
// off to this server, so the values here are wire-significant.

// SessionChecksum is the first link of the chain, derived from the stored
// credentials alone.
func SessionChecksum(username, passwordHash string) uint32 {
	return crc32.ChecksumIEEE([]byte(fmt.Sprintf("<%s+%s>", username, passwordHash)))
}

// DeriveLoginToken computes the token the client must present at game login.
// datetime is the client-supplied timestamp string echoed in the login request.
func DeriveLoginToken(username, passwordHash, datetime string) string {
	sessionID := SessionChecksum(username, passwordHash)
	sum := crc32.ChecksumIEEE([]byte(fmt.Sprintf("<%s+%d+%s>", username, sessionID, datetime)))
	return fmt.Sprintf("%08x", sum)
}

// DeriveSecondaryToken computes the second token of the login handshake from
// the first. Both must match for the login to be accepted.
func DeriveSecondaryToken(username, passwordHash, datetime string) string {
	sessionID := SessionChecksum(username, passwordHash)
	loginToken := DeriveLoginToken(username, passwordHash, datetime)
	sum := crc32.ChecksumIEEE([]byte(fmt.Sprintf("<%s+%d>", loginToken, sessionID)))
	return fmt.Sprintf("%08x", sum)
}
