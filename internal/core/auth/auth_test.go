package auth

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/slipgate-emu/slipgate/internal/core/data"
)

func setUpDatabase(t *testing.T) *gorm.DB {
	testDBFile := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(testDBFile))
	if err != nil {
		t.Fatalf("error initializing test database: %s", err)
	}
	if err = data.Migrate(db); err != nil {
		t.Fatalf("error auto migrating db: %s", err)
	}
	return db
}

func TestHashPassword(t *testing.T) {
	password := "password"
	hashed := HashPassword(password)

	if password == hashed {
		t.Fatalf("expected hashed password not to equal password")
	}

	for i := 0; i < 10; i++ {
		if h := HashPassword(password); hashed != h {
			t.Fatalf("password hashing is non-deterministic (expected %s, got %s)", hashed, h)
		}
	}
}

func TestVerifyAccount(t *testing.T) {
	db := setUpDatabase(t)

	if _, err := CreateAccount(db, "test", "test"); err != nil {
		t.Fatalf("error creating test account: %s", err)
	}
	banned := &data.Account{
		Username: "banned",
		Password: HashPassword("test"),
		Banned:   true,
	}
	if err := data.CreateAccount(db, banned); err != nil {
		t.Fatalf("error creating banned account: %s", err)
	}
	expired := &data.Account{
		Username:     "paroled",
		Password:     HashPassword("test"),
		Banned:       true,
		BanExpiresAt: time.Now().Add(-time.Hour),
	}
	if err := data.CreateAccount(db, expired); err != nil {
		t.Fatalf("error creating expired-ban account: %s", err)
	}

	tests := []struct {
		name      string
		username  string
		password  string
		wantedErr error
	}{
		{"happy path", "test", "test", nil},
		{"unknown account", "missing", "test", ErrInvalidCredentials},
		{"wrong password", "test", "nope", ErrInvalidCredentials},
		{"banned account", "banned", "test", ErrAccountBanned},
		{"expired ban", "paroled", "test", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := VerifyAccount(db, tt.username, tt.password)
			if !errors.Is(err, tt.wantedErr) {
				t.Fatalf("VerifyAccount() error = %v, want %v", err, tt.wantedErr)
			}
			if tt.wantedErr == nil && account == nil {
				t.Fatal("VerifyAccount() returned no account on success")
			}
		})
	}
}

func TestTokenChainIsDeterministic(t *testing.T) {
	first := DeriveLoginToken("test", HashPassword("test"), "20240102150405")
	second := DeriveLoginToken("test", HashPassword("test"), "20240102150405")
	if first != second {
		t.Fatalf("login token derivation is non-deterministic (%s != %s)", first, second)
	}

	if DeriveLoginToken("test", HashPassword("test"), "20240102150406") == first {
		t.Error("expected a different timestamp to produce a different token")
	}

	secondary := DeriveSecondaryToken("test", HashPassword("test"), "20240102150405")
	if secondary == first {
		t.Error("expected the secondary token to differ from the login token")
	}
}
