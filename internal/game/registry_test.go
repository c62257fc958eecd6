package game

import (
	"errors"
	"testing"

	"github.com/slipgate-emu/slipgate/internal/core/data"
)

func registryPlayer(id uint64) *Player {
	account := &data.Account{ID: id, Username: "user", Nickname: "user"}
	return NewPlayer(account, &data.PlayerRecord{AccountID: id}, nil, nil, nil)
}

func TestRegistry_AddRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	p := registryPlayer(1)

	if err := r.Add(p); err != nil {
		t.Fatalf("first add failed: %s", err)
	}
	if err := r.Add(registryPlayer(1)); !errors.Is(err, ErrAlreadyOnline) {
		t.Errorf("expected ErrAlreadyOnline, got %v", err)
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 player, got %d", r.Count())
	}
}

func TestRegistry_RemoveIsIdentityChecked(t *testing.T) {
	r := NewRegistry()
	first := registryPlayer(1)
	if err := r.Add(first); err != nil {
		t.Fatalf("add failed: %s", err)
	}

	// A relogin replaces the entry; the stale player's removal must not
	// evict the replacement.
	r.Remove(first)
	second := registryPlayer(1)
	if err := r.Add(second); err != nil {
		t.Fatalf("re-add failed: %s", err)
	}
	r.Remove(first)

	if got := r.Get(1); got != second {
		t.Error("stale removal evicted the replacement player")
	}
}

func TestRegistry_Kick(t *testing.T) {
	r := NewRegistry()
	p := registryPlayer(1)
	if err := r.Add(p); err != nil {
		t.Fatalf("add failed: %s", err)
	}

	if kicked := r.Kick(1); kicked != p {
		t.Error("kick did not return the registered player")
	}
	if r.Get(1) != nil {
		t.Error("player still registered after kick")
	}
	if r.Kick(1) != nil {
		t.Error("second kick should return nil")
	}
}
