package data

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestPlayerRecordLifecycle(t *testing.T) {
	db := setUpDatabase(t)

	record, err := FindPlayerRecord(db, 42)
	if err != nil {
		t.Fatalf("FindPlayerRecord() error = %v", err)
	}
	if record != nil {
		t.Fatalf("expected no record before first login, got %+v", record)
	}

	created := &PlayerRecord{
		AccountID:       42,
		Level:           1,
		TotalExperience: 0,
		PEN:             5000,
		AP:              0,
	}
	if err := CreatePlayerRecord(db, created); err != nil {
		t.Fatalf("CreatePlayerRecord() error = %v", err)
	}

	created.Level = 2
	created.TotalExperience = 1200
	created.TotalWins = 1
	if err := SavePlayerRecord(db, created); err != nil {
		t.Fatalf("SavePlayerRecord() error = %v", err)
	}

	record, err = FindPlayerRecord(db, 42)
	if err != nil {
		t.Fatalf("FindPlayerRecord() error = %v", err)
	}

	opts := cmpopts.IgnoreFields(PlayerRecord{}, "UpdatedAt")
	if diff := cmp.Diff(created, record, opts); diff != "" {
		t.Errorf("record did not match expected; diff:\n%s", diff)
	}
}

func TestDenyEntries(t *testing.T) {
	db := setUpDatabase(t)

	entries := []DenyEntry{
		{AccountID: 1, DenyID: 7, Nickname: "Griefer"},
		{AccountID: 1, DenyID: 8, Nickname: "Spammer"},
		{AccountID: 2, DenyID: 7, Nickname: "Griefer"},
	}
	for i := range entries {
		if err := CreateDenyEntry(db, &entries[i]); err != nil {
			t.Fatalf("CreateDenyEntry() error = %v", err)
		}
	}

	got, err := FindDenyEntries(db, 1)
	if err != nil {
		t.Fatalf("FindDenyEntries() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 deny entries for account 1, got %d", len(got))
	}

	if err := DeleteDenyEntry(db, 1, 7); err != nil {
		t.Fatalf("DeleteDenyEntry() error = %v", err)
	}

	got, err = FindDenyEntries(db, 1)
	if err != nil {
		t.Fatalf("FindDenyEntries() error = %v", err)
	}
	if len(got) != 1 || got[0].DenyID != 8 {
		t.Fatalf("expected only deny id 8 to remain, got %+v", got)
	}
}

func TestFindPlayerItems(t *testing.T) {
	db := setUpDatabase(t)

	items := []PlayerItem{
		{AccountID: 9, ItemNumber: 1001, Count: 1},
		{AccountID: 9, ItemNumber: 2002, Count: 3},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			t.Fatalf("error seeding item: %v", err)
		}
	}

	got, err := FindPlayerItems(db, 9)
	if err != nil {
		t.Fatalf("FindPlayerItems() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
}
