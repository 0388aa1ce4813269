package preferences

import (
	"context"
	"testing"

	"github.com/streamwise/streamwise/internal/testutil"
)

func TestStore_GetDefaultsWhenEmpty(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	user := tdb.CreateUser(t, "empty@example.com")
	store := NewStore(tdb.Queries, testutil.NopLogger())

	prefs, err := store.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if prefs.Version != Version {
		t.Errorf("Version = %d, want %d", prefs.Version, Version)
	}
	if prefs.SkipCounts == nil {
		t.Error("SkipCounts should be initialized")
	}
}

func TestStore_RoundTrip(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	user := tdb.CreateUser(t, "roundtrip@example.com")
	store := NewStore(tdb.Queries, testutil.NopLogger())

	prefs := &Preferences{
		FreeText:     "no musicals please",
		DealBreakers: []string{"gore"},
		SkipCounts:   map[string]int{"603": 1},
	}
	if err := store.Put(context.Background(), user.ID, prefs); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.FreeText != "no musicals please" {
		t.Errorf("FreeText = %q", got.FreeText)
	}
	if len(got.DealBreakers) != 1 || got.DealBreakers[0] != "gore" {
		t.Errorf("DealBreakers = %v", got.DealBreakers)
	}
	if got.SkipCounts["603"] != 1 {
		t.Errorf("SkipCounts = %v", got.SkipCounts)
	}
}

func TestStore_ResetSkip(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	user := tdb.CreateUser(t, "skip@example.com")
	store := NewStore(tdb.Queries, testutil.NopLogger())

	prefs := &Preferences{SkipCounts: map[string]int{"603": 2, "604": 1}}
	if err := store.Put(context.Background(), user.ID, prefs); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if err := store.ResetSkip(context.Background(), user.ID, 603); err != nil {
		t.Fatalf("ResetSkip() error = %v", err)
	}

	got, err := store.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if _, ok := got.SkipCounts["603"]; ok {
		t.Error("skip counter for 603 should be cleared")
	}
	if got.SkipCounts["604"] != 1 {
		t.Errorf("skip counter for 604 = %d, want 1", got.SkipCounts["604"])
	}
}

func TestPreferences_SoftBan(t *testing.T) {
	prefs := &Preferences{SkipCounts: map[string]int{"603": 2, "604": 1, "bad": 5}}

	if !prefs.IsSoftBanned(603) {
		t.Error("603 at count 2 should be soft-banned")
	}
	if prefs.IsSoftBanned(604) {
		t.Error("604 at count 1 should not be soft-banned")
	}

	banned := prefs.SoftBanned()
	if len(banned) != 1 || banned[0] != 603 {
		t.Errorf("SoftBanned() = %v, want [603]", banned)
	}
}

func TestStore_UnparseableBlobResets(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	user := tdb.CreateUser(t, "corrupt@example.com")

	_, err := tdb.Conn.ExecContext(context.Background(),
		"UPDATE users SET preferences = ? WHERE id = ?", "{not json", user.ID)
	if err != nil {
		t.Fatalf("failed to corrupt blob: %v", err)
	}

	store := NewStore(tdb.Queries, testutil.NopLogger())
	prefs, err := store.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(prefs.SkipCounts) != 0 || prefs.FreeText != "" {
		t.Errorf("corrupt blob should reset to defaults, got %+v", prefs)
	}
}
