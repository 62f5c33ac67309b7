package catalog

import (
	"testing"
	"time"
)

func TestAcceptCatalogRejectsOlderVersions(t *testing.T) {
	r := NewRegistry(time.Minute)

	if !r.AcceptCatalog("term-1", 5, 10, 3) {
		t.Fatal("first report rejected")
	}
	if r.AcceptCatalog("term-1", 4, 10, 3) {
		t.Fatal("older version accepted")
	}
	if !r.AcceptCatalog("term-1", 5, 12, 3) {
		t.Fatal("same version rejected")
	}
	if !r.AcceptCatalog("term-1", 6, 12, 3) {
		t.Fatal("newer version rejected")
	}

	state, ok := r.GetState("term-1")
	if !ok {
		t.Fatal("state missing")
	}
	if state.CatalogVersion != 6 || state.ContactCount != 12 {
		t.Fatalf("state = %+v", state)
	}
}

func TestAcceptCatalogUnversionedAlwaysAccepted(t *testing.T) {
	r := NewRegistry(time.Minute)

	r.AcceptCatalog("term-1", 5, 1, 1)
	if !r.AcceptCatalog("term-1", 0, 2, 2) {
		t.Fatal("unversioned report rejected")
	}
	state, _ := r.GetState("term-1")
	if state.CatalogVersion != 5 {
		t.Fatalf("version = %d, want 5 retained", state.CatalogVersion)
	}
	if state.ContactCount != 2 {
		t.Fatalf("contacts = %d, want 2", state.ContactCount)
	}
}

func TestListOnlineSkipsOfflineTerminals(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Touch("term-1")
	r.Touch("term-2")
	r.SetOnline("term-2", false)

	online := r.ListOnline()
	if len(online) != 1 || online[0].TerminalID != "term-1" {
		t.Fatalf("online = %+v", online)
	}
}

func TestStateExpiresAfterTTL(t *testing.T) {
	r := NewRegistry(10 * time.Millisecond)
	r.Touch("term-1")

	time.Sleep(30 * time.Millisecond)
	if _, ok := r.GetState("term-1"); ok {
		t.Fatal("expired state still returned")
	}
	if got := r.ListOnline(); len(got) != 0 {
		t.Fatalf("online = %+v, want empty", got)
	}
}
