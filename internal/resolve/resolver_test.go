package resolve

import (
	"testing"

	"voz/internal/domain"
)

func catalog() []domain.Candidate {
	return []domain.Candidate{
		{ID: "1", Label: "João Silva", Payload: "+351911111111"},
		{ID: "2", Label: "João Pedro", Payload: "+351922222222"},
		{ID: "3", Label: "Maria", Payload: "+351933333333"},
	}
}

func TestResolveAmbiguousPartial(t *testing.T) {
	got := Resolve("joão", catalog())
	if got.Status != AwaitSelection {
		t.Fatalf("status=%v, want AwaitSelection", got.Status)
	}
	if len(got.Candidates) != 2 {
		t.Fatalf("candidates=%d, want 2", len(got.Candidates))
	}
	// Sorted by label: "João Pedro" before "João Silva".
	if got.Candidates[0].ID != "2" || got.Candidates[1].ID != "1" {
		t.Fatalf("order=[%s %s], want [2 1]", got.Candidates[0].ID, got.Candidates[1].ID)
	}
}

func TestResolveExactWins(t *testing.T) {
	got := Resolve("joão silva", catalog())
	if got.Status != Resolved || got.Candidate.ID != "1" {
		t.Fatalf("got %+v, want resolved id=1", got)
	}
}

func TestResolveExactNeverMixedWithPartial(t *testing.T) {
	cat := append(catalog(), domain.Candidate{ID: "4", Label: "Maria José"})
	got := Resolve("maria", cat)
	if got.Status != Resolved || got.Candidate.ID != "3" {
		t.Fatalf("got %+v, want the exact match alone, not mixed with partials", got)
	}
}

func TestResolveSinglePartial(t *testing.T) {
	got := Resolve("mar", catalog())
	if got.Status != Resolved || got.Candidate.ID != "3" {
		t.Fatalf("got %+v, want resolved id=3", got)
	}
}

func TestResolveNotFound(t *testing.T) {
	got := Resolve("carlos", catalog())
	if got.Status != NotFound {
		t.Fatalf("status=%v, want NotFound", got.Status)
	}
}

func TestResolveAccentInsensitive(t *testing.T) {
	got := Resolve("JOAO SILVA", catalog())
	if got.Status != Resolved || got.Candidate.ID != "1" {
		t.Fatalf("got %+v, want resolved id=1 ignoring case/accents", got)
	}
}

func TestResolveMultipleExact(t *testing.T) {
	cat := []domain.Candidate{
		{ID: "a", Label: "Ana"},
		{ID: "b", Label: "ANA"},
		{ID: "c", Label: "Ana Luísa"},
	}
	got := Resolve("ana", cat)
	if got.Status != AwaitSelection || len(got.Candidates) != 2 {
		t.Fatalf("got %+v, want the two exact matches only", got)
	}
}
