package repository_test

import (
	"context"
	"testing"

	"github.com/ramonehamilton/carddex/internal/storage/models"
)

func TestSetRepository_UpsertGetList(t *testing.T) {
	repos := setupRepos(t)
	ctx := context.Background()

	set := &models.Set{
		ID:           "sv03.5",
		Name:         "151",
		Series:       "Scarlet & Violet",
		PrintedTotal: 165,
		Total:        207,
		ReleaseDate:  "2023-09-22",
		LogoURL:      strPtr("https://assets.tcgdex.net/en/sv/sv03.5/logo"),
	}
	if err := repos.Sets.Upsert(ctx, set); err != nil {
		t.Fatalf("failed to upsert set: %v", err)
	}

	set.Total = 210
	if err := repos.Sets.Upsert(ctx, set); err != nil {
		t.Fatalf("failed to upsert set again: %v", err)
	}

	got, err := repos.Sets.GetByID(ctx, "sv03.5")
	if err != nil {
		t.Fatalf("failed to get set: %v", err)
	}
	if got == nil || got.Total != 210 || got.PrintedTotal != 165 {
		t.Errorf("unexpected set: %+v", got)
	}
	if got.LogoURL == nil || got.SymbolURL != nil {
		t.Errorf("optional URLs not round-tripped: %+v", got)
	}

	older := &models.Set{ID: "sv01", Name: "Scarlet & Violet", Series: "Scarlet & Violet", ReleaseDate: "2023-03-31"}
	if err := repos.Sets.Upsert(ctx, older); err != nil {
		t.Fatal(err)
	}

	sets, err := repos.Sets.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 2 || sets[0].ID != "sv03.5" {
		t.Errorf("expected newest release first, got %+v", sets)
	}

	if err := repos.Sets.Delete(ctx, "sv01"); err != nil {
		t.Fatal(err)
	}
	got, _ = repos.Sets.GetByID(ctx, "sv01")
	if got != nil {
		t.Error("set should be deleted")
	}
}
