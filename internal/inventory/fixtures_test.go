package inventory

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ramonehamilton/carddex/internal/catalog"
	"github.com/ramonehamilton/carddex/internal/events"
	"github.com/ramonehamilton/carddex/internal/storage"
)

type fakeCatalog struct {
	mu        sync.Mutex
	cards     map[string]*catalog.CardDetail
	sets      map[string]*catalog.SetDetail
	failCards map[string]error
	cardCalls map[string]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		cards:     make(map[string]*catalog.CardDetail),
		sets:      make(map[string]*catalog.SetDetail),
		failCards: make(map[string]error),
		cardCalls: make(map[string]int),
	}
}

func (f *fakeCatalog) addCard(id, name, setID, category string) {
	cat := category
	f.cards[id] = &catalog.CardDetail{
		ID:       id,
		LocalID:  id[len(setID)+1:],
		Name:     name,
		Category: &cat,
		HP:       catalog.FlexInt{Value: 60, Valid: true},
		Set:      catalog.SetBrief{ID: setID, Name: "Set " + setID},
	}
}

func (f *fakeCatalog) GetCard(_ context.Context, id string) (*catalog.CardDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cardCalls[id]++
	if err, ok := f.failCards[id]; ok {
		return nil, err
	}
	card, ok := f.cards[id]
	if !ok {
		return nil, &catalog.Error{Kind: catalog.KindNotFound, StatusCode: http.StatusNotFound}
	}
	copied := *card
	return &copied, nil
}

func (f *fakeCatalog) GetSet(_ context.Context, id string) (*catalog.SetDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[id]
	if !ok {
		return nil, &catalog.Error{Kind: catalog.KindNotFound, StatusCode: http.StatusNotFound}
	}
	return set, nil
}

func (f *fakeCatalog) calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cardCalls[id]
}

var errCatalogDown = errors.New("connection reset")

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *storage.Service, *fakeCatalog, *recorder) {
	t.Helper()

	store := storage.NewTestService(t)
	source := newFakeCatalog()
	source.addCard("sv01-001", "Sprigatito", "sv01", "Pokemon")
	source.addCard("sv01-002", "Floragato", "sv01", "Pokemon")
	source.addCard("sv01-196", "Ultra Ball", "sv01", "Trainer")
	total := 258
	source.sets["sv01"] = &catalog.SetDetail{
		ID:          "sv01",
		Name:        "Scarlet & Violet",
		CardCount:   catalog.CardCount{Official: 198, Total: &total},
		ReleaseDate: "2023-03-31",
		Serie:       &catalog.SerieBrief{ID: "sv", Name: "Scarlet & Violet"},
	}

	rec := &recorder{}
	dispatcher := events.NewDispatcher(nil)
	dispatcher.Register(&events.FuncObserver{ObserverName: "recorder", Fn: func(e events.Event) error {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		rec.events = append(rec.events, e)
		return nil
	}})

	svc := NewService(store, source, Config{BulkConcurrency: 2},
		WithEvents(dispatcher),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, store, source, rec
}
