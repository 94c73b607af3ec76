package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/carddex/internal/apperrors"
	"github.com/ramonehamilton/carddex/internal/storage/models"
)

// mockEnergyService keeps an in-memory pool and clamps at zero.
type mockEnergyService struct {
	pool   map[string]int
	err    error
	lastBy int
}

func newMockEnergyService() *mockEnergyService {
	return &mockEnergyService{pool: map[string]int{}}
}

func (m *mockEnergyService) EnergyPool(context.Context) ([]models.BasicEnergy, error) {
	var out []models.BasicEnergy
	for _, t := range models.BasicEnergyTypes {
		out = append(out, models.BasicEnergy{Type: t, Count: m.pool[t]})
	}
	return out, m.err
}

func (m *mockEnergyService) TotalEnergy(context.Context) (int, error) {
	total := 0
	for _, n := range m.pool {
		total += n
	}
	return total, m.err
}

func (m *mockEnergyService) SetEnergy(_ context.Context, energyType string, count int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.pool[energyType] = max(count, 0)
	return m.pool[energyType], nil
}

func (m *mockEnergyService) IncrementEnergy(ctx context.Context, energyType string, by int) (int, error) {
	m.lastBy = by
	return m.SetEnergy(ctx, energyType, m.pool[energyType]+by)
}

func (m *mockEnergyService) DecrementEnergy(ctx context.Context, energyType string, by int) (int, error) {
	m.lastBy = by
	return m.SetEnergy(ctx, energyType, m.pool[energyType]-by)
}

func (m *mockEnergyService) ResetEnergy(_ context.Context, energyType string) error {
	delete(m.pool, energyType)
	return m.err
}

func (m *mockEnergyService) ResetAllEnergy(context.Context) error {
	m.pool = map[string]int{}
	return m.err
}

func (m *mockEnergyService) EnergyTypesOwned(context.Context) ([]string, error) {
	var owned []string
	for _, t := range models.BasicEnergyTypes {
		if m.pool[t] > 0 {
			owned = append(owned, t)
		}
	}
	return owned, m.err
}

// BasicEnergyAvailable pretends decks use two of every type.
func (m *mockEnergyService) BasicEnergyAvailable(_ context.Context, energyType string) (int, error) {
	return m.pool[energyType] - 2, m.err
}

func (m *mockEnergyService) CanAddBasicEnergy(ctx context.Context, energyType string, quantity int) (bool, error) {
	available, err := m.BasicEnergyAvailable(ctx, energyType)
	return quantity <= available, err
}

func energyRouter(h *EnergyHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/energy", h.GetPool)
	r.Delete("/energy", h.ResetAll)
	r.Put("/energy/{energyType}", h.SetCount)
	r.Delete("/energy/{energyType}", h.Reset)
	r.Get("/energy/{energyType}/availability", h.GetAvailability)
	r.Post("/energy/{energyType}/increment", h.Increment)
	r.Post("/energy/{energyType}/decrement", h.Decrement)
	return r
}

func decodeCount(t *testing.T, body []byte) EnergyCountResponse {
	t.Helper()
	var resp struct {
		Data EnergyCountResponse `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("decode: %v (%s)", err, body)
	}
	return resp.Data
}

func TestEnergyHandler_IncrementDefaultsToOne(t *testing.T) {
	svc := newMockEnergyService()
	r := energyRouter(NewEnergyHandler(svc))

	w := serve(r, http.MethodPost, "/energy/Fire/increment", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.lastBy != 1 {
		t.Errorf("by = %d, want 1", svc.lastBy)
	}
	if got := decodeCount(t, w.Body.Bytes()); got.Type != "Fire" || got.Count != 1 {
		t.Errorf("response = %+v", got)
	}

	w = serve(r, http.MethodPost, "/energy/Fire/increment", `{"by":4}`)
	if got := decodeCount(t, w.Body.Bytes()); got.Count != 5 {
		t.Errorf("count after +4 = %d, want 5", got.Count)
	}
}

func TestEnergyHandler_DecrementClampsAtZero(t *testing.T) {
	svc := newMockEnergyService()
	svc.pool["Water"] = 2
	r := energyRouter(NewEnergyHandler(svc))

	w := serve(r, http.MethodPost, "/energy/Water/decrement", `{"by":5}`)
	if got := decodeCount(t, w.Body.Bytes()); got.Count != 0 {
		t.Errorf("count = %d, want 0", got.Count)
	}
}

func TestEnergyHandler_SetCount(t *testing.T) {
	svc := newMockEnergyService()
	r := energyRouter(NewEnergyHandler(svc))

	w := serve(r, http.MethodPut, "/energy/Grass", `{"quantity":12}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if svc.pool["Grass"] != 12 {
		t.Errorf("pool[Grass] = %d, want 12", svc.pool["Grass"])
	}

	w = serve(r, http.MethodPut, "/energy/Grass", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing quantity: status = %d, want 400", w.Code)
	}

	w = serve(r, http.MethodPost, "/energy/Grass/increment", `{"by":-1}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative step: status = %d, want 400", w.Code)
	}
}

func TestEnergyHandler_PoolAndReset(t *testing.T) {
	svc := newMockEnergyService()
	svc.pool["Metal"] = 3
	svc.pool["Darkness"] = 4
	r := energyRouter(NewEnergyHandler(svc))

	w := serve(r, http.MethodGet, "/energy", "")
	var resp struct {
		Data EnergyPoolResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Total != 7 || len(resp.Data.Pool) != len(models.BasicEnergyTypes) {
		t.Errorf("pool response = %+v", resp.Data)
	}
	if got := resp.Data.OwnedTypes; len(got) != 2 || got[0] != "Darkness" || got[1] != "Metal" {
		t.Errorf("owned types = %v, want [Darkness Metal]", got)
	}

	if w := serve(r, http.MethodDelete, "/energy/Metal", ""); w.Code != http.StatusNoContent {
		t.Errorf("reset status = %d", w.Code)
	}
	if svc.pool["Metal"] != 0 || svc.pool["Darkness"] != 4 {
		t.Errorf("reset touched the wrong type: %v", svc.pool)
	}

	if w := serve(r, http.MethodDelete, "/energy", ""); w.Code != http.StatusNoContent {
		t.Errorf("reset all status = %d", w.Code)
	}
	if len(svc.pool) != 0 {
		t.Errorf("pool not cleared: %v", svc.pool)
	}
}

func TestEnergyHandler_UnknownType(t *testing.T) {
	svc := newMockEnergyService()
	svc.err = apperrors.Validation("unknown energy type %q", "Fairy")
	r := energyRouter(NewEnergyHandler(svc))

	w := serve(r, http.MethodPut, "/energy/Fairy", `{"quantity":1}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestEnergyHandler_Availability(t *testing.T) {
	svc := newMockEnergyService()
	svc.pool["Psychic"] = 5
	r := energyRouter(NewEnergyHandler(svc))

	decodeAvailability := func(w *httptest.ResponseRecorder) EnergyAvailabilityResponse {
		t.Helper()
		var resp struct {
			Data EnergyAvailabilityResponse `json:"data"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v (%s)", err, w.Body.String())
		}
		return resp.Data
	}

	got := decodeAvailability(serve(r, http.MethodGet, "/energy/Psychic/availability", ""))
	if got.Available != 3 || got.Quantity != 1 || !got.CanAdd {
		t.Errorf("default quantity: %+v", got)
	}

	got = decodeAvailability(serve(r, http.MethodGet, "/energy/Psychic/availability?quantity=4", ""))
	if got.CanAdd {
		t.Errorf("4 of 3 available should not fit: %+v", got)
	}

	if w := serve(r, http.MethodGet, "/energy/Psychic/availability?quantity=x", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad quantity: status = %d, want 400", w.Code)
	}
}
