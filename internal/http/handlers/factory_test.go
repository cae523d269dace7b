package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/roamio/tours-api/internal/apperr"
	"github.com/roamio/tours-api/internal/domain"
	"github.com/roamio/tours-api/internal/http/handlers"
	"github.com/roamio/tours-api/internal/http/response"
	"github.com/roamio/tours-api/internal/listing"
)

// ---------- Mocks ----------

type mockTourStore struct {
	nextID int64
	tours  map[int64]*domain.Tour
}

func newMockTourStore() *mockTourStore {
	return &mockTourStore{nextID: 1, tours: make(map[int64]*domain.Tour)}
}

func (m *mockTourStore) Insert(_ context.Context, req *domain.CreateTourRequest) (*domain.Tour, error) {
	tour := &domain.Tour{
		ID:         m.nextID,
		Title:      req.Title,
		Days:       req.Days,
		Price:      req.Price,
		Places:     req.Places,
		Inclusions: req.Inclusions,
		ImgLink:    req.ImgLink,
	}
	m.tours[m.nextID] = tour
	m.nextID++
	return tour, nil
}

func (m *mockTourStore) FindByID(_ context.Context, id int64) (*domain.Tour, error) {
	tour, ok := m.tours[id]
	if !ok {
		return nil, apperr.NotFound("No tour found with that ID")
	}
	return tour, nil
}

func (m *mockTourStore) FindAll(_ context.Context, q listing.Query) ([]domain.Tour, error) {
	var out []domain.Tour
	for id := int64(1); id < m.nextID; id++ {
		if tour, ok := m.tours[id]; ok {
			out = append(out, *tour)
		}
	}
	return out, nil
}

func (m *mockTourStore) UpdateByID(_ context.Context, id int64, patch *domain.UpdateTourRequest) (*domain.Tour, error) {
	tour, ok := m.tours[id]
	if !ok {
		return nil, apperr.NotFound("No tour found with that ID")
	}
	if patch.Price != nil {
		tour.Price = *patch.Price
	}
	if patch.Title != nil {
		tour.Title = *patch.Title
	}
	return tour, nil
}

func (m *mockTourStore) DeleteByID(_ context.Context, id int64) error {
	if _, ok := m.tours[id]; !ok {
		return apperr.NotFound("No tour found with that ID")
	}
	delete(m.tours, id)
	return nil
}

// ---------- Test Setup ----------

func setupCrudServer(store *mockTourStore) *httptest.Server {
	r := chi.NewRouter()
	r.Get("/", response.Handle(handlers.GetAll[domain.Tour](store)))
	r.Post("/", response.Handle(handlers.CreateOne[domain.Tour, domain.CreateTourRequest](store)))
	r.Get("/{id}", response.Handle(handlers.GetOne[domain.Tour](store)))
	r.Patch("/{id}", response.Handle(handlers.UpdateOne[domain.Tour, domain.UpdateTourRequest](store)))
	r.Delete("/{id}", response.Handle(handlers.DeleteOne(store)))
	return httptest.NewServer(r)
}

func seedTour(t *testing.T, store *mockTourStore, title string, price float64) *domain.Tour {
	t.Helper()
	tour, err := store.Insert(context.Background(), &domain.CreateTourRequest{
		Title:      title,
		Days:       5,
		Price:      price,
		Places:     []string{"Kandy"},
		Inclusions: []string{"Transport"},
		ImgLink:    "https://img.example.com/a.jpg",
	})
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return tour
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON body: %v", err)
	}
	return body
}

// ---------- Tests ----------

func TestCrud_CreateAndGet_Success(t *testing.T) {
	store := newMockTourStore()
	server := setupCrudServer(store)
	defer server.Close()

	payload := map[string]any{
		"title":      "Hill Country Escape",
		"days":       5,
		"price":      45000,
		"places":     []string{"Ella", "Kandy"},
		"inclusions": []string{"Transport", "Hotel"},
		"imglink":    "https://img.example.com/hill.jpg",
	}
	buf, _ := json.Marshal(payload)
	resp, err := http.Post(server.URL+"/", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["status"] != "success" {
		t.Fatalf("Unexpected status: %v", body["status"])
	}
	created := body["data"].(map[string]any)
	if created["title"] != "Hill Country Escape" {
		t.Fatalf("Unexpected data: %v", created)
	}

	resp, err = http.Get(fmt.Sprintf("%s/%v", server.URL, created["id"]))
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestCrud_CreateInvalidBody_BadRequest(t *testing.T) {
	store := newMockTourStore()
	server := setupCrudServer(store)
	defer server.Close()

	// price below the floor, title too short
	payload := map[string]any{
		"title":      "Short",
		"days":       5,
		"price":      10,
		"places":     []string{"Ella"},
		"inclusions": []string{"Transport"},
		"imglink":    "https://img.example.com/x.jpg",
	}
	buf, _ := json.Marshal(payload)
	resp, err := http.Post(server.URL+"/", "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["status"] != "error" {
		t.Fatalf("Unexpected status: %v", body["status"])
	}
	if len(store.tours) != 0 {
		t.Fatal("Invalid input must not be stored")
	}
}

func TestCrud_GetMissing_NotFound(t *testing.T) {
	server := setupCrudServer(newMockTourStore())
	defer server.Close()

	resp, err := http.Get(server.URL + "/99")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", resp.StatusCode)
	}
	body := decodeEnvelope(t, resp)
	if body["message"] != "No tour found with that ID" {
		t.Fatalf("Unexpected message: %v", body["message"])
	}
}

func TestCrud_GetInvalidID_BadRequest(t *testing.T) {
	server := setupCrudServer(newMockTourStore())
	defer server.Close()

	for _, id := range []string{"abc", "-1", "0"} {
		resp, err := http.Get(server.URL + "/" + id)
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("Expected 400 for id %q, got %d", id, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestCrud_GetAll_ResultsCount(t *testing.T) {
	store := newMockTourStore()
	seedTour(t, store, "Hill Country Escape", 45000)
	seedTour(t, store, "Southern Coast Drift", 32000)
	server := setupCrudServer(store)
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body := decodeEnvelope(t, resp)
	if body["results"] != float64(2) {
		t.Fatalf("Expected results=2, got %v", body["results"])
	}
}

func TestCrud_GetAll_FieldProjection(t *testing.T) {
	store := newMockTourStore()
	seedTour(t, store, "Hill Country Escape", 45000)
	server := setupCrudServer(store)
	defer server.Close()

	resp, err := http.Get(server.URL + "/?fields=title,price")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body := decodeEnvelope(t, resp)
	items := body["data"].([]any)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]any)
	for _, key := range []string{"id", "title", "price"} {
		if _, ok := item[key]; !ok {
			t.Fatalf("Expected key %q in projected item: %v", key, item)
		}
	}
	if _, ok := item["days"]; ok {
		t.Fatalf("Unselected key leaked into projection: %v", item)
	}
}

func TestCrud_UpdateAndDelete(t *testing.T) {
	store := newMockTourStore()
	tour := seedTour(t, store, "Hill Country Escape", 45000)
	server := setupCrudServer(store)
	defer server.Close()

	buf, _ := json.Marshal(map[string]any{"price": 50000})
	req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/%d", server.URL, tour.ID), bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	if store.tours[tour.ID].Price != 50000 {
		t.Fatalf("Patch not applied: %v", store.tours[tour.ID].Price)
	}

	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/%d", server.URL, tour.ID), nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	if len(store.tours) != 0 {
		t.Fatal("Tour not deleted")
	}
}

func TestCrud_UpdateInvalidPatch_BadRequest(t *testing.T) {
	store := newMockTourStore()
	tour := seedTour(t, store, "Hill Country Escape", 45000)
	server := setupCrudServer(store)
	defer server.Close()

	buf, _ := json.Marshal(map[string]any{"price": 5})
	req, _ := http.NewRequest(http.MethodPatch, fmt.Sprintf("%s/%d", server.URL, tour.ID), bytes.NewReader(buf))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PATCH failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
	resp.Body.Close()
	if store.tours[tour.ID].Price != 45000 {
		t.Fatal("Invalid patch must not be applied")
	}
}
