package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront/internal/addresses"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db/models"
)

type stubAddressService struct {
	input        *addresses.AddressInput
	standardized int64
	suggest      *addresses.SuggestRequest
	err          error
}

func (s *stubAddressService) Create(ctx context.Context, input addresses.AddressInput) (*models.Address, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.input = &input
	return &models.Address{ID: 1, AddressLine1: input.AddressLine1}, nil
}

func (s *stubAddressService) Get(ctx context.Context, id int64) (*models.Address, error) {
	return &models.Address{ID: id}, s.err
}

func (s *stubAddressService) Update(ctx context.Context, id int64, input addresses.AddressInput) (*models.Address, error) {
	s.input = &input
	return &models.Address{ID: id}, s.err
}

func (s *stubAddressService) Delete(ctx context.Context, id int64) error {
	return s.err
}

func (s *stubAddressService) Standardize(ctx context.Context, id int64) (*models.Address, error) {
	s.standardized = id
	standardized := true
	return &models.Address{ID: id, Standardized: &standardized}, s.err
}

func (s *stubAddressService) Suggest(ctx context.Context, req addresses.SuggestRequest) ([]addresses.Suggestion, error) {
	s.suggest = &req
	return []addresses.Suggestion{{PlaceID: "p1", Description: "1 Main St"}}, s.err
}

func TestAdminAddressCreate(t *testing.T) {
	svc := &stubAddressService{}
	body := `{"address_line1":"1 Main St","city":"Tulsa","postal_code":"74103","iso_country_alpha2":"us","phone_primary":{"phone_number":"555-0100"}}`
	rec := httptest.NewRecorder()
	AdminAddressCreate(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/admin/v1/addresses", body, nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.input.PhonePrimary == nil || svc.input.PhonePrimary.Number != "555-0100" {
		t.Fatalf("expected phone forwarded, got %+v", svc.input.PhonePrimary)
	}
	if svc.input.PhoneFax != nil {
		t.Fatal("absent phone slot should stay nil")
	}
}

func TestAdminAddressCreateValidation(t *testing.T) {
	svc := &stubAddressService{}
	body := `{"address_line1":"1 Main St","city":"Tulsa","postal_code":"74103","iso_country_alpha2":"1A"}`
	rec := httptest.NewRecorder()
	AdminAddressCreate(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/admin/v1/addresses", body, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	env := decodeError(t, rec)
	if _, ok := env.Error.Details["iso_country_alpha2"]; !ok {
		t.Fatalf("expected country error, got %v", env.Error.Details)
	}
}

func TestAdminAddressStandardize(t *testing.T) {
	svc := &stubAddressService{}
	rec := httptest.NewRecorder()
	AdminAddressStandardize(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/admin/v1/addresses/6/standardize", "", map[string]string{"addressID": "6"}))
	if rec.Code != http.StatusOK || svc.standardized != 6 {
		t.Fatalf("expected standardize of 6, got %d (%d)", svc.standardized, rec.Code)
	}
}

func TestAddressSuggest(t *testing.T) {
	svc := &stubAddressService{}
	rec := httptest.NewRecorder()
	AddressSuggest(svc, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/api/admin/v1/addresses/suggest?query=1+Main&country=us", "", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.suggest.Query != "1 Main" || svc.suggest.Country != "us" {
		t.Fatalf("unexpected request %+v", svc.suggest)
	}
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{}, "redis": nil}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var payload struct {
		Checks map[string]string `json:"checks"`
	}
	decodeData(t, rec, &payload)
	if payload.Checks["db"] != "ok" || payload.Checks["redis"] != "disabled" {
		t.Fatalf("unexpected checks %v", payload.Checks)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": stubPinger{err: errors.New("down")}}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Error.Details["db"] != "down" {
		t.Fatalf("expected db reported down, got %v", env.Error.Details)
	}
}
