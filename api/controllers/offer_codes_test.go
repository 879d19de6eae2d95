package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront/internal/offercodes"
	"github.com/angelmondragon/storefront/pkg/db/models"
	"github.com/angelmondragon/storefront/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type stubOfferCodeService struct {
	code      *models.OfferCode
	list      []models.OfferCode
	lookedUp  string
	ids       []int64
	createdOn int64
	create    *offercodes.CreateInput
	update    *offercodes.UpdateInput
	redeem    *offercodes.RedeemInput
	deleted   int64
	used      bool
	err       error
}

func (s *stubOfferCodeService) Get(ctx context.Context, id int64) (*models.OfferCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.OfferCode{ID: id, Code: "SPRING10"}, nil
}

func (s *stubOfferCodeService) GetByCode(ctx context.Context, code string) (*models.OfferCode, error) {
	s.lookedUp = code
	if s.err != nil {
		return nil, s.err
	}
	return s.code, nil
}

func (s *stubOfferCodeService) ListByCode(ctx context.Context, code string) ([]models.OfferCode, error) {
	s.lookedUp = code
	return s.list, s.err
}

func (s *stubOfferCodeService) InvalidateOfferCodes(ctx context.Context, codes []models.OfferCode) {}

func (s *stubOfferCodeService) ListByIDs(ctx context.Context, ids []int64) ([]models.OfferCode, error) {
	s.ids = ids
	return s.list, s.err
}

func (s *stubOfferCodeService) Create(ctx context.Context, offerID int64, input offercodes.CreateInput) (*models.OfferCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.createdOn = offerID
	s.create = &input
	return &models.OfferCode{ID: 1, OfferID: offerID, Code: input.Code}, nil
}

func (s *stubOfferCodeService) Update(ctx context.Context, id int64, input offercodes.UpdateInput) (*models.OfferCode, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.update = &input
	return &models.OfferCode{ID: id}, nil
}

func (s *stubOfferCodeService) Delete(ctx context.Context, id int64) error {
	s.deleted = id
	return s.err
}

func (s *stubOfferCodeService) IsUsed(ctx context.Context, id int64) (bool, error) {
	return s.used, s.err
}

func (s *stubOfferCodeService) Redeem(ctx context.Context, code string, input offercodes.RedeemInput) (*models.OfferAudit, error) {
	s.lookedUp = code
	if s.err != nil {
		return nil, s.err
	}
	s.redeem = &input
	return &models.OfferAudit{ID: 77, OfferID: 2, RedeemedDate: time.Now()}, nil
}

func TestOfferCodeLookupHidesRestrictions(t *testing.T) {
	email := "vip@example.com"
	svc := &stubOfferCodeService{code: &models.OfferCode{
		ID:           5,
		Code:         "SPRING10",
		MaxUses:      3,
		EmailAddress: &email,
		Offer: &models.Offer{
			ID:           2,
			Name:         "Spring",
			Type:         enums.OfferTypeOrder,
			DiscountType: enums.OfferDiscountTypePercentOff,
			Value:        decimal.NewFromInt(10),
			StartDate:    time.Now().Add(-time.Hour),
		},
	}}
	rec := httptest.NewRecorder()
	OfferCodeLookup(svc, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/api/v1/offer-codes/spring10", "", map[string]string{"code": " spring10 "}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lookedUp != "spring10" {
		t.Fatalf("expected trimmed code, got %q", svc.lookedUp)
	}
	var view map[string]any
	decodeData(t, rec, &view)
	if _, leaked := view["email_address"]; leaked {
		t.Fatal("email restriction must not be exposed publicly")
	}
	if view["active"] != true {
		t.Fatalf("expected active code, got %v", view["active"])
	}
	offer, ok := view["offer"].(map[string]any)
	if !ok || offer["name"] != "Spring" {
		t.Fatalf("expected offer summary, got %v", view["offer"])
	}
}

func TestOfferCodeLookupNotFound(t *testing.T) {
	svc := &stubOfferCodeService{err: pkgerrors.New(pkgerrors.CodeNotFound, "offer code not found")}
	rec := httptest.NewRecorder()
	OfferCodeLookup(svc, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/api/v1/offer-codes/NOPE", "", map[string]string{"code": "NOPE"}))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestOfferCodeLookupAll(t *testing.T) {
	svc := &stubOfferCodeService{list: []models.OfferCode{{ID: 1, Code: "DUP"}, {ID: 2, Code: "dup"}}}
	rec := httptest.NewRecorder()
	OfferCodeLookupAll(svc, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/api/v1/offer-codes/dup/all", "", map[string]string{"code": "dup"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var views []map[string]any
	decodeData(t, rec, &views)
	if len(views) != 2 {
		t.Fatalf("expected 2 codes, got %d", len(views))
	}
}

func TestOfferCodeRedeem(t *testing.T) {
	svc := &stubOfferCodeService{}
	body := `{"customer_id":42,"email_address":"a@example.com"}`
	rec := httptest.NewRecorder()
	OfferCodeRedeem(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/offer-codes/SPRING10/redeem", body, map[string]string{"code": "SPRING10"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.redeem == nil || svc.redeem.CustomerID == nil || *svc.redeem.CustomerID != 42 {
		t.Fatalf("expected customer forwarded, got %+v", svc.redeem)
	}
	var audit models.OfferAudit
	decodeData(t, rec, &audit)
	if audit.ID != 77 {
		t.Fatalf("unexpected audit %+v", audit)
	}
}

func TestOfferCodeRedeemRejected(t *testing.T) {
	svc := &stubOfferCodeService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "offer code has reached its maximum uses")}
	rec := httptest.NewRecorder()
	OfferCodeRedeem(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/offer-codes/SPRING10/redeem", `{}`, map[string]string{"code": "SPRING10"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
	if env := decodeError(t, rec); env.Error.Message != "offer code has reached its maximum uses" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
}

func TestOfferCodeRedeemRejectsBadIDs(t *testing.T) {
	svc := &stubOfferCodeService{}
	rec := httptest.NewRecorder()
	OfferCodeRedeem(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/v1/offer-codes/SPRING10/redeem", `{"customer_id":0}`, map[string]string{"code": "SPRING10"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAdminOfferCodeCreate(t *testing.T) {
	svc := &stubOfferCodeService{}
	rec := httptest.NewRecorder()
	AdminOfferCodeCreate(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/admin/v1/offers/2/codes", `{"code":"SPRING10","max_uses":5}`, map[string]string{"offerID": "2"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.createdOn != 2 || svc.create.MaxUses != 5 {
		t.Fatalf("unexpected create call offer=%d input=%+v", svc.createdOn, svc.create)
	}

	rec = httptest.NewRecorder()
	AdminOfferCodeCreate(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/admin/v1/offers/2/codes", `{"code":"SPRING 10"}`, map[string]string{"offerID": "2"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected whitespace code to be rejected, got %d", rec.Code)
	}
}

func TestAdminOfferCodeCreateConflict(t *testing.T) {
	svc := &stubOfferCodeService{err: pkgerrors.New(pkgerrors.CodeConflict, "offer code already exists for this offer")}
	rec := httptest.NewRecorder()
	AdminOfferCodeCreate(svc, nil).ServeHTTP(rec, newRequest(http.MethodPost, "/api/admin/v1/offers/2/codes", `{"code":"SPRING10"}`, map[string]string{"offerID": "2"}))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}

func TestAdminOfferCodeListByIDs(t *testing.T) {
	svc := &stubOfferCodeService{list: []models.OfferCode{}}
	rec := httptest.NewRecorder()
	AdminOfferCodeList(svc, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/api/admin/v1/offer-codes?ids=4,2", "", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.ids) != 2 || svc.ids[0] != 4 {
		t.Fatalf("unexpected ids %v", svc.ids)
	}
	var list []models.OfferCode
	decodeData(t, rec, &list)
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty array, got %v", list)
	}
}

func TestAdminOfferCodeUpdatePartial(t *testing.T) {
	svc := &stubOfferCodeService{}
	rec := httptest.NewRecorder()
	AdminOfferCodeUpdate(svc, nil).ServeHTTP(rec, newRequest(http.MethodPut, "/api/admin/v1/offer-codes/id/3", `{"archived":true}`, map[string]string{"codeID": "3"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.update.Archived == nil || !*svc.update.Archived || svc.update.Code != nil || svc.update.MaxUses != nil {
		t.Fatalf("expected only archived set, got %+v", svc.update)
	}
}

func TestAdminOfferCodeDeleteAndUsed(t *testing.T) {
	svc := &stubOfferCodeService{used: true}
	rec := httptest.NewRecorder()
	AdminOfferCodeDelete(svc, nil).ServeHTTP(rec, newRequest(http.MethodDelete, "/api/admin/v1/offer-codes/id/8", "", map[string]string{"codeID": "8"}))
	if rec.Code != http.StatusNoContent || svc.deleted != 8 {
		t.Fatalf("expected 204 delete of code 8, got %d (%d)", rec.Code, svc.deleted)
	}

	rec = httptest.NewRecorder()
	AdminOfferCodeUsed(svc, nil).ServeHTTP(rec, newRequest(http.MethodGet, "/api/admin/v1/offer-codes/id/8/used", "", map[string]string{"codeID": "8"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var payload struct {
		ID   int64 `json:"id"`
		Used bool  `json:"used"`
	}
	decodeData(t, rec, &payload)
	if payload.ID != 8 || !payload.Used {
		t.Fatalf("unexpected payload %+v", payload)
	}
}
