package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/lib/pq"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code      Code
		status    int
		publicMsg string
		retryable bool
		detailsOK bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required"},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied"},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found"},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected"},
		{code: CodeStateConflict, status: http.StatusUnprocessableEntity, publicMsg: "offer code cannot be redeemed", detailsOK: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded"},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true, detailsOK: true},
	}

	for _, tt := range tests {
		meta := MetadataFor(tt.code)
		if meta.HTTPStatus != tt.status {
			t.Fatalf("code %s expected status %d got %d", tt.code, tt.status, meta.HTTPStatus)
		}
		if meta.PublicMessage != tt.publicMsg {
			t.Fatalf("code %s expected public message %q got %q", tt.code, tt.publicMsg, meta.PublicMessage)
		}
		if meta.Retryable != tt.retryable {
			t.Fatalf("code %s expected retryable %v got %v", tt.code, tt.retryable, meta.Retryable)
		}
		if meta.DetailsAllowed != tt.detailsOK {
			t.Fatalf("code %s expected details allowed %v got %v", tt.code, tt.detailsOK, meta.DetailsAllowed)
		}
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal status, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "save offer code")
	if !stdErrors.Is(wrapped, cause) {
		t.Fatalf("Wrap did not preserve cause")
	}
	if wrapped.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", wrapped.Code())
	}
	if !strings.Contains(wrapped.Error(), "boom") {
		t.Fatalf("expected cause in message, got %q", wrapped.Error())
	}

	if got := Wrap(CodeInternal, nil, "nothing"); got.Unwrap() != nil {
		t.Fatalf("expected nil cause")
	}
}

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("lookup: %w", Newf(CodeNotFound, "offer %d not found", 7))
	if !HasCode(err, CodeNotFound) {
		t.Fatalf("expected NOT_FOUND through fmt wrapping")
	}
	if HasCode(err, CodeConflict) {
		t.Fatalf("did not expect CONFLICT")
	}
	if HasCode(nil, CodeNotFound) {
		t.Fatalf("nil error has no code")
	}
	if As(err).Message() != "offer 7 not found" {
		t.Fatalf("unexpected message %q", As(err).Message())
	}
}

func TestDiagnoseCapturesPostgresDetails(t *testing.T) {
	pqErr := &pq.Error{Code: "23505", Constraint: "ux_offer_codes_offer_code", Table: "offer_codes", Message: "duplicate key value"}
	err := Wrap(CodeConflict, pqErr, "save offer code")

	d := Diagnose(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected conflict code, got %s", d.Code)
	}
	if d.PG == nil || d.PG.SQLState != "23505" || d.PG.Constraint != "ux_offer_codes_offer_code" || d.PG.Table != "offer_codes" {
		t.Fatalf("unexpected pg details %+v", d.PG)
	}
	if len(d.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(d.Chain))
	}
	fields := d.Fields()
	if fields["pg_constraint"] != "ux_offer_codes_offer_code" || fields["error_code"] != CodeConflict {
		t.Fatalf("unexpected fields %+v", fields)
	}
}

func TestDiagnoseWithoutDatabaseError(t *testing.T) {
	if empty := Diagnose(nil); empty.Message != "" || len(empty.Chain) != 0 || empty.PG != nil {
		t.Fatalf("expected empty diagnostics for nil")
	}
	d := Diagnose(New(CodeNotFound, "offer not found"))
	if d.PG != nil {
		t.Fatalf("expected no pg details")
	}
	if _, ok := d.Fields()["pg_code"]; ok {
		t.Fatalf("pg fields should be omitted")
	}
}
