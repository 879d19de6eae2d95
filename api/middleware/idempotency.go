package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/api/responses"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/logger"
	pkgredis "github.com/angelmondragon/storefront/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"

	AdminIdempotencyTTL  = 24 * time.Hour
	RedeemIdempotencyTTL = 7 * 24 * time.Hour

	maxIdempotencyKeyLen = 255
)

// replay is what gets persisted for a settled request.
type replay struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
	Fingerprint string `json:"fingerprint"`
}

// Idempotency deduplicates unsafe requests carrying an Idempotency-Key header.
// The first settled response is kept for ttl and replayed for retries with the
// same body. Requests without the header, safe methods and a nil store pass
// straight through.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if clientKey == "" || isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(clientKey) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := requestFingerprint(r.Method, body)
			key := store.IdempotencyKey(idempotencyScope(r), clientKey)

			prior, err := loadReplay(r, store, key)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if prior != nil {
				if prior.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				prior.writeTo(w)
				return
			}

			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r)

			// 5xx responses stay retryable.
			if capture.statusCode() >= http.StatusInternalServerError {
				return
			}
			saveReplay(r, logg, store, key, ttl, capture.toReplay(fingerprint))
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// idempotencyScope keeps keys from colliding across admins and endpoints.
func idempotencyScope(r *http.Request) string {
	subject := SubjectFromContext(r.Context())
	if subject == "" {
		subject = "anonymous"
	}
	return subject + "|" + r.Method + "|" + strings.TrimSuffix(r.URL.Path, "/")
}

func requestFingerprint(method string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func loadReplay(r *http.Request, store pkgredis.IdempotencyStore, key string) (*replay, error) {
	raw, err := store.Get(r.Context(), key)
	if pkgredis.IsMiss(err) || (err == nil && raw == "") {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency key")
	}
	var stored replay
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	return &stored, nil
}

func saveReplay(r *http.Request, logg *logger.Logger, store pkgredis.IdempotencyStore, key string, ttl time.Duration, rec replay) {
	payload, err := json.Marshal(rec)
	if err == nil {
		_, err = store.SetNX(r.Context(), key, string(payload), ttl)
	}
	if err != nil && logg != nil {
		logg.Error(r.Context(), "persist idempotency record", err)
	}
}

func (p *replay) writeTo(w http.ResponseWriter) {
	if p.ContentType != "" {
		w.Header().Set("Content-Type", p.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(p.Status)
	if len(p.Body) > 0 {
		_, _ = w.Write(p.Body)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) toReplay(fingerprint string) replay {
	rec := replay{
		Status:      c.statusCode(),
		ContentType: c.Header().Get("Content-Type"),
		Fingerprint: fingerprint,
	}
	if b := c.body.Bytes(); len(b) > 0 {
		rec.Body = append([]byte(nil), b...)
	}
	return rec
}

func defaultStatus(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}
