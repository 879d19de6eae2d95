package redis

import (
	"strconv"
	"strings"
)

// All storefront keys live under "sf:".
const keyNamespace = "sf"

const (
	offerCodeSpace   = "offer_code"
	idempotencySpace = "idem"
	rateLimitSpace   = "rl"
)

// key joins non-blank segments under the storefront namespace.
func key(segments ...string) string {
	var b strings.Builder
	b.WriteString(keyNamespace)
	for _, s := range segments {
		if s = strings.TrimSpace(s); s != "" {
			b.WriteByte(':')
			b.WriteString(s)
		}
	}
	return b.String()
}

// OfferCodeKey is lower-cased because code lookups are case-insensitive.
func (c *Client) OfferCodeKey(code string) string {
	return key(offerCodeSpace, "code", strings.ToLower(strings.TrimSpace(code)))
}

func (c *Client) OfferCodeIDKey(id int64) string {
	return key(offerCodeSpace, "id", strconv.FormatInt(id, 10))
}

func (c *Client) IdempotencyKey(scope, id string) string {
	return key(idempotencySpace, scope, id)
}

func (c *Client) RateLimitKey(scope string) string {
	return key(rateLimitSpace, scope)
}
