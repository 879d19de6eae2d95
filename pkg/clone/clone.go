// Package clone supports tenant-scoped duplication of persisted entities.
// A Context tracks copies by source pointer so an entity reachable through
// several references is copied exactly once and the copy graph keeps the
// shape of the source graph.
package clone

// Context memoizes copies made during a single clone operation.
type Context struct {
	TenantID string
	copies   map[any]any
	order    []any
}

// NewContext starts a clone operation targeting tenantID. An empty tenant
// means the copy stays in the current scope.
func NewContext(tenantID string) *Context {
	return &Context{TenantID: tenantID, copies: map[any]any{}}
}

// CreateOrRetrieve returns the copy registered for src, allocating a zero
// value when none exists yet. existing reports whether the copy was already
// populated by an earlier call, in which case the caller must not fill it again.
func CreateOrRetrieve[T any](cc *Context, src *T) (dst *T, existing bool) {
	if src == nil {
		return nil, true
	}
	if cc.copies == nil {
		cc.copies = map[any]any{}
	}
	if found, ok := cc.copies[src]; ok {
		return found.(*T), true
	}
	dst = new(T)
	cc.copies[src] = dst
	cc.order = append(cc.order, dst)
	return dst, false
}

// Len reports how many distinct entities were copied.
func (cc *Context) Len() int {
	return len(cc.order)
}

// Tenant returns the tenant a copy belongs to: the target tenant when one was
// given, otherwise a copy of the source's own tenant.
func (cc *Context) Tenant(source *string) *string {
	if cc.TenantID == "" {
		return Ptr(source)
	}
	t := cc.TenantID
	return &t
}

// Ptr copies the value behind p into a fresh pointer.
func Ptr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
