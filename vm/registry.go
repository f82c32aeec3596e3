package vm

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/tolelom/tolfarm/core"
)

// Handler executes one transaction type. Handlers validate before they
// mutate; the executor reverts everything on error anyway.
type Handler func(ctx *Context, payload json.RawMessage) error

// Access says who may send a transaction type.
type Access int

const (
	// Anyone may send it. Player operations act on the sender's own
	// records, so ownership needs no further check.
	Anyone Access = iota
	// PoolAuthority requires the sender to be the authority of the pool
	// named by the payload's "mint". The checked pool is handed to the
	// handler as Context.Admin.
	PoolAuthority
)

func (a Access) String() string {
	switch a {
	case Anyone:
		return "anyone"
	case PoolAuthority:
		return "pool_authority"
	default:
		return fmt.Sprintf("access(%d)", int(a))
	}
}

type route struct {
	handler Handler
	access  Access
}

// Registry maps TxTypes to Handlers and their access class.
type Registry struct {
	mu     sync.RWMutex
	routes map[core.TxType]route
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{routes: make(map[core.TxType]route)}
}

// Register associates typ with h. Panics on duplicate registration.
func (r *Registry) Register(typ core.TxType, access Access, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.routes[typ]; exists {
		panic(fmt.Sprintf("vm: handler already registered for TxType %q", typ))
	}
	r.routes[typ] = route{handler: h, access: access}
}

// Access returns the access class of typ.
func (r *Registry) Access(typ core.TxType) (Access, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.routes[typ]
	return rt.access, ok
}

// Types lists the registered transaction types in name order.
func (r *Registry) Types() []core.TxType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.TxType, 0, len(r.routes))
	for typ := range r.routes {
		out = append(out, typ)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Execute checks the sender against the access class of typ, then
// dispatches payload to its handler.
func (r *Registry) Execute(typ core.TxType, ctx *Context, payload json.RawMessage) error {
	r.mu.RLock()
	rt, ok := r.routes[typ]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("vm: no handler registered for TxType %q", typ)
	}
	if rt.access == PoolAuthority {
		var target struct {
			Mint string `json:"mint"`
		}
		if err := json.Unmarshal(payload, &target); err != nil {
			return fmt.Errorf("decode %s payload: %w", typ, err)
		}
		pool, err := ctx.AdminPool(target.Mint)
		if err != nil {
			return fmt.Errorf("%s: %w", typ, err)
		}
		ctx.Admin = pool
	}
	return rt.handler(ctx, payload)
}

// Decode adapts fn into a Handler that unmarshals the payload into P first.
func Decode[P any](fn func(ctx *Context, p P) error) Handler {
	return func(ctx *Context, payload json.RawMessage) error {
		var p P
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decode %s payload: %w", ctx.Tx.Type, err)
		}
		return fn(ctx, p)
	}
}

// globalRegistry is the package-level registry that modules register into.
var globalRegistry = NewRegistry()

// Register adds a handler to the global registry. Module init() functions
// call this to self-register.
func Register(typ core.TxType, access Access, h Handler) {
	globalRegistry.Register(typ, access, h)
}

// Registered returns the access class of typ in the global registry.
func Registered(typ core.TxType) (Access, bool) {
	return globalRegistry.Access(typ)
}

// TxTypes lists every transaction type the global registry serves.
func TxTypes() []core.TxType {
	return globalRegistry.Types()
}
