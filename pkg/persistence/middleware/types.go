package middleware

import "github.com/recoverly/flowedit/pkg/ports"

// Middleware allows wrapping an AutomationStore to add behavior.
type Middleware func(ports.AutomationStore) ports.AutomationStore

// Chain wraps store with mws so that mws[0] is the outermost layer.
func Chain(store ports.AutomationStore, mws ...Middleware) ports.AutomationStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
