// Package middleware decorates macro stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/macrograph/pkg/ports"

// Middleware allows wrapping a MacroStore to add behavior.
type Middleware func(ports.MacroStore) ports.MacroStore

// Wrap applies mws to store. The first middleware is the outermost.
func Wrap(store ports.MacroStore, mws ...Middleware) ports.MacroStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
