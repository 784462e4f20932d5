// Package chain composes ordered sequences of asynchronous transforms into a
// single callable. The composer uses it to thread a request value through
// before filters, the adapter method and after filters.
package chain

import "context"

// Handler is a unary async transform: it receives the previous stage's
// output and produces the next stage's input. All service methods and
// filters share this shape.
type Handler func(ctx context.Context, input interface{}) (interface{}, error)

// Compose returns a single handler that applies each call in order, feeding
// every stage the resolved output of the previous one. The first failing
// stage short-circuits the rest and its error is returned unchanged. Nil
// stages are skipped. Compose(nil...) is the identity.
func Compose(calls ...Handler) Handler {
	return func(ctx context.Context, input interface{}) (interface{}, error) {
		out := input
		for _, call := range calls {
			if call == nil {
				continue
			}
			var err error
			out, err = call(ctx, out)
			if err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}
