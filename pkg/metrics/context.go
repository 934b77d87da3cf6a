package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

type contextKey string

// NewRelicContextKey is the context key the New Relic application is stored
// under. Every metric helper is a no-op when it's absent.
const NewRelicContextKey contextKey = "metrics.newrelic"

// NewContext returns a child context carrying the New Relic application
func NewContext(ctx context.Context, app *newrelic.Application) context.Context {
	if app == nil {
		return ctx
	}
	return context.WithValue(ctx, NewRelicContextKey, app)
}

// StartTransaction starts a New Relic transaction and attaches it to the
// returned context, so TraceMethodCall segments nest under it. The returned
// function ends the transaction.
func StartTransaction(ctx context.Context, name string) (context.Context, func()) {
	nr, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	if !ok {
		return ctx, func() {}
	}

	txn := nr.StartTransaction(name)
	return newrelic.NewContext(ctx, txn), txn.End
}
