package logging

import (
	"context"
	"log/slog"
)

type scopeKey struct{}

// scope is what a request knows about itself for log correlation.
type scope struct {
	requestID string
	path      string
	uid       string
}

func scopeFrom(ctx context.Context) (scope, bool) {
	if ctx == nil {
		return scope{}, false
	}
	sc, ok := ctx.Value(scopeKey{}).(scope)
	return sc, ok
}

// WithRequest starts a request scope.
func WithRequest(ctx context.Context, requestID, path string) context.Context {
	sc, _ := scopeFrom(ctx)
	sc.requestID, sc.path = requestID, path
	return context.WithValue(ctx, scopeKey{}, sc)
}

// WithUID adds the verified caller once the token has been checked.
func WithUID(ctx context.Context, uid string) context.Context {
	sc, _ := scopeFrom(ctx)
	sc.uid = uid
	return context.WithValue(ctx, scopeKey{}, sc)
}

// stamp adds scope fields the record does not already carry.
func (sc scope) stamp(r slog.Record) slog.Record {
	have := map[string]bool{}
	r.Attrs(func(a slog.Attr) bool {
		have[a.Key] = true
		return true
	})
	out := r.Clone()
	add := func(key, val string) {
		if val != "" && !have[key] {
			out.AddAttrs(slog.String(key, val))
		}
	}
	add("request_id", sc.requestID)
	add("path", sc.path)
	add("uid", sc.uid)
	return out
}
