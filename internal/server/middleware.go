package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Identity headers set by the trusted gateway in front of this service. The
// gateway owns session resolution; we only consume its verdict.
const (
	HeaderPropertyID = "X-Property-ID"
	HeaderActorID    = "X-Actor-ID"
	HeaderActorEmail = "X-Actor-Email"
)

type contextKey string

const (
	ctxPropertyID contextKey = "property_id"
	ctxActorID    contextKey = "actor_id"
	ctxActorEmail contextKey = "actor_email"
)

// identity copies gateway identity headers into the request context.
func identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = context.WithValue(ctx, ctxActorID, r.Header.Get(HeaderActorID))
		ctx = context.WithValue(ctx, ctxActorEmail, r.Header.Get(HeaderActorEmail))
		if raw := r.Header.Get(HeaderPropertyID); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				ctx = context.WithValue(ctx, ctxPropertyID, id)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireProperty rejects requests that did not resolve to a tenant.
func requireProperty(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(ctxPropertyID).(uuid.UUID); !ok {
			Error(w, http.StatusBadRequest, "missing or invalid property id")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func propertyID(r *http.Request) uuid.UUID {
	id, _ := r.Context().Value(ctxPropertyID).(uuid.UUID)
	return id
}

func actorID(r *http.Request) string {
	id, _ := r.Context().Value(ctxActorID).(string)
	return id
}

func actorEmail(r *http.Request) string {
	email, _ := r.Context().Value(ctxActorEmail).(string)
	return email
}
