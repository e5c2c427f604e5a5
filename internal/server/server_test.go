package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/hotelaccelerator/backoffice-service/internal/errs"
)

func TestWriteErr_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", errs.Validation("bad input"), http.StatusBadRequest},
		{"authorization", errs.Authorization("wrong tenant"), http.StatusForbidden},
		{"not found", errs.NotFound("absent"), http.StatusNotFound},
		{"conflict", errs.Conflict("duplicate"), http.StatusConflict},
		{"invariant", errs.Invariant("rule broken"), http.StatusUnprocessableEntity},
		{"unclassified", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeErr(rec, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestWriteErr_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeErr(rec, errors.New("pq: connection refused at 10.0.0.5"))
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestIdentityAndRequireProperty(t *testing.T) {
	var seen uuid.UUID
	var seenActor string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = propertyID(r)
		seenActor = actorID(r)
		w.WriteHeader(http.StatusNoContent)
	})
	handler := identity(requireProperty(next))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/rules", nil)
		req.Header.Set(HeaderPropertyID, "not-a-uuid")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("resolved tenant", func(t *testing.T) {
		id := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/api/rules", nil)
		req.Header.Set(HeaderPropertyID, id.String())
		req.Header.Set(HeaderActorID, "staff-7")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, id, seen)
		assert.Equal(t, "staff-7", seenActor)
	})
}
