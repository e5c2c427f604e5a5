package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/service"
)

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.rules.ListRules(r.Context(), propertyID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, rules)
}

func (s *Server) handleGetRule(w http.ResponseWriter, r *http.Request) {
	ruleID, err := uuid.Parse(chi.URLParam(r, "ruleID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	rule, err := s.rules.GetRule(r.Context(), propertyID(r), ruleID)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, rule)
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var in service.RuleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := s.rules.CreateRule(r.Context(), propertyID(r), in, actorID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusCreated, rule)
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	ruleID, err := uuid.Parse(chi.URLParam(r, "ruleID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	var upd service.RuleUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := s.rules.UpdateRule(r.Context(), propertyID(r), ruleID, upd, actorID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, rule)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	ruleID, err := uuid.Parse(chi.URLParam(r, "ruleID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	if err := s.rules.DeleteRule(r.Context(), propertyID(r), ruleID, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleToggleRule(w http.ResponseWriter, r *http.Request) {
	ruleID, err := uuid.Parse(chi.URLParam(r, "ruleID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	var body struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.rules.ToggleRuleActive(r.Context(), propertyID(r), ruleID, body.IsActive, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"is_active": body.IsActive})
}
