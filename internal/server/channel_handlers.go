package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/service"
)

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.channels.ListChannels(r.Context(), propertyID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, channels)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(chi.URLParam(r, "channelID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	ch, err := s.channels.GetChannel(r.Context(), propertyID(r), channelID)
	if err != nil {
		writeErr(w, err)
		return
	}
	if ch == nil {
		Error(w, http.StatusNotFound, "channel not found")
		return
	}
	JSON(w, http.StatusOK, ch)
}

func (s *Server) handleCreateChannel(w http.ResponseWriter, r *http.Request) {
	var in service.ChannelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := s.channels.CreateChannel(r.Context(), propertyID(r), in, actorID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusCreated, ch)
}

func (s *Server) handleUpdateChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(chi.URLParam(r, "channelID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	var in service.ChannelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := s.channels.UpdateChannel(r.Context(), propertyID(r), channelID, in, actorID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, ch)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(chi.URLParam(r, "channelID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	if err := s.channels.DeleteChannel(r.Context(), propertyID(r), channelID, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleToggleChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := uuid.Parse(chi.URLParam(r, "channelID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid channel id")
		return
	}

	isActive, err := s.channels.ToggleChannelStatus(r.Context(), propertyID(r), channelID, actorID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"is_active": isActive})
}

func (s *Server) handleOAuthUpsert(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provider     string `json:"provider"`
		EmailAddress string `json:"email_address"`
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := s.channels.UpsertOAuthChannel(r.Context(), propertyID(r),
		body.Provider, body.EmailAddress, body.AccessToken, body.RefreshToken, body.ExpiresIn)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, ch)
}
