package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/service"
)

func (s *Server) handleListConversations(w http.ResponseWriter, r *http.Request) {
	opts := service.ListOptions{
		Mode:   r.URL.Query().Get("mode"),
		Filter: r.URL.Query().Get("filter"),
	}

	conversations, err := s.inboxRead.ListConversations(r.Context(), propertyID(r), opts)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, conversations)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	conv, err := s.inboxRead.GetConversation(r.Context(), propertyID(r), chi.URLParam(r, "conversationID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, conv)
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.inboxRead.ListMessages(r.Context(), propertyID(r), chi.URLParam(r, "conversationID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, messages)
}

// conversationID parses the path parameter for write commands; the read
// service does its own shape gate.
func conversationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "conversationID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid conversation id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	var body struct {
		Content    string `json:"content"`
		SenderType string `json:"sender_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SenderType == "" {
		body.SenderType = "staff"
	}

	msg, err := s.inboxWrite.SendMessage(r.Context(), propertyID(r), id, body.Content, body.SenderType, actorID(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusCreated, msg)
}

func (s *Server) handleMarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	if err := s.inboxWrite.MarkAsRead(r.Context(), propertyID(r), id, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleToggleStar(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	var body struct {
		IsStarred bool `json:"is_starred"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.inboxWrite.ToggleStar(r.Context(), propertyID(r), id, body.IsStarred, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"is_starred": body.IsStarred})
}

func (s *Server) handleUpdateOutcome(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	var body struct {
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.inboxWrite.UpdateOutcome(r.Context(), propertyID(r), id, body.Outcome, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.inboxWrite.UpdateStatus(r.Context(), propertyID(r), id, body.Status, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleUpdateBookingData(w http.ResponseWriter, r *http.Request) {
	id, ok := conversationID(w, r)
	if !ok {
		return
	}

	var body struct {
		BookingData json.RawMessage `json:"booking_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.inboxWrite.UpdateBookingData(r.Context(), propertyID(r), id, body.BookingData, actorID(r)); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
