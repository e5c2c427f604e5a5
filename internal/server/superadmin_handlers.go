package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hotelaccelerator/backoffice-service/internal/service"
)

func (s *Server) handleListStructures(w http.ResponseWriter, r *http.Request) {
	structures, err := s.superAdmin.ListStructures(r.Context(), actorEmail(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, structures)
}

func (s *Server) handleCreateStructure(w http.ResponseWriter, r *http.Request) {
	var in service.StructureInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	structure, err := s.superAdmin.CreateStructure(r.Context(), actorEmail(r), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusCreated, structure)
}

func (s *Server) handleGetStructure(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "structureID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid structure id")
		return
	}

	structure, err := s.superAdmin.GetStructure(r.Context(), actorEmail(r), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, structure)
}

func (s *Server) handleSuspendStructure(w http.ResponseWriter, r *http.Request) {
	s.structureStatusChange(w, r, s.superAdmin.SuspendStructure)
}

func (s *Server) handleActivateStructure(w http.ResponseWriter, r *http.Request) {
	s.structureStatusChange(w, r, s.superAdmin.ActivateStructure)
}

func (s *Server) structureStatusChange(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, email string, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "structureID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid structure id")
		return
	}

	if err := change(r.Context(), actorEmail(r), id); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListCollaborators(w http.ResponseWriter, r *http.Request) {
	collaborators, err := s.superAdmin.ListCollaborators(r.Context(), actorEmail(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, collaborators)
}

func (s *Server) handleCreateCollaborator(w http.ResponseWriter, r *http.Request) {
	var in service.CollaboratorInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	collaborator, err := s.superAdmin.CreateCollaborator(r.Context(), actorEmail(r), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusCreated, collaborator)
}

func (s *Server) handleSuspendCollaborator(w http.ResponseWriter, r *http.Request) {
	s.collaboratorStatusChange(w, r, s.superAdmin.SuspendCollaborator)
}

func (s *Server) handleActivateCollaborator(w http.ResponseWriter, r *http.Request) {
	s.collaboratorStatusChange(w, r, s.superAdmin.ActivateCollaborator)
}

func (s *Server) collaboratorStatusChange(w http.ResponseWriter, r *http.Request, change func(ctx context.Context, email string, id uuid.UUID) error) {
	id, err := uuid.Parse(chi.URLParam(r, "collaboratorID"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid collaborator id")
		return
	}

	if err := change(r.Context(), actorEmail(r), id); err != nil {
		writeErr(w, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
