// Package server wires the service layer to HTTP. Handlers parse the
// request, call one service method, and map the error taxonomy to a status;
// no business decision lives here.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/hotelaccelerator/backoffice-service/internal/service"
)

// Server bundles the back-office services behind one router.
type Server struct {
	rules      *service.MessageRuleService
	channels   *service.EmailChannelService
	superAdmin *service.SuperAdminService
	inboxWrite *service.InboxWriteService
	inboxRead  *service.InboxReadService
}

// New creates a Server.
func New(
	rules *service.MessageRuleService,
	channels *service.EmailChannelService,
	superAdmin *service.SuperAdminService,
	inboxWrite *service.InboxWriteService,
	inboxRead *service.InboxReadService,
) *Server {
	return &Server{
		rules:      rules,
		channels:   channels,
		superAdmin: superAdmin,
		inboxWrite: inboxWrite,
		inboxRead:  inboxRead,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderPropertyID, HeaderActorID, HeaderActorEmail},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(identity)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/rules", func(rr chi.Router) {
			rr.Use(requireProperty)
			rr.Get("/", s.handleListRules)
			rr.Post("/", s.handleCreateRule)
			rr.Route("/{ruleID}", func(one chi.Router) {
				one.Get("/", s.handleGetRule)
				one.Patch("/", s.handleUpdateRule)
				one.Delete("/", s.handleDeleteRule)
				one.Post("/toggle", s.handleToggleRule)
			})
		})

		api.Route("/channels", func(cr chi.Router) {
			cr.Use(requireProperty)
			cr.Get("/", s.handleListChannels)
			cr.Post("/", s.handleCreateChannel)
			cr.Post("/oauth/callback", s.handleOAuthUpsert)
			cr.Route("/{channelID}", func(one chi.Router) {
				one.Get("/", s.handleGetChannel)
				one.Put("/", s.handleUpdateChannel)
				one.Delete("/", s.handleDeleteChannel)
				one.Post("/toggle", s.handleToggleChannel)
			})
		})

		api.Route("/inbox/conversations", func(ir chi.Router) {
			ir.Use(requireProperty)
			ir.Get("/", s.handleListConversations)
			ir.Route("/{conversationID}", func(one chi.Router) {
				one.Get("/", s.handleGetConversation)
				one.Get("/messages", s.handleListMessages)
				one.Post("/messages", s.handleSendMessage)
				one.Post("/read", s.handleMarkAsRead)
				one.Post("/star", s.handleToggleStar)
				one.Post("/outcome", s.handleUpdateOutcome)
				one.Post("/status", s.handleUpdateStatus)
				one.Post("/booking", s.handleUpdateBookingData)
			})
		})

		api.Route("/admin", func(ar chi.Router) {
			ar.Route("/structures", func(sr chi.Router) {
				sr.Get("/", s.handleListStructures)
				sr.Post("/", s.handleCreateStructure)
				sr.Route("/{structureID}", func(one chi.Router) {
					one.Get("/", s.handleGetStructure)
					one.Post("/suspend", s.handleSuspendStructure)
					one.Post("/activate", s.handleActivateStructure)
				})
			})
			ar.Route("/collaborators", func(colr chi.Router) {
				colr.Get("/", s.handleListCollaborators)
				colr.Post("/", s.handleCreateCollaborator)
				colr.Route("/{collaboratorID}", func(one chi.Router) {
					one.Post("/suspend", s.handleSuspendCollaborator)
					one.Post("/activate", s.handleActivateCollaborator)
				})
			})
		})
	})

	return r
}
