package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hotelaccelerator/backoffice-service/internal/audit"
	"github.com/hotelaccelerator/backoffice-service/internal/errs"
	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9-]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// StructureInput is the payload for provisioning a new structure.
type StructureInput struct {
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	Plan         string     `json:"plan"`
	TrialEndsAt  *time.Time `json:"trial_ends_at"`
	InboxEnabled bool       `json:"inbox_enabled"`
	CMSEnabled   bool       `json:"cms_enabled"`
	AIEnabled    bool       `json:"ai_enabled"`
}

// CollaboratorInput is the payload for creating a platform collaborator.
type CollaboratorInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Provisioner queues newly created structures for background provisioning.
type Provisioner interface {
	QueueForProvisioning(s *model.Structure)
}

// SuperAdminService is the platform-level console. Every public method
// re-derives and re-checks the acting collaborator before touching its
// target, so each method stays safe even if wired without the gateway's
// checks.
type SuperAdminService struct {
	collaborators *store.CollaboratorRepository
	structures    *store.StructureRepository
	provisioner   Provisioner
	logger        *audit.Logger
}

// NewSuperAdminService creates a new SuperAdminService. provisioner may be
// nil, which skips background provisioning.
func NewSuperAdminService(collaborators *store.CollaboratorRepository, structures *store.StructureRepository, provisioner Provisioner, logger *audit.Logger) *SuperAdminService {
	return &SuperAdminService{
		collaborators: collaborators,
		structures:    structures,
		provisioner:   provisioner,
		logger:        logger,
	}
}

// verifySuperAdmin resolves the acting collaborator and requires an active
// super_admin. Each failure keeps its own message for diagnostics; all of
// them are authorization failures to the caller.
func (s *SuperAdminService) verifySuperAdmin(ctx context.Context, actorEmail string) (*model.PlatformCollaborator, error) {
	email := normalizeEmail(actorEmail)
	actor, err := s.collaborators.GetByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to resolve acting collaborator")
		return nil, err
	}
	if actor == nil {
		return nil, errs.Authorization("no collaborator account for this email")
	}
	if !actor.IsActive {
		return nil, errs.Authorization("collaborator account is suspended")
	}
	if actor.Role != model.RoleSuperAdmin {
		return nil, errs.Authorization("super_admin role required")
	}
	return actor, nil
}

// CreateStructure provisions a new hotel tenant. The structure is persisted
// as "provisioning" and handed to the background provisioner, which flips it
// to active once its steps complete.
func (s *SuperAdminService) CreateStructure(ctx context.Context, actorEmail string, in StructureInput) (*model.Structure, error) {
	actor, err := s.verifySuperAdmin(ctx, actorEmail)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, errs.Validation("name is required")
	}
	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		return nil, errs.Validation("slug is required")
	}
	if !slugPattern.MatchString(slug) {
		return nil, errs.Validation("slug may only contain lowercase letters, numbers and hyphens")
	}

	existing, err := s.structures.GetBySlug(ctx, slug)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check slug uniqueness")
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("a structure with slug %q already exists", slug)
	}

	structure := &model.Structure{
		Name:               strings.TrimSpace(in.Name),
		Slug:               slug,
		Plan:               in.Plan,
		SubscriptionStatus: model.StructureStatusProvisioning,
		TrialEndsAt:        in.TrialEndsAt,
		InboxEnabled:       in.InboxEnabled,
		CMSEnabled:         in.CMSEnabled,
		AIEnabled:          in.AIEnabled,
	}

	err = s.logger.Log(ctx, audit.Entry{
		ActorID:    actor.ID.String(),
		Command:    "structure.create",
		TargetType: "structure",
		Metadata:   map[string]interface{}{"slug": slug, "plan": in.Plan},
	}, func(ctx context.Context) error {
		return s.structures.Create(ctx, structure)
	})
	if err != nil {
		return nil, err
	}

	if s.provisioner != nil {
		s.provisioner.QueueForProvisioning(structure)
	}
	return structure, nil
}

// GetStructure loads a structure by ID.
func (s *SuperAdminService) GetStructure(ctx context.Context, actorEmail string, id uuid.UUID) (*model.Structure, error) {
	if _, err := s.verifySuperAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}
	structure, err := s.structures.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if structure == nil {
		return nil, errs.NotFound("structure not found")
	}
	return structure, nil
}

// ListStructures returns all structures on the platform.
func (s *SuperAdminService) ListStructures(ctx context.Context, actorEmail string) ([]model.Structure, error) {
	if _, err := s.verifySuperAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}
	return s.structures.List(ctx)
}

// SuspendStructure moves a structure to the suspended status.
func (s *SuperAdminService) SuspendStructure(ctx context.Context, actorEmail string, id uuid.UUID) error {
	return s.setStructureStatus(ctx, actorEmail, id, model.StructureStatusSuspended, "structure.suspend")
}

// ActivateStructure moves a structure to the active status.
func (s *SuperAdminService) ActivateStructure(ctx context.Context, actorEmail string, id uuid.UUID) error {
	return s.setStructureStatus(ctx, actorEmail, id, model.StructureStatusActive, "structure.activate")
}

func (s *SuperAdminService) setStructureStatus(ctx context.Context, actorEmail string, id uuid.UUID, status, command string) error {
	actor, err := s.verifySuperAdmin(ctx, actorEmail)
	if err != nil {
		return err
	}

	structure, err := s.structures.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if structure == nil {
		return errs.NotFound("structure not found")
	}

	return s.logger.Log(ctx, audit.Entry{
		ActorID:    actor.ID.String(),
		Command:    command,
		TargetType: "structure",
		TargetID:   id.String(),
		Metadata:   map[string]interface{}{"subscription_status": status},
	}, func(ctx context.Context) error {
		return s.structures.SetSubscriptionStatus(ctx, id, status)
	})
}

// CreateCollaborator creates a platform collaborator, stamped with the
// acting super-admin as creator. The email is lower-cased and trimmed before
// any check or write.
func (s *SuperAdminService) CreateCollaborator(ctx context.Context, actorEmail string, in CollaboratorInput) (*model.PlatformCollaborator, error) {
	actor, err := s.verifySuperAdmin(ctx, actorEmail)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)
	if !emailPattern.MatchString(email) {
		return nil, errs.Validation("invalid email address")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, errs.Validation("name is required")
	}
	role := in.Role
	if role == "" {
		role = model.RoleSupport
	}

	existing, err := s.collaborators.GetByEmail(ctx, email)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check collaborator email uniqueness")
		return nil, err
	}
	if existing != nil {
		return nil, errs.Conflict("a collaborator with email %q already exists", email)
	}

	collaborator := &model.PlatformCollaborator{
		Email:     email,
		Name:      name,
		Role:      role,
		IsActive:  true,
		CreatedBy: &actor.ID,
	}
	err = s.logger.Log(ctx, audit.Entry{
		ActorID:    actor.ID.String(),
		Command:    "collaborator.create",
		TargetType: "platform_collaborator",
		Metadata:   map[string]interface{}{"role": role},
	}, func(ctx context.Context) error {
		return s.collaborators.Create(ctx, collaborator)
	})
	if err != nil {
		return nil, err
	}
	return collaborator, nil
}

// ListCollaborators returns all collaborator accounts.
func (s *SuperAdminService) ListCollaborators(ctx context.Context, actorEmail string) ([]model.PlatformCollaborator, error) {
	if _, err := s.verifySuperAdmin(ctx, actorEmail); err != nil {
		return nil, err
	}
	return s.collaborators.List(ctx)
}

// SuspendCollaborator deactivates a collaborator account. A super-admin
// cannot suspend their own account; that would let the platform lock out
// its last operator.
func (s *SuperAdminService) SuspendCollaborator(ctx context.Context, actorEmail string, id uuid.UUID) error {
	actor, err := s.verifySuperAdmin(ctx, actorEmail)
	if err != nil {
		return err
	}
	if actor.ID == id {
		return errs.Invariant("a collaborator cannot suspend their own account")
	}
	return s.setCollaboratorActive(ctx, actor, id, false, "collaborator.suspend")
}

// ActivateCollaborator reactivates a collaborator account.
func (s *SuperAdminService) ActivateCollaborator(ctx context.Context, actorEmail string, id uuid.UUID) error {
	actor, err := s.verifySuperAdmin(ctx, actorEmail)
	if err != nil {
		return err
	}
	return s.setCollaboratorActive(ctx, actor, id, true, "collaborator.activate")
}

func (s *SuperAdminService) setCollaboratorActive(ctx context.Context, actor *model.PlatformCollaborator, id uuid.UUID, active bool, command string) error {
	target, err := s.collaborators.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target == nil {
		return errs.NotFound("collaborator not found")
	}

	return s.logger.Log(ctx, audit.Entry{
		ActorID:    actor.ID.String(),
		Command:    command,
		TargetType: "platform_collaborator",
		TargetID:   id.String(),
		Metadata:   map[string]interface{}{"is_active": active},
	}, func(ctx context.Context) error {
		return s.collaborators.SetActive(ctx, id, active)
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
