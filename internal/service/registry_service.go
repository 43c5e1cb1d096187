package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SolYield/yieldgate/internal/allocator"
	"github.com/SolYield/yieldgate/internal/config"
	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/apperrors"
	"github.com/SolYield/yieldgate/internal/pkg/logger"
	"github.com/SolYield/yieldgate/internal/repository"
)

type RegistryRepo interface {
	Get(ctx context.Context) (*model.Registry, error)
	Create(ctx context.Context, reg *model.Registry) error
	ReplaceVenues(ctx context.Context, venues []model.Venue) error
}

type RegistryService struct {
	repo   RegistryRepo
	events EventSink // optional
}

func NewRegistryService(repo RegistryRepo, events EventSink) *RegistryService {
	return &RegistryService{repo: repo, events: events}
}

// Bootstrap creates the singleton registry from config on first boot.
// When a registry record already exists it is returned untouched: the
// admin identity of the first write is final.
func (s *RegistryService) Bootstrap(ctx context.Context, cfg config.VaultConfig) (*model.Registry, error) {
	if existing, err := s.repo.Get(ctx); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if cfg.Admin == "" {
		return nil, fmt.Errorf("vault.admin must be configured for registry bootstrap")
	}

	reg := &model.Registry{Admin: cfg.Admin}
	for _, c := range cfg.Chains {
		reg.Chains = append(reg.Chains, model.Chain{
			ChainID:       c.ChainID,
			BridgeAddress: c.BridgeAddress,
			GasToken:      c.GasToken,
		})
	}
	for _, v := range cfg.Venues {
		reg.Venues = append(reg.Venues, model.Venue{
			VenueID:   v.VenueID,
			Name:      v.Name,
			ChainID:   v.ChainID,
			APY:       v.APY,
			RiskScore: v.RiskScore,
		})
	}
	if err := validateVenues(reg.Venues); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		// Lost a bootstrap race; the stored record wins.
		if errors.Is(err, repository.ErrAlreadyExists) {
			return s.repo.Get(ctx)
		}
		return nil, err
	}

	logger.Info("registry created", "admin", reg.Admin,
		"chains", len(reg.Chains), "venues", len(reg.Venues))
	return reg, nil
}

func (s *RegistryService) Snapshot(ctx context.Context) (*model.Registry, error) {
	reg, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.ErrNotFound, "registry not initialized", nil)
		}
		return nil, apperrors.Wrap(err)
	}
	return reg, nil
}

// ReplaceCatalog swaps the venue catalog wholesale. Only the registry
// admin may call it; the previous catalog is not merged.
func (s *RegistryService) ReplaceCatalog(ctx context.Context, caller string, venues []model.Venue) error {
	reg, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if !IsAdmin(caller, reg) {
		return apperrors.NewUnauthorized("caller is not the registry admin")
	}
	if err := validateVenues(venues); err != nil {
		return apperrors.NewInvalidRequest(err.Error())
	}

	if err := s.repo.ReplaceVenues(ctx, venues); err != nil {
		return apperrors.Wrap(err)
	}

	logger.Info("venue catalog replaced", "caller", caller, "venues", len(venues))
	if s.events != nil {
		s.events.Publish(VaultEvent{
			Type:      EventCatalogReplaced,
			Timestamp: time.Now().Unix(),
		})
	}
	return nil
}

func validateVenues(venues []model.Venue) error {
	seen := make(map[uint32]bool, len(venues))
	for _, v := range venues {
		if v.RiskScore > allocator.MaxRiskTolerance {
			return fmt.Errorf("venue %d: risk score %d outside [0,%d]", v.VenueID, v.RiskScore, allocator.MaxRiskTolerance)
		}
		if seen[v.VenueID] {
			return fmt.Errorf("duplicate venue id %d", v.VenueID)
		}
		seen[v.VenueID] = true
	}
	return nil
}
