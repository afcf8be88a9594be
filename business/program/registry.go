package program

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"ceap/domain"
	"ceap/pkg/logger"
)

// ConfigRepository is the keyed configuration store behind the registry.
// The registry only requires read-your-own-write consistency on a single
// program id.
type ConfigRepository interface {
	FindByProgramID(ctx context.Context, programID string) (domain.ProgramConfig, bool, error)
	FindByMarketplace(ctx context.Context, marketplace string) ([]domain.ProgramConfig, error)
	Save(ctx context.Context, cfg domain.ProgramConfig) error
	UpdateEnabled(ctx context.Context, programID string, enabled bool) error
	Delete(ctx context.Context, programID string) error
	GetOverride(ctx context.Context, programID, marketplace string) (map[string]any, bool, error)
	SaveOverride(ctx context.Context, override domain.MarketplaceConfigOverride) error
}

// Registry is the program configuration core: structural validation,
// marketplace override merging, and keyed CRUD. Repository failures are
// converted into error results instead of unwinding.
type Registry struct {
	repo     ConfigRepository
	validate *validator.Validate
}

func NewRegistry(repo ConfigRepository, validate *validator.Validate) *Registry {
	if validate == nil {
		validate = validator.New()
	}
	return &Registry{repo: repo, validate: validate}
}

func (r *Registry) Register(ctx context.Context, cfg domain.ProgramConfig) OperationResult {
	if err := r.validate.Struct(&cfg); err != nil {
		return validationFailure(err.Error())
	}

	if err := r.repo.Save(ctx, cfg); err != nil {
		return failure("register", err)
	}

	logger.Info("program registered",
		"program_id", cfg.ProgramID,
		"marketplace", cfg.Marketplace,
		"enabled", cfg.Enabled,
	)
	return success(&cfg)
}

// Get returns the effective configuration for a program: the stored base
// with the marketplace override (if any) layered on top. The stored base
// is never mutated.
func (r *Registry) Get(ctx context.Context, programID, marketplace string) OperationResult {
	base, ok, err := r.repo.FindByProgramID(ctx, programID)
	if err != nil {
		return failure("get", err)
	}
	if !ok {
		return notFound(programID)
	}

	if marketplace == "" {
		return success(&base)
	}

	overrides, ok, err := r.repo.GetOverride(ctx, programID, marketplace)
	if err != nil {
		return failure("get", err)
	}
	if !ok {
		return success(&base)
	}

	merged := MergeOverrides(base, overrides)
	return success(&merged)
}

func (r *Registry) ListByMarketplace(ctx context.Context, marketplace string) OperationResult {
	if marketplace == "" {
		return validationFailure("marketplace is required")
	}

	cfgs, err := r.repo.FindByMarketplace(ctx, marketplace)
	if err != nil {
		return failure("list", err)
	}
	return successList(cfgs)
}

func (r *Registry) SetEnabled(ctx context.Context, programID string, enabled bool) OperationResult {
	_, ok, err := r.repo.FindByProgramID(ctx, programID)
	if err != nil {
		return failure("set_enabled", err)
	}
	if !ok {
		return notFound(programID)
	}

	if err := r.repo.UpdateEnabled(ctx, programID, enabled); err != nil {
		return failure("set_enabled", err)
	}

	logger.Info("program enabled flag updated", "program_id", programID, "enabled", enabled)
	return OperationResult{Status: StatusSuccess}
}

func (r *Registry) Delete(ctx context.Context, programID string) OperationResult {
	_, ok, err := r.repo.FindByProgramID(ctx, programID)
	if err != nil {
		return failure("delete", err)
	}
	if !ok {
		return notFound(programID)
	}

	if err := r.repo.Delete(ctx, programID); err != nil {
		return failure("delete", err)
	}

	logger.Info("program deleted", "program_id", programID)
	return OperationResult{Status: StatusSuccess}
}

// SaveOverride stores a marketplace override patch. The override is
// applied on read; the base configuration row is untouched.
func (r *Registry) SaveOverride(ctx context.Context, override domain.MarketplaceConfigOverride) OperationResult {
	if err := r.validate.Struct(&override); err != nil {
		return validationFailure(err.Error())
	}

	_, ok, err := r.repo.FindByProgramID(ctx, override.ProgramID)
	if err != nil {
		return failure("save_override", err)
	}
	if !ok {
		return notFound(override.ProgramID)
	}

	if err := r.repo.SaveOverride(ctx, override); err != nil {
		return failure("save_override", err)
	}

	logger.Info("marketplace override saved",
		"program_id", override.ProgramID,
		"marketplace", override.Marketplace,
		"fields", fmt.Sprintf("%d", len(override.Overrides)),
	)
	return OperationResult{Status: StatusSuccess}
}
