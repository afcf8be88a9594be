package program

import (
	"context"
	"errors"
	"testing"

	"ceap/domain"
)

// fakeConfigRepository is an in-memory ConfigRepository.
type fakeConfigRepository struct {
	programs  map[string]domain.ProgramConfig
	overrides map[string]map[string]any
	failWith  error
}

func newFakeConfigRepository() *fakeConfigRepository {
	return &fakeConfigRepository{
		programs:  make(map[string]domain.ProgramConfig),
		overrides: make(map[string]map[string]any),
	}
}

func overrideKey(programID, marketplace string) string { return programID + "|" + marketplace }

func (r *fakeConfigRepository) FindByProgramID(ctx context.Context, programID string) (domain.ProgramConfig, bool, error) {
	if r.failWith != nil {
		return domain.ProgramConfig{}, false, r.failWith
	}
	cfg, ok := r.programs[programID]
	return cfg, ok, nil
}

func (r *fakeConfigRepository) FindByMarketplace(ctx context.Context, marketplace string) ([]domain.ProgramConfig, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var out []domain.ProgramConfig
	for _, cfg := range r.programs {
		if cfg.Marketplace == marketplace {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (r *fakeConfigRepository) Save(ctx context.Context, cfg domain.ProgramConfig) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.programs[cfg.ProgramID] = cfg
	return nil
}

func (r *fakeConfigRepository) UpdateEnabled(ctx context.Context, programID string, enabled bool) error {
	if r.failWith != nil {
		return r.failWith
	}
	cfg := r.programs[programID]
	cfg.Enabled = enabled
	r.programs[programID] = cfg
	return nil
}

func (r *fakeConfigRepository) Delete(ctx context.Context, programID string) error {
	if r.failWith != nil {
		return r.failWith
	}
	delete(r.programs, programID)
	return nil
}

func (r *fakeConfigRepository) GetOverride(ctx context.Context, programID, marketplace string) (map[string]any, bool, error) {
	if r.failWith != nil {
		return nil, false, r.failWith
	}
	ov, ok := r.overrides[overrideKey(programID, marketplace)]
	return ov, ok, nil
}

func (r *fakeConfigRepository) SaveOverride(ctx context.Context, override domain.MarketplaceConfigOverride) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.overrides[overrideKey(override.ProgramID, override.Marketplace)] = override.Overrides
	return nil
}

func validProgram() domain.ProgramConfig {
	return domain.ProgramConfig{
		ProgramID:        "winback",
		Name:             "Winback",
		Marketplace:      "US",
		Enabled:          true,
		BatchSchedule:    "0 6 * * *",
		CandidateTTLDays: 30,
		TimingWindowDays: 7,
		Channels: []domain.ChannelConfig{
			{ID: "email-primary", Type: "email", Enabled: true},
		},
		Connectors: []domain.DataConnectorConfig{
			{ID: "orders-feed", ConnectorType: "json", Enabled: true},
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	repo := newFakeConfigRepository()
	reg := NewRegistry(repo, nil)

	res := reg.Register(context.Background(), validProgram())
	if !res.OK() {
		t.Fatalf("register failed: %+v", res)
	}

	got := reg.Get(context.Background(), "winback", "")
	if !got.OK() || got.Program == nil {
		t.Fatalf("get failed: %+v", got)
	}
	if got.Program.ProgramID != "winback" {
		t.Errorf("unexpected program: %+v", got.Program)
	}
}

func TestRegistry_RegisterValidationFailure(t *testing.T) {
	reg := NewRegistry(newFakeConfigRepository(), nil)

	cfg := validProgram()
	cfg.Channels = nil // violates min=1

	res := reg.Register(context.Background(), cfg)
	if res.Status != StatusValidationError {
		t.Errorf("expected validation error, got %+v", res)
	}

	cfg = validProgram()
	cfg.ProgramID = ""
	if res := reg.Register(context.Background(), cfg); res.Status != StatusValidationError {
		t.Errorf("expected validation error for missing id, got %+v", res)
	}
}

func TestRegistry_GetNotFound(t *testing.T) {
	reg := NewRegistry(newFakeConfigRepository(), nil)

	res := reg.Get(context.Background(), "missing", "")
	if res.Status != StatusNotFound {
		t.Errorf("expected not found, got %+v", res)
	}
}

func TestRegistry_GetAppliesMarketplaceOverride(t *testing.T) {
	repo := newFakeConfigRepository()
	reg := NewRegistry(repo, nil)

	if res := reg.Register(context.Background(), validProgram()); !res.OK() {
		t.Fatalf("register failed: %+v", res)
	}
	res := reg.SaveOverride(context.Background(), domain.MarketplaceConfigOverride{
		ProgramID:   "winback",
		Marketplace: "DE",
		Overrides:   map[string]any{OverrideEnabled: false, OverrideCandidateTTLDays: 7},
	})
	if !res.OK() {
		t.Fatalf("save override failed: %+v", res)
	}

	withOverride := reg.Get(context.Background(), "winback", "DE")
	if !withOverride.OK() {
		t.Fatalf("get failed: %+v", withOverride)
	}
	if withOverride.Program.Enabled || withOverride.Program.CandidateTTLDays != 7 {
		t.Errorf("override not applied: %+v", withOverride.Program)
	}

	// other marketplaces see the untouched base
	plain := reg.Get(context.Background(), "winback", "US")
	if !plain.Program.Enabled || plain.Program.CandidateTTLDays != 30 {
		t.Errorf("base mutated by override: %+v", plain.Program)
	}
}

func TestRegistry_SaveOverrideForMissingProgram(t *testing.T) {
	reg := NewRegistry(newFakeConfigRepository(), nil)

	res := reg.SaveOverride(context.Background(), domain.MarketplaceConfigOverride{
		ProgramID:   "missing",
		Marketplace: "DE",
		Overrides:   map[string]any{OverrideEnabled: false},
	})
	if res.Status != StatusNotFound {
		t.Errorf("expected not found, got %+v", res)
	}
}

func TestRegistry_ListByMarketplace(t *testing.T) {
	repo := newFakeConfigRepository()
	reg := NewRegistry(repo, nil)

	us := validProgram()
	de := validProgram()
	de.ProgramID = "welcome"
	de.Marketplace = "DE"
	_ = reg.Register(context.Background(), us)
	_ = reg.Register(context.Background(), de)

	res := reg.ListByMarketplace(context.Background(), "DE")
	if !res.OK() || len(res.Programs) != 1 || res.Programs[0].ProgramID != "welcome" {
		t.Errorf("unexpected list result: %+v", res)
	}

	if res := reg.ListByMarketplace(context.Background(), ""); res.Status != StatusValidationError {
		t.Errorf("expected validation error for empty marketplace, got %+v", res)
	}
}

func TestRegistry_SetEnabled(t *testing.T) {
	repo := newFakeConfigRepository()
	reg := NewRegistry(repo, nil)
	_ = reg.Register(context.Background(), validProgram())

	if res := reg.SetEnabled(context.Background(), "winback", false); !res.OK() {
		t.Fatalf("set enabled failed: %+v", res)
	}
	if repo.programs["winback"].Enabled {
		t.Error("enabled flag not persisted")
	}

	if res := reg.SetEnabled(context.Background(), "missing", true); res.Status != StatusNotFound {
		t.Errorf("expected not found, got %+v", res)
	}
}

func TestRegistry_Delete(t *testing.T) {
	repo := newFakeConfigRepository()
	reg := NewRegistry(repo, nil)
	_ = reg.Register(context.Background(), validProgram())

	if res := reg.Delete(context.Background(), "winback"); !res.OK() {
		t.Fatalf("delete failed: %+v", res)
	}
	if _, ok := repo.programs["winback"]; ok {
		t.Error("program not deleted")
	}

	if res := reg.Delete(context.Background(), "winback"); res.Status != StatusNotFound {
		t.Errorf("expected not found on second delete, got %+v", res)
	}
}

func TestRegistry_RepositoryFailureIsErrorResult(t *testing.T) {
	repo := newFakeConfigRepository()
	repo.failWith = errors.New("connection refused")
	reg := NewRegistry(repo, nil)

	res := reg.Get(context.Background(), "winback", "")
	if res.Status != StatusError || res.Err == nil {
		t.Fatalf("expected error result, got %+v", res)
	}
	var opErr *domain.OperationError
	if !errors.As(res.Err, &opErr) {
		t.Errorf("expected OperationError wrapper, got %T", res.Err)
	}
}
