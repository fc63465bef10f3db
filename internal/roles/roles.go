package roles

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Role hashes from the GovernanceRoles contract. The emergency capability
// shares the admin hash on the current deployment.
const (
	AdminRole           = "0x76b1a12ac8d9ed64de3c0f66c2a19b21c0a3f9a1afec3f75bcd45f7b0794a1de"
	StrategistRole      = "0xb17d0a42cc710456bf9c3efb785dcd0cb93a0ac358113307b5c64b285b516b5c"
	TreasuryManagerRole = "0xfb33b7fa49278e0b9e45aa996caa7eae999f04705ef455a86b73159c5d256fa0"
	EmergencyRole       = AdminRole
)

// Checker answers a single yes/no capability query.
type Checker interface {
	HasRole(ctx context.Context, roleHash, account string) (bool, error)
}

// Snapshot aggregates the independent per-role checks. Flags are only
// meaningful once the whole snapshot resolved: an unresolved or failed
// check reads as "does not have role", never as a grant.
type Snapshot struct {
	Account           string
	IsAdmin           bool
	IsStrategist      bool
	IsTreasuryManager bool
	IsEmergency       bool
	Err               error
}

// Aggregator fans out capability checks against the access-control
// contract.
type Aggregator struct {
	checker Checker
	logger  zerolog.Logger
}

// NewAggregator constructs a role aggregator.
func NewAggregator(checker Checker, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		checker: checker,
		logger:  logger.With().Str("component", "roles").Logger(),
	}
}

// Check issues one concurrent capability check per role and combines the
// results. An empty account yields an all-false snapshot without touching
// the checker. The first check error wins; erroring roles stay false.
func (a *Aggregator) Check(ctx context.Context, account string) Snapshot {
	snap := Snapshot{Account: account}
	if account == "" {
		return snap
	}

	checks := []struct {
		roleHash string
		target   *bool
	}{
		{AdminRole, &snap.IsAdmin},
		{StrategistRole, &snap.IsStrategist},
		{TreasuryManagerRole, &snap.IsTreasuryManager},
		{EmergencyRole, &snap.IsEmergency},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, check := range checks {
		g.Go(func() error {
			granted, err := a.checker.HasRole(gctx, check.roleHash, account)
			if err != nil {
				return err
			}
			*check.target = granted
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		a.logger.Warn().Err(err).Str("account", account).Msg("role check failed")
		snap.Err = err
	}
	return snap
}

// HasAny reports whether the snapshot grants at least one capability.
func (s Snapshot) HasAny() bool {
	return s.IsAdmin || s.IsStrategist || s.IsTreasuryManager || s.IsEmergency
}
