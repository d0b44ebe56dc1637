package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/lookboard/internal/logging"
)

// Pruner keeps the board at or below its capacity by evicting the
// lowest-ranked surplus entries.
type Pruner struct {
	repo     Repository
	capacity int
	tieBreak TieBreak
	logger   logging.Logger
}

func NewPruner(repo Repository, capacity int, tb TieBreak, logger logging.Logger) *Pruner {
	return &Pruner{repo: repo, capacity: capacity, tieBreak: tb, logger: logger.With("module", "pruner")}
}

// Prune evicts every row ranked below the capacity and returns how many
// were removed. Rows whose score does not parse count towards the capacity
// and rank at UnscoredRank. Evictions go through Repository.Evict, so images are
// released exactly as for an explicit delete. A failed eviction does not
// stop the remaining ones; all failures are joined into the returned error.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	entries, err := p.repo.Rows(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	if len(entries) <= p.capacity {
		return 0, nil
	}

	Rank(entries, p.tieBreak)
	surplus := entries[p.capacity:]
	p.logger.Info(ctx, "pruning surplus entries", "count", len(surplus), "capacity", p.capacity)

	var (
		evicted int
		errs    []error
	)
	for _, e := range surplus {
		ok, err := p.repo.Evict(ctx, e)
		if err != nil {
			errs = append(errs, fmt.Errorf("evict %q: %w", e.Identity, err))
			continue
		}
		if !ok {
			p.logger.Warn(ctx, "surplus entry already gone", "identity", e.Identity)
			continue
		}
		evicted++
	}
	return evicted, errors.Join(errs...)
}
