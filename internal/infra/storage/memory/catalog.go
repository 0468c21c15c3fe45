package memory

import (
	"context"
	"sort"
	"sync"

	domainavailability "stayquote/internal/domain/availability"
	domainpricing "stayquote/internal/domain/pricing"
	"stayquote/internal/domain/shared/daterange"
	domainstayrules "stayquote/internal/domain/stayrules"
)

// BlockedRangeRepository keeps blocked ranges in memory, listed by start date.
type BlockedRangeRepository struct {
	mu    sync.RWMutex
	items map[domainavailability.BlockedRangeID]domainavailability.BlockedRange
}

func NewBlockedRangeRepository() *BlockedRangeRepository {
	return &BlockedRangeRepository{items: make(map[domainavailability.BlockedRangeID]domainavailability.BlockedRange)}
}

func (r *BlockedRangeRepository) List(ctx context.Context, window daterange.DateRange) ([]domainavailability.BlockedRange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainavailability.BlockedRange, 0, len(r.items))
	for _, b := range r.items {
		if b.InWindow(window) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byStart(out[i].Range, out[j].Range, string(out[i].ID), string(out[j].ID))
	})
	return out, nil
}

func (r *BlockedRangeRepository) Add(ctx context.Context, block domainavailability.BlockedRange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[block.ID] = block
	return nil
}

func (r *BlockedRangeRepository) Delete(ctx context.Context, id domainavailability.BlockedRangeID) (domainavailability.BlockedRange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return domainavailability.BlockedRange{}, domainavailability.ErrRangeNotFound
	}
	delete(r.items, id)
	return b, nil
}

// StayRuleRepository keeps stay rules in memory.
type StayRuleRepository struct {
	mu    sync.RWMutex
	items map[domainstayrules.RuleID]domainstayrules.Rule
}

func NewStayRuleRepository() *StayRuleRepository {
	return &StayRuleRepository{items: make(map[domainstayrules.RuleID]domainstayrules.Rule)}
}

func (r *StayRuleRepository) List(ctx context.Context, window daterange.DateRange) ([]domainstayrules.Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainstayrules.Rule, 0, len(r.items))
	for _, rule := range r.items {
		if rule.InWindow(window) {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byStart(out[i].Range, out[j].Range, string(out[i].ID), string(out[j].ID))
	})
	return out, nil
}

func (r *StayRuleRepository) Add(ctx context.Context, rule domainstayrules.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[rule.ID] = rule
	return nil
}

func (r *StayRuleRepository) Delete(ctx context.Context, id domainstayrules.RuleID) (domainstayrules.Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.items[id]
	if !ok {
		return domainstayrules.Rule{}, domainstayrules.ErrRuleNotFound
	}
	delete(r.items, id)
	return rule, nil
}

// SeasonRepository keeps pricing seasons in memory.
type SeasonRepository struct {
	mu    sync.RWMutex
	items map[domainpricing.SeasonID]domainpricing.Season
}

func NewSeasonRepository() *SeasonRepository {
	return &SeasonRepository{items: make(map[domainpricing.SeasonID]domainpricing.Season)}
}

func (r *SeasonRepository) List(ctx context.Context, window daterange.DateRange) ([]domainpricing.Season, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domainpricing.Season, 0, len(r.items))
	for _, s := range r.items {
		if s.InWindow(window) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return byStart(out[i].Range, out[j].Range, string(out[i].ID), string(out[j].ID))
	})
	return out, nil
}

func (r *SeasonRepository) Add(ctx context.Context, season domainpricing.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[season.ID] = season
	return nil
}

func (r *SeasonRepository) Delete(ctx context.Context, id domainpricing.SeasonID) (domainpricing.Season, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return domainpricing.Season{}, domainpricing.ErrSeasonNotFound
	}
	delete(r.items, id)
	return s, nil
}

func byStart(a, b daterange.DateRange, idA, idB string) bool {
	if !a.Start.Equal(b.Start) {
		return a.Start.Before(b.Start)
	}
	return idA < idB
}

var (
	_ domainavailability.Repository  = (*BlockedRangeRepository)(nil)
	_ domainstayrules.Repository     = (*StayRuleRepository)(nil)
	_ domainpricing.SeasonRepository = (*SeasonRepository)(nil)
)
