package memory

import (
	"context"
	"sort"
	"sync"

	domaincontent "stayquote/internal/domain/content"
)

// ContentRepository keeps site content blocks by key.
type ContentRepository struct {
	mu    sync.RWMutex
	items map[string]domaincontent.Block
}

func NewContentRepository() *ContentRepository {
	return &ContentRepository{items: make(map[string]domaincontent.Block)}
}

func (r *ContentRepository) Get(ctx context.Context, key string) (domaincontent.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[key]
	if !ok {
		return domaincontent.Block{}, domaincontent.ErrBlockNotFound
	}
	return b, nil
}

func (r *ContentRepository) List(ctx context.Context) ([]domaincontent.Block, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domaincontent.Block, 0, len(r.items))
	for _, b := range r.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (r *ContentRepository) Save(ctx context.Context, b domaincontent.Block) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[b.Key] = b
	return nil
}

var _ domaincontent.Repository = (*ContentRepository)(nil)
