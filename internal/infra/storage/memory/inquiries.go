package memory

import (
	"context"
	"sort"
	"sync"

	domaininquiry "stayquote/internal/domain/inquiry"
)

// InquiryRepository stores inquiries in memory with optimistic versioning.
type InquiryRepository struct {
	mu    sync.RWMutex
	items map[domaininquiry.InquiryID]domaininquiry.Inquiry
}

func NewInquiryRepository() *InquiryRepository {
	return &InquiryRepository{items: make(map[domaininquiry.InquiryID]domaininquiry.Inquiry)}
}

func (r *InquiryRepository) ByID(ctx context.Context, id domaininquiry.InquiryID) (*domaininquiry.Inquiry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inq, ok := r.items[id]
	if !ok {
		return nil, domaininquiry.ErrInquiryNotFound
	}
	return &inq, nil
}

// Save rejects writes based on a stale version and bumps Version on success.
func (r *InquiryRepository) Save(ctx context.Context, inq *domaininquiry.Inquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[inq.ID]; ok && current.Version != inq.Version {
		return domaininquiry.ErrVersionConflict
	}
	inq.Version++
	stored := *inq
	stored.ClearEvents()
	r.items[inq.ID] = stored
	return nil
}

func (r *InquiryRepository) List(ctx context.Context, filter domaininquiry.ListFilter) ([]*domaininquiry.Inquiry, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]domaininquiry.Inquiry, 0, len(r.items))
	for _, inq := range r.items {
		if filter.Status != "" && inq.Status != filter.Status {
			continue
		}
		matched = append(matched, inq)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	total := len(matched)
	start := min(max(filter.Offset, 0), total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}
	out := make([]*domaininquiry.Inquiry, 0, end-start)
	for i := start; i < end; i++ {
		inq := matched[i]
		out = append(out, &inq)
	}
	return out, total, nil
}

var _ domaininquiry.Repository = (*InquiryRepository)(nil)
