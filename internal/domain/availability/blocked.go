package availability

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayquote/internal/domain/shared/daterange"
)

var (
	ErrRangeNotFound = errors.New("availability: blocked range not found")
	ErrReasonTooLong = errors.New("availability: reason must be at most 200 characters")
)

const maxReasonLength = 200

type BlockedRangeID string

// BlockedRange marks nights [Range.Start, Range.End) as unavailable.
type BlockedRange struct {
	ID        BlockedRangeID
	Range     daterange.DateRange
	Reason    string
	CreatedAt time.Time
}

type NewBlockedRangeParams struct {
	ID     BlockedRangeID
	Range  daterange.DateRange
	Reason string
	Now    time.Time
}

func NewBlockedRange(p NewBlockedRangeParams) (BlockedRange, error) {
	if err := p.Range.Validate(); err != nil {
		return BlockedRange{}, err
	}
	reason := strings.TrimSpace(p.Reason)
	if len([]rune(reason)) > maxReasonLength {
		return BlockedRange{}, ErrReasonTooLong
	}
	return BlockedRange{
		ID:        p.ID,
		Range:     p.Range,
		Reason:    reason,
		CreatedAt: p.Now.UTC(),
	}, nil
}

// Reader lists blocked ranges overlapping window; a zero window lists everything.
type Reader interface {
	List(ctx context.Context, window daterange.DateRange) ([]BlockedRange, error)
}

type Repository interface {
	Reader
	Add(ctx context.Context, block BlockedRange) error
	Delete(ctx context.Context, id BlockedRangeID) (BlockedRange, error)
}

// Overlapping reports whether the stay shares at least one night with any block.
func Overlapping(stay daterange.DateRange, blocks []BlockedRange) bool {
	for _, block := range blocks {
		if stay.Start.Before(block.Range.End) && stay.End.After(block.Range.Start) {
			return true
		}
	}
	return false
}

// InWindow reports whether the block should be returned for the window.
func (b BlockedRange) InWindow(window daterange.DateRange) bool {
	if window.IsZero() {
		return true
	}
	return b.Range.Overlaps(window)
}
