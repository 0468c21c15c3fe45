package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayquote/internal/domain/shared/daterange"
)

func TestWindowKeyIncludesGeneration(t *testing.T) {
	window, err := daterange.Parse("2026-06-01", "2027-12-01")
	require.NoError(t, err)

	assert.Equal(t, "availability:0:2026-06-01..2027-12-01", windowKey(0, window))
	assert.NotEqual(t, windowKey(0, window), windowKey(1, window))
}
