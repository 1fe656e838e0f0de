package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntityAt(t *testing.T) {
	at := time.Date(2026, 10, 1, 9, 30, 0, 0, time.FixedZone("PDT", -7*3600))
	e := NewBaseEntityAt(at)

	assert.NotEqual(t, NewBaseEntityAt(at).ID, e.ID)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	assert.True(t, e.CreatedAt.Equal(at))
	assert.Equal(t, e.CreatedAt, e.UpdatedAt)

	e.Touch()
	assert.True(t, e.UpdatedAt.After(e.CreatedAt))
}
