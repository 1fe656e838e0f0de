package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_MatchesByCode(t *testing.T) {
	err := ErrNotFound.Withf("party %s", "p-1")

	assert.Equal(t, "resource not found: party p-1", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, fmt.Errorf("load buyer: %w", err), ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)
	assert.NotErrorIs(t, errors.New("resource not found"), ErrNotFound)
}

func TestDomainError_WithfLeavesSentinelUntouched(t *testing.T) {
	_ = ErrInvalidInput.Withf("bad value %d", 7)
	assert.Equal(t, "invalid input", ErrInvalidInput.Error())
}
