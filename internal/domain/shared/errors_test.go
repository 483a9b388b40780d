package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel by code", func(t *testing.T) {
		err := NewDomainError(CodeNotFound, "vehicle not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrDuplicateCharge))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("create entry: %w", ErrDuplicateCharge)
		assert.True(t, errors.Is(err, ErrDuplicateCharge))
	})

	t.Run("does not match plain errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	})
}

func TestIsInvalidState(t *testing.T) {
	assert.True(t, IsInvalidState(ErrInvalidState))
	assert.True(t, IsInvalidState(ErrAlreadyPaid))
	assert.False(t, IsInvalidState(ErrNotFound))
	assert.True(t, IsAlreadyPaid(fmt.Errorf("wrap: %w", ErrAlreadyPaid)))
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 20)
	assert.Equal(t, 2, p.TotalPages)

	empty := NewPaginated([]int{}, 0, 1, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestFilter_Offset(t *testing.T) {
	f := DefaultFilter()
	assert.Equal(t, 0, f.Offset())
	f.Page = 3
	assert.Equal(t, 40, f.Offset())
}
