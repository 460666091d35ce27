package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("WrapNilReturnsNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "context"))
	})

	t.Run("WrapPreservesSentinel", func(t *testing.T) {
		err := Wrap(ErrNotFound, "invitation lookup")
		assert.True(t, Is(err, ErrNotFound))
		assert.Equal(t, "invitation lookup: not found", err.Error())
	})

	t.Run("DoubleWrapPreservesSentinel", func(t *testing.T) {
		err := Wrap(Wrap(ErrConflict, "inner"), "outer")
		assert.True(t, Is(err, ErrConflict))
	})
}
