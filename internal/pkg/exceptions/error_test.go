package exceptions

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNewCustomError(t *testing.T) {
	t.Run("wraps cause and records location", func(t *testing.T) {
		err := ErrFrameRejected(io.ErrUnexpectedEOF, "connection closed mid-frame")

		assert.Equal(t, KindFrameRejected, err.Kind)
		assert.Contains(t, err.DevMessage, "connection closed mid-frame")
		assert.Contains(t, err.DevMessage, io.ErrUnexpectedEOF.Error())
		assert.Len(t, err.Locations, 1)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})

	t.Run("same kind appends location instead of nesting", func(t *testing.T) {
		inner := ErrPostgresDBFindData(errors.New("boom"))
		outer := ErrPostgresDBInsertData(inner)

		assert.Same(t, inner, outer)
		assert.Len(t, outer.Locations, 2)
	})

	t.Run("different kind nests", func(t *testing.T) {
		inner := ErrUniqueConstraintRace(errors.New("23505"), "instruments")
		outer := ErrPostgresDBFindData(inner)

		assert.Equal(t, KindPersistenceError, KindOf(outer))
		assert.True(t, IsKind(outer, KindUniqueConstraintRace))
		assert.True(t, IsKind(outer, KindPersistenceError))
		assert.False(t, IsKind(outer, KindFrameTooLarge))
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindFrameTooLarge, KindOf(ErrFrameTooLarge(nil, 16)))
}
