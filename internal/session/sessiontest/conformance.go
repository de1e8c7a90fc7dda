// Package sessiontest holds the behaviour every session storage backend shares.
package sessiontest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
)

// RunStorage checks Get/Set/Remove/Clear on a fresh storage from newStorage
func RunStorage(t *testing.T, newStorage func(t *testing.T) port.Storage) {
	t.Helper()

	t.Run("unknown key is absent", func(t *testing.T) {
		s := newStorage(t)
		v, ok := s.GetItem("missing")
		assert.False(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("set then get", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem("user", `{"type":"Admin","email":"a@a"}`))

		v, ok := s.GetItem("user")
		assert.True(t, ok)
		assert.Equal(t, `{"type":"Admin","email":"a@a"}`, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem("jwt", "one"))
		require.NoError(t, s.SetItem("jwt", "two"))

		v, ok := s.GetItem("jwt")
		assert.True(t, ok)
		assert.Equal(t, "two", v)
	})

	t.Run("empty value is present", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem("jwt", ""))
		_, ok := s.GetItem("jwt")
		assert.True(t, ok)
	})

	t.Run("remove", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem("jwt", "token"))
		require.NoError(t, s.RemoveItem("jwt"))
		require.NoError(t, s.RemoveItem("jwt"))

		_, ok := s.GetItem("jwt")
		assert.False(t, ok)
	})

	t.Run("clear", func(t *testing.T) {
		s := newStorage(t)
		require.NoError(t, s.SetItem("user", "u"))
		require.NoError(t, s.SetItem("jwt", "j"))
		require.NoError(t, s.Clear())

		_, ok := s.GetItem("user")
		assert.False(t, ok)
		_, ok = s.GetItem("jwt")
		assert.False(t, ok)

		require.NoError(t, s.SetItem("user", "again"))
		v, ok := s.GetItem("user")
		assert.True(t, ok)
		assert.Equal(t, "again", v)
	})
}
