package session_test

import (
	"testing"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/session"
	"github.com/garyjia/billed/internal/session/sessiontest"
)

func TestMemoryStorage(t *testing.T) {
	sessiontest.RunStorage(t, func(t *testing.T) port.Storage {
		return session.NewMemoryStorage()
	})
}
