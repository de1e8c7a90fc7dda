package dispatcher

import (
	"context"

	"github.com/garyjia/billed/internal/domain/command"
)

// Handler processes a UI command
type Handler func(ctx context.Context, cmd *command.Command) error

// HandlerInfo contains handler metadata for debugging
type HandlerInfo struct {
	Name        string
	CommandType command.Type
	Handler     Handler
	Description string
}
