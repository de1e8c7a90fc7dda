package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// RequestOptions tunes a single gateway call
type RequestOptions struct {
	// Headers are merged over the defaults
	Headers map[string]string
	// NoContentType suppresses the default JSON content type (multipart upload)
	NoContentType bool
}

// CreateRequest is the body of a create call
type CreateRequest struct {
	Data    []byte
	Options RequestOptions
}

// UpdateRequest is the body of an update call, keyed by Selector
type UpdateRequest struct {
	Data     []byte
	Selector string
	Options  RequestOptions
}

// LoginResult is returned by a successful login
type LoginResult struct {
	JWT string `json:"jwt"`
}

// BillService is the bills resource of the remote store
type BillService interface {
	List(ctx context.Context, opts *RequestOptions) ([]entity.Bill, error)
	Create(ctx context.Context, req CreateRequest) (*entity.Bill, error)
	Update(ctx context.Context, req UpdateRequest) (*entity.Bill, error)
	Delete(ctx context.Context, selector string) (map[string]any, error)
}

// UserService is the users resource of the remote store
type UserService interface {
	Create(ctx context.Context, req CreateRequest) (*entity.Account, error)
}

// Store is the remote store gateway consumed by controllers
type Store interface {
	Login(ctx context.Context, credentials []byte) (*LoginResult, error)
	Bills() BillService
	Users() UserService
	Bill(ctx context.Context, id string) (*entity.Bill, error)
	User(ctx context.Context, id string) (*entity.Account, error)
	// BaseURL is the backend origin uploaded files are served from
	BaseURL() string
}
