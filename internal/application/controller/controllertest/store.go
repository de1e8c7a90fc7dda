// Package controllertest provides an in-memory store and a recording
// navigator for controller tests.
package controllertest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/garyjia/billed/internal/application/controller"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Store is a port.Store recording every call
type Store struct {
	mu sync.Mutex

	BillList []entity.Bill
	// ListErr, CreateErr, UpdateErr and LoginErr fail the matching call
	ListErr   error
	CreateErr error
	UpdateErr error
	LoginErr  error
	// Created is returned by bill creation
	Created entity.Bill
	JWT     string
	// ListHook runs before List returns
	ListHook func(ctx context.Context)

	ListCalls   int
	Creates     []port.CreateRequest
	Updates     []port.UpdateRequest
	Deletes     []string
	Logins      [][]byte
	UserCreates []port.CreateRequest
}

var _ port.Store = (*Store)(nil)

func (s *Store) Login(ctx context.Context, credentials []byte) (*port.LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Logins = append(s.Logins, credentials)
	if s.LoginErr != nil {
		return nil, s.LoginErr
	}
	return &port.LoginResult{JWT: s.JWT}, nil
}

func (s *Store) Bills() port.BillService { return billService{s} }

func (s *Store) Users() port.UserService { return userService{s} }

func (s *Store) Bill(ctx context.Context, id string) (*entity.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := entity.FindBill(s.BillList, id); ok {
		return &b, nil
	}
	return nil, nil
}

func (s *Store) User(ctx context.Context, id string) (*entity.Account, error) {
	return &entity.Account{ID: id}, nil
}

func (s *Store) BaseURL() string { return "http://localhost:5678" }

// UpdatedBills decodes the bodies of every update call
func (s *Store) UpdatedBills() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(s.Updates))
	for _, u := range s.Updates {
		m := map[string]interface{}{}
		_ = json.Unmarshal(u.Data, &m)
		out = append(out, m)
	}
	return out
}

// Lists returns the number of list calls
func (s *Store) Lists() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ListCalls
}

type billService struct{ s *Store }

func (b billService) List(ctx context.Context, opts *port.RequestOptions) ([]entity.Bill, error) {
	b.s.mu.Lock()
	b.s.ListCalls++
	hook, err := b.s.ListHook, b.s.ListErr
	bills := append([]entity.Bill{}, b.s.BillList...)
	b.s.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (b billService) Create(ctx context.Context, r port.CreateRequest) (*entity.Bill, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	b.s.Creates = append(b.s.Creates, r)
	if b.s.CreateErr != nil {
		return nil, b.s.CreateErr
	}
	created := b.s.Created
	return &created, nil
}

func (b billService) Update(ctx context.Context, r port.UpdateRequest) (*entity.Bill, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	b.s.Updates = append(b.s.Updates, r)
	if b.s.UpdateErr != nil {
		return nil, b.s.UpdateErr
	}
	var bill entity.Bill
	_ = json.Unmarshal(r.Data, &bill)
	return &bill, nil
}

func (b billService) Delete(ctx context.Context, selector string) (map[string]any, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	b.s.Deletes = append(b.s.Deletes, selector)
	return map[string]any{}, nil
}

type userService struct{ s *Store }

func (u userService) Create(ctx context.Context, r port.CreateRequest) (*entity.Account, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	u.s.UserCreates = append(u.s.UserCreates, r)
	return &entity.Account{ID: "new-user"}, nil
}

// Navigator records navigations
type Navigator struct {
	mu    sync.Mutex
	paths []string
}

// Func returns the recording NavigateFunc
func (n *Navigator) Func() controller.NavigateFunc {
	return func(ctx context.Context, path string) {
		n.mu.Lock()
		defer n.mu.Unlock()
		n.paths = append(n.paths, path)
	}
}

// Paths returns the recorded navigations
func (n *Navigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}
