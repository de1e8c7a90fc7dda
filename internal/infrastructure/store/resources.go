package store

import (
	"context"
	"net/http"
	"net/url"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

type billService struct {
	c *Client
}

func (s billService) List(ctx context.Context, opts *port.RequestOptions) ([]entity.Bill, error) {
	req := call{method: http.MethodGet, path: "/bills"}
	if opts != nil {
		req.opts = *opts
	}
	var bills []entity.Bill
	if err := s.c.do(ctx, req, &bills); err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []entity.Bill{}
	}
	return bills, nil
}

func (s billService) Create(ctx context.Context, r port.CreateRequest) (*entity.Bill, error) {
	var bill entity.Bill
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		path:   "/bills",
		body:   r.Data,
		opts:   r.Options,
	}, &bill)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s billService) Update(ctx context.Context, r port.UpdateRequest) (*entity.Bill, error) {
	var bill entity.Bill
	err := s.c.do(ctx, call{
		method: http.MethodPatch,
		path:   "/bills/" + url.PathEscape(r.Selector),
		body:   r.Data,
		opts:   r.Options,
	}, &bill)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (s billService) Delete(ctx context.Context, selector string) (map[string]any, error) {
	out := map[string]any{}
	if err := s.c.do(ctx, call{method: http.MethodDelete, path: "/bills/" + url.PathEscape(selector)}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type userService struct {
	c *Client
}

func (s userService) Create(ctx context.Context, r port.CreateRequest) (*entity.Account, error) {
	var account entity.Account
	err := s.c.do(ctx, call{
		method: http.MethodPost,
		path:   "/users",
		body:   r.Data,
		opts:   r.Options,
	}, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
