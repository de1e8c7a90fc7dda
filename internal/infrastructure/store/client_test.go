package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/session"
)

type recorded struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

type backend struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	reply    string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, recorded{
		Method: r.Method,
		Path:   r.URL.Path,
		Header: r.Header.Clone(),
		Body:   string(body),
	})
	status, reply := b.status, b.reply
	b.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(reply))
}

func (b *backend) last(t *testing.T) recorded {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.requests)
	return b.requests[len(b.requests)-1]
}

func newTestClient(t *testing.T, b *backend, storage port.Storage) *Client {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, storage)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	_, err := New("not a url", nil)
	assert.Error(t, err)

	c, err := New("http://localhost:5678/", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5678", c.BaseURL())
}

func TestBillsList(t *testing.T) {
	storage := session.NewMemoryStorage()
	require.NoError(t, storage.SetItem(session.KeyJWT, "token-123"))

	b := &backend{reply: `[{"id":"47qAXb6fIm2zOKkLzMro","status":"pending","date":"2004-04-04","amount":400,"email":"a@a"}]`}
	c := newTestClient(t, b, storage)

	bills, err := c.Bills().List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, entity.StatusPending, bills[0].Status)
	assert.Equal(t, 400.0, bills[0].Amount)

	req := b.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/bills", req.Path)
	assert.Equal(t, "Bearer token-123", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestAuthorizationOmittedWithoutToken(t *testing.T) {
	b := &backend{reply: `[]`}
	c := newTestClient(t, b, session.NewMemoryStorage())

	bills, err := c.Bills().List(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, bills)
	assert.Empty(t, b.last(t).Header.Get("Authorization"))
}

func TestLoginNeverSendsAuthorization(t *testing.T) {
	storage := session.NewMemoryStorage()
	require.NoError(t, storage.SetItem(session.KeyJWT, "stale"))

	b := &backend{reply: `{"jwt":"fresh"}`}
	c := newTestClient(t, b, storage)

	res, err := c.Login(context.Background(), []byte(`{"email":"a@a","password":"azerty"}`))
	require.NoError(t, err)
	assert.Equal(t, "fresh", res.JWT)

	req := b.last(t)
	assert.Equal(t, "/auth/login", req.Path)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.JSONEq(t, `{"email":"a@a","password":"azerty"}`, req.Body)
}

func TestUpdateAndOptions(t *testing.T) {
	b := &backend{reply: `{"id":"b1","status":"accepted"}`}
	c := newTestClient(t, b, session.NewMemoryStorage())

	bill, err := c.Bills().Update(context.Background(), port.UpdateRequest{
		Data:     []byte(`{"status":"accepted"}`),
		Selector: "b1",
		Options: port.RequestOptions{
			NoContentType: true,
			Headers:       map[string]string{"X-Trace": "abc"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, bill.Status)

	req := b.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/bills/b1", req.Path)
	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Equal(t, "abc", req.Header.Get("X-Trace"))
}

func TestResources(t *testing.T) {
	ctx := context.Background()

	t.Run("create bill", func(t *testing.T) {
		b := &backend{reply: `{"id":"new","key":"1234","fileUrl":"http://localhost:5678/public/x.png"}`}
		c := newTestClient(t, b, session.NewMemoryStorage())

		bill, err := c.Bills().Create(ctx, port.CreateRequest{Data: []byte(`{}`)})
		require.NoError(t, err)
		assert.Equal(t, "1234", bill.Key)
		assert.Equal(t, http.MethodPost, b.last(t).Method)
		assert.Equal(t, "/bills", b.last(t).Path)
	})

	t.Run("delete bill", func(t *testing.T) {
		b := &backend{reply: `{"deleted":true}`}
		c := newTestClient(t, b, session.NewMemoryStorage())

		out, err := c.Bills().Delete(ctx, "b2")
		require.NoError(t, err)
		assert.Equal(t, true, out["deleted"])
		assert.Equal(t, http.MethodDelete, b.last(t).Method)
		assert.Equal(t, "/bills/b2", b.last(t).Path)
	})

	t.Run("get bill and user", func(t *testing.T) {
		b := &backend{reply: `{"id":"x","email":"a@a","type":"Admin","name":"Jane"}`}
		c := newTestClient(t, b, session.NewMemoryStorage())

		bill, err := c.Bill(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, "x", bill.ID)
		assert.Equal(t, "/bills/x", b.last(t).Path)

		user, err := c.User(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, entity.UserTypeAdmin, user.Type)
		assert.Equal(t, "/users/x", b.last(t).Path)
	})

	t.Run("create user", func(t *testing.T) {
		b := &backend{reply: `{"id":"u1","email":"e@e","type":"Employee"}`}
		c := newTestClient(t, b, session.NewMemoryStorage())

		payload, _ := json.Marshal(map[string]string{"email": "e@e"})
		account, err := c.Users().Create(ctx, port.CreateRequest{Data: payload})
		require.NoError(t, err)
		assert.Equal(t, "u1", account.ID)
		assert.Equal(t, "/users", b.last(t).Path)
	})
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reply   string
		message string
	}{
		{"json message", http.StatusNotFound, `{"message":"Erreur 404"}`, "Erreur 404"},
		{"plain body", http.StatusInternalServerError, `Erreur 500`, "Erreur 500"},
		{"empty body", http.StatusUnauthorized, ``, "request failed with status 401"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &backend{status: tt.status, reply: tt.reply}
			c := newTestClient(t, b, session.NewMemoryStorage())

			_, err := c.Bills().List(context.Background(), nil)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}

	assert.True(t, IsNotFound(&APIError{Status: http.StatusNotFound}))
	assert.False(t, IsNotFound(errors.New("boom")))
}

type failingTransport struct{}

func (failingTransport) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestTransportError(t *testing.T) {
	c, err := New("http://localhost:5678", nil, WithHTTPClient(failingTransport{}))
	require.NoError(t, err)

	_, err = c.Bills().List(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
