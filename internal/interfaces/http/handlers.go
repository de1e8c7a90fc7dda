package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/export"
	"github.com/garyjia/billed/internal/interfaces/ui"
	"github.com/garyjia/billed/internal/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUploadSize bounds receipt uploads
const maxUploadSize = 10 << 20

// Navigator is the part of the router the shell drives
type Navigator interface {
	Navigate(ctx context.Context, path string)
	HandlePopState(ctx context.Context)
	Current() entity.Route
}

// Shell is the client hosted by the server
type Shell struct {
	Document *ui.Document
	History  *ui.History
	Router   Navigator
	Storage  port.Storage
	// Store is nil when the client runs without a backend
	Store    port.Store
	Exporter *export.SectionExporter
	// Loop is shared with the router so deferred controller work never
	// runs in the middle of an event; a private one is used when nil
	Loop *ui.EventLoop
}

// Handlers contains all HTTP request handlers. UI events are applied one
// at a time, like a browser event loop.
type Handlers struct {
	loop   *ui.EventLoop
	shell  Shell
	logger Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(shell Shell, logger Logger) *Handlers {
	loop := shell.Loop
	if loop == nil {
		loop = &ui.EventLoop{}
	}
	return &Handlers{loop: loop, shell: shell, logger: logger}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// PageResponse is the state of the client after an event
type PageResponse struct {
	Route    string `json:"route"`
	Location string `json:"location"`
	HTML     string `json:"html"`
}

// NavigateRequest moves the client to a route path
type NavigateRequest struct {
	Path string `json:"path" binding:"required"`
}

// PopStateRequest moves through the history
type PopStateRequest struct {
	Direction string `json:"direction" binding:"required,oneof=back forward"`
}

// ElementRequest targets one element
type ElementRequest struct {
	ID string `json:"id" binding:"required"`
}

// InputRequest sets the value of a form control
type InputRequest struct {
	ID    string `json:"id" binding:"required"`
	Value string `json:"value"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   "1.0.0",
		},
	})
}

// Page handles GET / and returns the current document
func (h *Handlers) Page(c *gin.Context) {
	h.loop.Lock()
	html := h.shell.Document.HTML()
	h.loop.Unlock()

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Navigate handles POST /ui/navigate
func (h *Handlers) Navigate(c *gin.Context) {
	var req NavigateRequest
	if !h.bind(c, &req) {
		return
	}

	h.loop.Lock()
	defer h.loop.Unlock()

	h.shell.Router.Navigate(c.Request.Context(), req.Path)
	h.respond(c)
}

// PopState handles POST /ui/popstate
func (h *Handlers) PopState(c *gin.Context) {
	var req PopStateRequest
	if !h.bind(c, &req) {
		return
	}

	h.loop.Lock()
	defer h.loop.Unlock()

	moved := h.shell.History.Back
	if req.Direction == "forward" {
		moved = h.shell.History.Forward
	}
	if moved() {
		h.shell.Router.HandlePopState(c.Request.Context())
	}
	h.respond(c)
}

// Click handles POST /ui/click
func (h *Handlers) Click(c *gin.Context) {
	var req ElementRequest
	if !h.bind(c, &req) {
		return
	}
	h.dispatch(c, ui.NewEvent(req.ID))
}

// Submit handles POST /ui/submit
func (h *Handlers) Submit(c *gin.Context) {
	var req ElementRequest
	if !h.bind(c, &req) {
		return
	}
	h.dispatch(c, &ui.Event{Type: ui.EventSubmit, TargetID: req.ID})
}

// Input handles POST /ui/input
func (h *Handlers) Input(c *gin.Context) {
	var req InputRequest
	if !h.bind(c, &req) {
		return
	}

	h.loop.Lock()
	defer h.loop.Unlock()

	el := h.shell.Document.ByID(req.ID)
	if el == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "element not found"})
		return
	}
	el.SetValue(req.Value)
	h.respond(c)
}

// Change handles POST /ui/change, a multipart form with the input id and
// the chosen file
func (h *Handlers) Change(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	id := c.PostForm("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "missing element id"})
		return
	}

	ev := &ui.Event{Type: ui.EventChange, TargetID: id}
	header, err := c.FormFile("file")
	switch {
	case err == nil:
		file, err := header.Open()
		if err != nil {
			h.logger.Error("Failed to open upload", "error", err)
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid upload"})
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			h.logger.Error("Failed to read upload", "error", err)
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid upload"})
			return
		}
		ev.Value = header.Filename
		ev.Files = []ui.File{{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}}
	case !errors.Is(err, http.ErrMissingFile):
		h.logger.Error("Invalid upload form", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid upload"})
		return
	}

	h.dispatch(c, ev)
}

// ExportSection handles GET /export/:status and returns the bills of one
// dashboard section as a spreadsheet. Only administrators may export.
func (h *Handlers) ExportSection(c *gin.Context) {
	status := entity.Status(c.Param("status"))
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "unknown status"})
		return
	}

	viewer := session.CurrentViewer(h.shell.Storage)
	if !viewer.Admin {
		c.JSON(http.StatusForbidden, Response{Success: false, Error: "administrator session required"})
		return
	}

	var bills []entity.Bill
	if h.shell.Store != nil {
		var err error
		bills, err = h.shell.Store.Bills().List(c.Request.Context(), nil)
		if err != nil {
			h.logger.Error("Failed to list bills for export", "status", status, "error", err)
			c.JSON(http.StatusBadGateway, Response{Success: false, Error: err.Error()})
			return
		}
	}

	var buf bytes.Buffer
	count, err := h.shell.Exporter.Write(c.Request.Context(), &buf, bills, status, viewer)
	if err != nil {
		h.logger.Error("Export failed", "status", status, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "export failed"})
		return
	}

	h.logger.Info("Exported section", "status", status, "bill_count", count)
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName(status, time.Now())+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handlers) dispatch(c *gin.Context, ev *ui.Event) {
	h.loop.Lock()
	defer h.loop.Unlock()

	if err := h.shell.Document.Dispatch(c.Request.Context(), ev); err != nil {
		if errors.Is(err, ui.ErrElementNotFound) {
			c.JSON(http.StatusNotFound, Response{Success: false, Error: err.Error()})
			return
		}
		h.logger.Error("Event handler failed", "type", ev.Type, "target", ev.TargetID, "error", err)
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
		return
	}
	h.respond(c)
}

func (h *Handlers) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.logger.Error("Invalid request body", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request body"})
		return false
	}
	return true
}

// respond writes the page state; the caller holds h.loop
func (h *Handlers) respond(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: PageResponse{
			Route:    h.shell.Router.Current().String(),
			Location: h.shell.History.Location().URL(),
			HTML:     h.shell.Document.HTML(),
		},
	})
}
