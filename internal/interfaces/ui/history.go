package ui

import (
	"strings"
	"sync"
)

// Location is the current address of the client
type Location struct {
	Origin   string
	Pathname string
	Hash     string
}

// Path returns the route-bearing part of the location: the hash when
// present, the pathname otherwise.
func (l Location) Path() string {
	if l.Hash != "" {
		return l.Hash
	}
	return l.Pathname
}

// URL returns the full address
func (l Location) URL() string {
	return l.Origin + l.Pathname + l.Hash
}

// History is an in-process browser history stack
type History struct {
	mu      sync.Mutex
	origin  string
	entries []Location
	index   int
}

// NewHistory creates a history positioned at the given initial path
func NewHistory(origin, initial string) *History {
	if initial == "" {
		initial = "/"
	}
	return &History{
		origin:  origin,
		entries: []Location{parseLocation(origin, initial)},
	}
}

// PushState appends path to the history without reloading, dropping any
// forward entries.
func (h *History) PushState(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.index+1], parseLocation(h.origin, path))
	h.index = len(h.entries) - 1
}

// Back moves one entry back; false if already at the first entry
func (h *History) Back() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == 0 {
		return false
	}
	h.index--
	return true
}

// Forward moves one entry forward; false if already at the last entry
func (h *History) Forward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index >= len(h.entries)-1 {
		return false
	}
	h.index++
	return true
}

// Location returns the current location
func (h *History) Location() Location {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Len returns the number of entries
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// parseLocation mirrors how a browser resolves origin+path: a bare hash
// keeps the root pathname.
func parseLocation(origin, path string) Location {
	loc := Location{Origin: origin, Pathname: "/"}
	if path == "" {
		return loc
	}
	if strings.HasPrefix(path, "#") {
		loc.Hash = path
		return loc
	}
	if i := strings.Index(path, "#"); i >= 0 {
		loc.Pathname, loc.Hash = path[:i], path[i:]
	} else {
		loc.Pathname = path
	}
	if loc.Hash == "#" {
		loc.Hash = ""
	}
	if !strings.HasPrefix(loc.Pathname, "/") {
		loc.Pathname = "/" + loc.Pathname
	}
	return loc
}
