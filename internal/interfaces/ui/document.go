// Package ui provides the in-process document the client controllers render
// into: an HTML node tree addressable by id, class and data-testid, with
// event bindings that bubble from the target element to its ancestors.
package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// DefaultShell is the page the client boots into
const DefaultShell = `<!DOCTYPE html><html><head><title>Billed</title></head><body><div id="root"></div></body></html>`

var (
	// ErrElementNotFound is returned when an event targets a missing element
	ErrElementNotFound = errors.New("element not found")
)

type prefixBinding struct {
	eventType string
	prefix    string
	handler   Handler
}

// Document is a parsed HTML page. All methods are safe for concurrent use;
// handlers run without the document lock held.
type Document struct {
	mu       sync.Mutex
	root     *html.Node
	handlers map[string]Handler
	prefixes []prefixBinding
}

// NewDocument parses shell into a document
func NewDocument(shell string) (*Document, error) {
	if shell == "" {
		shell = DefaultShell
	}
	root, err := html.Parse(strings.NewReader(shell))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{
		root:     root,
		handlers: make(map[string]Handler),
	}, nil
}

// MustNewDocument is NewDocument for static shells
func MustNewDocument(shell string) *Document {
	d, err := NewDocument(shell)
	if err != nil {
		panic(err)
	}
	return d
}

// HTML renders the whole document
func (d *Document) HTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf bytes.Buffer
	_ = html.Render(&buf, d.root)
	return buf.String()
}

// Body returns the body element
func (d *Document) Body() *Element {
	return d.find(func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "body" })
}

// ByID returns the element with the given id, nil if absent
func (d *Document) ByID(id string) *Element {
	if id == "" {
		return nil
	}
	return d.find(func(n *html.Node) bool { return attrOf(n, "id") == id })
}

// ByTestID returns the first element whose data-testid matches
func (d *Document) ByTestID(testID string) *Element {
	return d.find(func(n *html.Node) bool { return attrOf(n, "data-testid") == testID })
}

// ByClass returns the first element carrying the class
func (d *Document) ByClass(class string) *Element {
	return d.find(func(n *html.Node) bool { return hasClass(n, class) })
}

// AllByIDPrefix returns every element whose id starts with prefix
func (d *Document) AllByIDPrefix(prefix string) []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []*Element
	walk(d.root, func(n *html.Node) bool {
		if id := attrOf(n, "id"); id != "" && strings.HasPrefix(id, prefix) {
			out = append(out, &Element{doc: d, node: n})
		}
		return false
	})
	return out
}

// On binds handler to eventType on the element with id, replacing any
// previous binding.
func (d *Document) On(eventType, id string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[bindingKey(eventType, id)] = handler
}

// OnPrefix binds handler to every element whose id starts with prefix,
// including elements rendered later.
func (d *Document) OnPrefix(eventType, prefix string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, b := range d.prefixes {
		if b.eventType == eventType && b.prefix == prefix {
			d.prefixes[i].handler = handler
			return
		}
	}
	d.prefixes = append(d.prefixes, prefixBinding{eventType: eventType, prefix: prefix, handler: handler})
}

// Off removes the binding for eventType on id
func (d *Document) Off(eventType, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.handlers, bindingKey(eventType, id))
}

// Bound reports whether a handler is bound for eventType on id
func (d *Document) Bound(eventType, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lookup(eventType, id) != nil
}

// Reset drops every binding
func (d *Document) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = make(map[string]Handler)
	d.prefixes = nil
}

// Click dispatches a click on the element with id
func (d *Document) Click(ctx context.Context, id string) error {
	return d.Dispatch(ctx, NewEvent(id))
}

// Dispatch delivers ev to its target and then to each ancestor with a
// binding, until a handler fails or stops propagation.
func (d *Document) Dispatch(ctx context.Context, ev *Event) error {
	type bound struct {
		id      string
		handler Handler
	}

	d.mu.Lock()
	target := findNode(d.root, func(n *html.Node) bool { return attrOf(n, "id") == ev.TargetID })
	if target == nil {
		d.mu.Unlock()
		return fmt.Errorf("%w: #%s", ErrElementNotFound, ev.TargetID)
	}
	var chain []bound
	for n := target; n != nil; n = n.Parent {
		id := attrOf(n, "id")
		if id == "" {
			continue
		}
		if h := d.lookup(ev.Type, id); h != nil {
			chain = append(chain, bound{id: id, handler: h})
		}
	}
	d.mu.Unlock()

	for _, b := range chain {
		ev.CurrentTargetID = b.id
		if err := b.handler(ctx, ev); err != nil {
			return err
		}
		if ev.PropagationStopped() {
			break
		}
	}
	return nil
}

func (d *Document) lookup(eventType, id string) Handler {
	if h, ok := d.handlers[bindingKey(eventType, id)]; ok {
		return h
	}
	for _, b := range d.prefixes {
		if b.eventType == eventType && strings.HasPrefix(id, b.prefix) {
			return b.handler
		}
	}
	return nil
}

func (d *Document) find(match func(*html.Node) bool) *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := findNode(d.root, match)
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func bindingKey(eventType, id string) string {
	return eventType + "#" + id
}

// walk visits n and its descendants depth first until visit returns true
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if visit(n) {
		return true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if walk(c, visit) {
			return true
		}
	}
	return false
}

func findNode(root *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && match(n) {
			found = n
			return true
		}
		return false
	})
	return found
}

func attrOf(n *html.Node, key string) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrOf(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
