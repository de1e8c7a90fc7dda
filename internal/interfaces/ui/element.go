package ui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Element is a handle on a node of a Document. A handle stays valid after
// its node is replaced, but then edits a detached node.
type Element struct {
	doc  *Document
	node *html.Node
}

// ID returns the element id
func (e *Element) ID() string {
	return e.Attr("id")
}

// Tag returns the element tag name
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the attribute value, "" if absent
func (e *Element) Attr(key string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return attrOf(e.node, key)
}

// HasAttr reports whether the attribute is present
func (e *Element) HasAttr(key string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	_, ok := attrLookup(e.node, key)
	return ok
}

// SetAttr sets an attribute, adding it when missing
func (e *Element) SetAttr(key, val string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	setAttr(e.node, key, val)
}

// HasClass reports whether the element carries class
func (e *Element) HasClass(class string) bool {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return hasClass(e.node, class)
}

// AddClass adds class if not already present
func (e *Element) AddClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if hasClass(e.node, class) {
		return
	}
	classes := append(strings.Fields(attrOf(e.node, "class")), class)
	setAttr(e.node, "class", strings.Join(classes, " "))
}

// RemoveClass removes class if present
func (e *Element) RemoveClass(class string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var kept []string
	for _, c := range strings.Fields(attrOf(e.node, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	setAttr(e.node, "class", strings.Join(kept, " "))
}

// Style returns one inline style property
func (e *Element) Style(prop string) string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for _, d := range parseStyle(attrOf(e.node, "style")) {
		if d[0] == prop {
			return d[1]
		}
	}
	return ""
}

// SetStyle sets one inline style property, keeping the others
func (e *Element) SetStyle(prop, val string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	decls := parseStyle(attrOf(e.node, "style"))
	replaced := false
	for i := range decls {
		if decls[i][0] == prop {
			decls[i][1] = val
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, [2]string{prop, val})
	}

	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d[0]+": "+d[1])
	}
	setAttr(e.node, "style", strings.Join(parts, "; "))
}

// Width returns the measured width in pixels: the data-width attribute,
// else an inline "width: Npx" style, else 0.
func (e *Element) Width() int {
	if w, err := strconv.Atoi(e.Attr("data-width")); err == nil {
		return w
	}
	w, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(e.Style("width")), "px"))
	if err != nil {
		return 0
	}
	return w
}

// InnerHTML renders the element children
func (e *Element) InnerHTML() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// SetInnerHTML replaces the element children with the parsed markup
func (e *Element) SetInnerHTML(markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("failed to parse markup for #%s: %w", attrOf(e.node, "id"), err)
	}
	clearChildren(e.node)
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// AppendHTML parses markup and appends it after the existing children
func (e *Element) AppendHTML(markup string) error {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("failed to parse markup for #%s: %w", attrOf(e.node, "id"), err)
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// Text returns the concatenated text content
func (e *Element) Text() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return textOf(e.node)
}

// Value returns the form value: text content for a textarea, the value
// attribute otherwise.
func (e *Element) Value() string {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	switch e.node.Data {
	case "textarea":
		return textOf(e.node)
	case "select":
		if v, ok := attrLookup(e.node, "value"); ok {
			return v
		}
		return selectedOption(e.node)
	}
	return attrOf(e.node, "value")
}

// selectedOption returns the value of the selected option of a select,
// defaulting to its first option
func selectedOption(n *html.Node) string {
	var first, selected *html.Node
	walk(n, func(c *html.Node) bool {
		if c.Type != html.ElementNode || c.Data != "option" {
			return false
		}
		if first == nil {
			first = c
		}
		if _, ok := attrLookup(c, "selected"); ok {
			selected = c
			return true
		}
		return false
	})
	opt := selected
	if opt == nil {
		opt = first
	}
	if opt == nil {
		return ""
	}
	if v, ok := attrLookup(opt, "value"); ok {
		return v
	}
	return strings.TrimSpace(textOf(opt))
}

func attrLookup(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetValue sets the form value
func (e *Element) SetValue(val string) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.node.Data == "textarea" {
		clearChildren(e.node)
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: val})
		return
	}
	setAttr(e.node, "value", val)
}

// Find returns the first descendant matching the tag name
func (e *Element) Find(tag string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if n := findNode(c, func(n *html.Node) bool { return n.Data == tag }); n != nil {
			return &Element{doc: e.doc, node: n}
		}
	}
	return nil
}

// FindClass returns the first descendant carrying class
func (e *Element) FindClass(class string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if n := findNode(c, func(n *html.Node) bool { return hasClass(n, class) }); n != nil {
			return &Element{doc: e.doc, node: n}
		}
	}
	return nil
}

// Closest returns the nearest ancestor (or the element itself) carrying class
func (e *Element) Closest(class string) *Element {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && hasClass(n, class) {
			return &Element{doc: e.doc, node: n}
		}
	}
	return nil
}

// Remove detaches the element from the document
func (e *Element) Remove() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func clearChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return false
	})
	return sb.String()
}

func parseStyle(style string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(style, ";") {
		prop, val, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		decls = append(decls, [2]string{strings.TrimSpace(prop), strings.TrimSpace(val)})
	}
	return decls
}
