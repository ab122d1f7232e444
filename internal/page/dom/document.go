// Package dom is an HTML page model for the page agent, built on
// golang.org/x/net/html, plus a highlighter that wraps keyword matches in
// <mark> elements.
package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrijs2005/hlsync/internal/page/agent"
)

type Observer func([]agent.MutationRecord[*html.Node])

// Document is a parsed page. Structural changes go through AppendHTML so
// observers see every inserted node.
type Document struct {
	// mu guards the node tree.
	mu   sync.Mutex
	root *html.Node
	body *html.Node

	obsMu     sync.Mutex
	observers map[int]Observer
	nextID    int
}

func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	body := findElement(root, atom.Body)
	if body == nil {
		return nil, fmt.Errorf("parse page: no body element")
	}
	return &Document{root: root, body: body, observers: make(map[int]Observer)}, nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func (d *Document) Body() *html.Node { return d.body }

func (d *Document) IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

func (d *Document) Observe(fn func([]agent.MutationRecord[*html.Node])) (disconnect func()) {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()

	id := d.nextID
	d.nextID++
	d.observers[id] = fn

	return func() {
		d.obsMu.Lock()
		delete(d.observers, id)
		d.obsMu.Unlock()
	}
}

// AppendHTML parses fragment in body context, appends the resulting nodes
// to the body and reports them to observers as one mutation record.
func (d *Document) AppendHTML(fragment string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	d.mu.Lock()
	for _, n := range nodes {
		d.body.AppendChild(n)
	}
	d.mu.Unlock()

	d.notify([]agent.MutationRecord[*html.Node]{{Added: nodes}})
	return nodes, nil
}

func (d *Document) notify(records []agent.MutationRecord[*html.Node]) {
	d.obsMu.Lock()
	observers := make([]Observer, 0, len(d.observers))
	for _, fn := range d.observers {
		observers = append(observers, fn)
	}
	d.obsMu.Unlock()

	for _, fn := range observers {
		fn(records)
	}
}

func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// Text returns the concatenated text under n.
func (d *Document) Text(n *html.Node) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var sb strings.Builder
	collectText(n, &sb)
	return sb.String()
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}
