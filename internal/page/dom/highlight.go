package dom

import (
	"regexp"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const DefaultMarkClass = "hlsync-mark"

// skipped elements never have their text marked.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Textarea: true,
	atom.Mark:     true,
	atom.Template: true,
}

type Highlighter struct {
	doc   *Document
	class string
}

func NewHighlighter(doc *Document) *Highlighter {
	return &Highlighter{doc: doc, class: DefaultMarkClass}
}

// Highlight wraps case-insensitive keyword matches under root in <mark>
// elements. With fullRescan, marks already under root are removed first.
func (h *Highlighter) Highlight(root *html.Node, keywords []string, fullRescan bool) {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()

	if fullRescan {
		h.clear(root)
	}

	re := keywordPattern(keywords)
	if re == nil || insideSkipped(root) {
		return
	}

	var texts []*html.Node
	collectTextNodes(root, &texts)
	for _, t := range texts {
		h.markText(t, re)
	}
}

func (h *Highlighter) ClearHighlighted(root *html.Node) {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	h.clear(root)
}

// Count returns the number of marks under root.
func (h *Highlighter) Count(root *html.Node) int {
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	var marks []*html.Node
	h.collectMarks(root, &marks)
	return len(marks)
}

func keywordPattern(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	// Longest first, so "foobar" wins over "foo".
	slices.SortFunc(quoted, func(a, b string) int { return len(b) - len(a) })
	return regexp.MustCompile("(?i)" + strings.Join(quoted, "|"))
}

func insideSkipped(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && skipped[p.DataAtom] {
			return true
		}
	}
	return false
}

func collectTextNodes(n *html.Node, out *[]*html.Node) {
	if n.Type == html.TextNode {
		*out = append(*out, n)
		return
	}
	if n.Type == html.ElementNode && skipped[n.DataAtom] {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectTextNodes(c, out)
	}
}

func (h *Highlighter) newMark(text string) *html.Node {
	m := &html.Node{
		Type:     html.ElementNode,
		Data:     "mark",
		DataAtom: atom.Mark,
		Attr:     []html.Attribute{{Key: "class", Val: h.class}},
	}
	m.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return m
}

func (h *Highlighter) markText(t *html.Node, re *regexp.Regexp) {
	matches := re.FindAllStringIndex(t.Data, -1)
	if len(matches) == 0 || t.Parent == nil {
		return
	}

	parent := t.Parent
	text := t.Data
	pos := 0
	for _, m := range matches {
		if m[0] > pos {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[pos:m[0]]}, t)
		}
		parent.InsertBefore(h.newMark(text[m[0]:m[1]]), t)
		pos = m[1]
	}
	if pos < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[pos:]}, t)
	}
	parent.RemoveChild(t)
}

func (h *Highlighter) isOwnMark(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Mark {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "class" && a.Val == h.class {
			return true
		}
	}
	return false
}

func (h *Highlighter) collectMarks(n *html.Node, out *[]*html.Node) {
	if h.isOwnMark(n) {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		h.collectMarks(c, out)
	}
}

func (h *Highlighter) clear(root *html.Node) {
	var marks []*html.Node
	h.collectMarks(root, &marks)

	parents := make(map[*html.Node]struct{})
	for _, m := range marks {
		parent := m.Parent
		if parent == nil {
			continue
		}
		for c := m.FirstChild; c != nil; {
			next := c.NextSibling
			m.RemoveChild(c)
			parent.InsertBefore(c, m)
			c = next
		}
		parent.RemoveChild(m)
		parents[parent] = struct{}{}
	}
	for p := range parents {
		mergeText(p)
	}
}

// mergeText joins adjacent text children of n.
func mergeText(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.TextNode && next != nil && next.Type == html.TextNode {
			c.Data += next.Data
			n.RemoveChild(next)
			continue
		}
		c = next
	}
}
