package dom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dmitrijs2005/hlsync/internal/page/agent"
)

var _ agent.Document[*html.Node] = (*Document)(nil)
var _ agent.Highlighter[*html.Node] = (*Highlighter)(nil)

func parse(t *testing.T, src string) *Document {
	t.Helper()
	d, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return d
}

func render(t *testing.T, d *Document) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, d.Render(&buf))
	return buf.String()
}

func TestHighlight_WrapsMatchesCaseInsensitively(t *testing.T) {
	d := parse(t, `<html><body><p>Go is fun. GO go!</p></body></html>`)
	h := NewHighlighter(d)

	h.Highlight(d.Body(), []string{"go"}, false)

	assert.Equal(t, 3, h.Count(d.Body()))
	assert.Contains(t, render(t, d), `<mark class="hlsync-mark">Go</mark> is fun. <mark class="hlsync-mark">GO</mark>`)
	assert.Equal(t, "Go is fun. GO go!", d.Text(d.Body()))
}

func TestHighlight_SkipsScriptStyleAndExistingMarks(t *testing.T) {
	d := parse(t, `<html><head><style>.alpha{}</style></head><body>
		<script>var alpha = 1;</script><p>alpha</p><textarea>alpha</textarea></body></html>`)
	h := NewHighlighter(d)

	h.Highlight(d.Body(), []string{"alpha"}, false)
	assert.Equal(t, 1, h.Count(d.Body()))

	// A second incremental pass does not nest marks.
	h.Highlight(d.Body(), []string{"alpha"}, false)
	assert.Equal(t, 1, h.Count(d.Body()))
	assert.NotContains(t, render(t, d), "<mark class=\"hlsync-mark\"><mark")
}

func TestHighlight_LongestKeywordWins(t *testing.T) {
	d := parse(t, `<html><body><p>foobar</p></body></html>`)
	h := NewHighlighter(d)

	h.Highlight(d.Body(), []string{"foo", "foobar"}, false)
	assert.Contains(t, render(t, d), `<mark class="hlsync-mark">foobar</mark>`)
	assert.Equal(t, 1, h.Count(d.Body()))
}

func TestHighlight_KeywordsAreLiteral(t *testing.T) {
	d := parse(t, `<html><body><p>a.b axb</p></body></html>`)
	h := NewHighlighter(d)

	h.Highlight(d.Body(), []string{"a.b"}, false)
	assert.Equal(t, 1, h.Count(d.Body()))
}

func TestHighlight_FullRescanReplacesOldKeywords(t *testing.T) {
	d := parse(t, `<html><body><p>alpha beta</p></body></html>`)
	h := NewHighlighter(d)

	h.Highlight(d.Body(), []string{"alpha"}, false)
	h.Highlight(d.Body(), []string{"beta"}, true)

	out := render(t, d)
	assert.Contains(t, out, `alpha <mark class="hlsync-mark">beta</mark>`)
	assert.Equal(t, 1, h.Count(d.Body()))
}

func TestHighlight_NoKeywordsIsNoop(t *testing.T) {
	d := parse(t, `<html><body><p>alpha</p></body></html>`)
	h := NewHighlighter(d)

	before := render(t, d)
	h.Highlight(d.Body(), nil, false)
	h.Highlight(d.Body(), []string{"  "}, false)
	assert.Equal(t, before, render(t, d))
}

func TestClearHighlighted_RestoresText(t *testing.T) {
	src := `<html><head></head><body><p>one alpha two alpha</p></body></html>`
	d := parse(t, src)
	h := NewHighlighter(d)
	before := render(t, d)

	h.Highlight(d.Body(), []string{"alpha"}, false)
	require.Equal(t, 2, h.Count(d.Body()))

	h.ClearHighlighted(d.Body())
	assert.Equal(t, 0, h.Count(d.Body()))
	assert.Equal(t, before, render(t, d))

	p := d.Body().FirstChild
	require.NotNil(t, p)
	assert.Equal(t, html.TextNode, p.FirstChild.Type)
	assert.Nil(t, p.FirstChild.NextSibling)
}

func TestClearHighlighted_LeavesForeignMarks(t *testing.T) {
	d := parse(t, `<html><body><mark>keep</mark></body></html>`)
	h := NewHighlighter(d)

	h.ClearHighlighted(d.Body())
	assert.Contains(t, render(t, d), "<mark>keep</mark>")
}

func TestAppendHTML_NotifiesObservers(t *testing.T) {
	d := parse(t, `<html><body><p>start</p></body></html>`)

	var got []agent.MutationRecord[*html.Node]
	disconnect := d.Observe(func(r []agent.MutationRecord[*html.Node]) { got = append(got, r...) })

	nodes, err := d.AppendHTML(`<div>alpha</div>tail`)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	require.Len(t, got, 1)
	assert.Equal(t, nodes, got[0].Added)
	assert.True(t, d.IsElement(nodes[0]))
	assert.False(t, d.IsElement(nodes[1]))
	assert.Same(t, d.Body(), nodes[0].Parent)

	disconnect()
	_, err = d.AppendHTML(`<div>beta</div>`)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestAppendHTML_IncrementalPassOnlyTouchesFragment(t *testing.T) {
	d := parse(t, `<html><body><p>alpha</p></body></html>`)
	h := NewHighlighter(d)

	nodes, err := d.AppendHTML(`<div>alpha</div>`)
	require.NoError(t, err)

	h.Highlight(nodes[0], []string{"alpha"}, false)
	assert.Equal(t, 1, h.Count(d.Body()))
	assert.Equal(t, 1, h.Count(nodes[0]))
}

func TestParse_SynthesisesBody(t *testing.T) {
	d := parse(t, `just text`)
	assert.Equal(t, "just text", d.Text(d.Body()))
}
