package xref

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func parse(t *testing.T, doc string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func body(t *testing.T, root *html.Node) string {
	t.Helper()
	b := findFirst(root, atom.Body)
	require.NotNil(t, b)
	var sb strings.Builder
	for c := b.FirstChild; c != nil; c = c.NextSibling {
		require.NoError(t, html.Render(&sb, c))
	}
	return sb.String()
}

func TestNumberIndependentCounters(t *testing.T) {
	root := parse(t, `<html><body>
<p><table-ref></table-ref> <table-ref>x</table-ref></p>
<table-num></table-num>
<p><table-ref></table-ref><fig-ref></fig-ref></p>
<table-num></table-num><fig-num></fig-num>
</body></html>`)

	counts := Number(root)
	out := body(t, root)

	assert.Equal(t, Counts{TagTableRef: 3, TagTableNum: 2, TagFigRef: 1, TagFigNum: 1}, counts)
	assert.Contains(t, out, "<table-ref>Table 1</table-ref> <table-ref>Table 2</table-ref>")
	assert.Contains(t, out, "<table-ref>Table 3</table-ref>")
	assert.Equal(t, 1, strings.Count(out, "<table-num>Table 1.</table-num>"))
	assert.Equal(t, 1, strings.Count(out, "<table-num>Table 2.</table-num>"))
	assert.Contains(t, out, "<fig-ref>Figure 1</fig-ref>")
	assert.Contains(t, out, "<fig-num>Figure 1</fig-num>")
}

func TestResolveSharesNumberForRepeatedKey(t *testing.T) {
	root := parse(t, `<html><body><p>a<ref>A</ref> b<ref>A</ref></p><references></references></body></html>`)
	r := Resolver{References: map[string]string{"A": "Alpha et al."}}

	cites, err := r.Resolve(root)
	require.NoError(t, err)
	out := body(t, root)

	require.Len(t, cites, 1)
	assert.Equal(t, Citation{Number: 1, Key: "A", Text: "Alpha et al.", Known: true}, cites[0])
	assert.Equal(t, 2, strings.Count(out, `<sup class="ref">1</sup>`))
	assert.Equal(t, 1, strings.Count(out, "<li "))
	assert.Contains(t, out, `<ol class="references"><li id="ref-1">Alpha et al.</li></ol>`)
}

func TestResolveFirstSeenOrder(t *testing.T) {
	root := parse(t, `<html><body><ref>A</ref><ref>B</ref><ref>A</ref><references></references></body></html>`)
	r := Resolver{References: map[string]string{"A": "a", "B": "b"}, Link: true}

	cites, err := r.Resolve(root)
	require.NoError(t, err)
	out := body(t, root)

	require.Len(t, cites, 2)
	assert.Equal(t, "A", cites[0].Key)
	assert.Equal(t, "B", cites[1].Key)
	assert.Equal(t,
		`<sup class="ref"><a href="#ref-1">1</a></sup><sup class="ref"><a href="#ref-2">2</a></sup><sup class="ref"><a href="#ref-1">1</a></sup>`+
			`<ol class="references"><li id="ref-1">a</li><li id="ref-2">b</li></ol>`,
		out)
}

func TestResolveMultipleKeysInOneMarker(t *testing.T) {
	root := parse(t, `<html><body><ref> B ; A;; </ref></body></html>`)
	r := Resolver{References: map[string]string{"A": "a", "B": "b"}}

	cites, err := r.Resolve(root)
	require.NoError(t, err)
	out := body(t, root)

	require.Len(t, cites, 2)
	assert.Contains(t, out, `<sup class="ref">1,2</sup>`)
	// no placeholder: the list is appended to body
	assert.True(t, strings.HasSuffix(out, `<ol class="references"><li id="ref-1">b</li><li id="ref-2">a</li></ol>`))
}

func TestResolveAssemblyMethod(t *testing.T) {
	root := parse(t, `<html><body><p>Assembled with SPAdes<ref type="assembly">SPAdes</ref>.</p>`+
		`<p>Polished<ref type="Assembly">NoSuchTool</ref>.</p><references></references></body></html>`)
	r := Resolver{
		References: map[string]string{"Bankevich2012": "Bankevich A, <i>et al.</i>"},
		Methods:    NewMethods(nil),
	}

	cites, err := r.Resolve(root)
	require.NoError(t, err)
	out := body(t, root)

	require.Len(t, cites, 1)
	assert.Equal(t, "Bankevich2012", cites[0].Key)
	assert.Contains(t, out, `SPAdes<sup class="ref">1</sup>.`)
	assert.Contains(t, out, "<p>Polished.</p>")
	assert.Contains(t, out, `<li id="ref-1">Bankevich A, <i>et al.</i></li>`)
	assert.NotContains(t, out, "<ref")
}

func TestResolveUnknownKeyStillNumbered(t *testing.T) {
	root := parse(t, `<html><body><ref>Missing</ref><references></references></body></html>`)

	cites, err := Resolver{}.Resolve(root)
	require.NoError(t, err)

	require.Len(t, cites, 1)
	assert.False(t, cites[0].Known)
	assert.Contains(t, body(t, root), `<li id="ref-1"></li>`)
}

func TestResolveWithoutCitationsDropsPlaceholder(t *testing.T) {
	root := parse(t, `<html><body><p>none</p><references></references></body></html>`)

	cites, err := Resolver{}.Resolve(root)
	require.NoError(t, err)
	assert.Empty(t, cites)
	assert.Equal(t, `<p>none</p><ol class="references"></ol>`, body(t, root))
}

func TestResolveIsDeterministic(t *testing.T) {
	doc := `<html><body><ref>B</ref><ref>A;B</ref><table-ref></table-ref></body></html>`
	run := func() string {
		root := parse(t, doc)
		Number(root)
		_, err := Resolver{References: map[string]string{"A": "a", "B": "b"}, Link: true}.Resolve(root)
		require.NoError(t, err)
		var sb strings.Builder
		require.NoError(t, html.Render(&sb, root))
		return sb.String()
	}
	assert.Equal(t, run(), run())
}

func TestMethodsLookup(t *testing.T) {
	m := NewMethods(map[string]string{"MyAssembler": "Me2024", "spades": "Override", " ": "x"})

	key, ok := m.Lookup("SPADES")
	assert.True(t, ok)
	assert.Equal(t, "Override", key)

	key, ok = m.Lookup("myassembler")
	assert.True(t, ok)
	assert.Equal(t, "Me2024", key)

	_, ok = m.Lookup("unknown")
	assert.False(t, ok)
	assert.Contains(t, m.Names(), "canu")
}

func TestCatalogLoadAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "references.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"A": "first"}`), 0o644))

	c, err := NewCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, "first", c.Entries()["A"])
	assert.EqualValues(t, 1, c.Snapshot().Version)

	changed := make(chan Snapshot, 4)
	c.OnChange(func(s Snapshot) {
		select {
		case changed <- s:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(`{"A": "second", "B": "new"}`), 0o644)
		select {
		case snap := <-changed:
			return snap.Entries["A"] == "second"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
	assert.Equal(t, "new", c.Entries()["B"])

	cancel()
	assert.NoError(t, <-done)
}

func TestCatalogErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewCatalog(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["not", "an", "object"]`), 0o644))
	_, err = NewCatalog(bad)
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = NewCatalog("")
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

func TestStaticCatalogSnapshotIsCopy(t *testing.T) {
	c := NewStaticCatalog(map[string]string{"A": "a"})
	c.Entries()["A"] = "changed"
	assert.Equal(t, "a", c.Entries()["A"])
}
