package report

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inline tags kept by InlineHTML; attributes are dropped except a safe href.
var inlineTags = map[atom.Atom]bool{
	atom.A: true, atom.B: true, atom.Br: true, atom.Code: true, atom.Em: true,
	atom.I: true, atom.P: true, atom.Small: true, atom.Span: true,
	atom.Strong: true, atom.Sub: true, atom.Sup: true, atom.U: true,
}

// dropped with everything inside them
var blockedTags = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Iframe: true, atom.Object: true,
	atom.Embed: true, atom.Noscript: true, atom.Template: true, atom.Title: true,
	atom.Textarea: true, atom.Svg: true, atom.Math: true, atom.Form: true,
}

// InlineHTML reduces externally sourced markup, such as a wiki extract, to a
// small set of inline tags. Other elements are unwrapped; their text stays.
func InlineHTML(v any) template.HTML {
	if v == nil {
		return ""
	}
	src := fmt.Sprintf("%v", v)
	ctx := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(src), ctx)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	var b strings.Builder
	for _, n := range nodes {
		writeInline(&b, n)
	}
	return template.HTML(b.String())
}

func writeInline(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(html.EscapeString(n.Data))
		return
	case html.ElementNode:
	default:
		return
	}
	if blockedTags[n.DataAtom] {
		return
	}
	keep := inlineTags[n.DataAtom]
	if keep {
		b.WriteString("<" + n.Data)
		if n.DataAtom == atom.A {
			if href := safeHref(n); href != "" {
				b.WriteString(` href="` + html.EscapeString(href) + `"`)
			}
		}
		b.WriteString(">")
		if n.DataAtom == atom.Br {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInline(b, c)
	}
	if keep {
		b.WriteString("</" + n.Data + ">")
	}
}

func safeHref(n *html.Node) string {
	for _, a := range n.Attr {
		if a.Namespace != "" || a.Key != "href" {
			continue
		}
		u, err := url.Parse(strings.TrimSpace(a.Val))
		if err != nil {
			return ""
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return u.String()
		}
		return ""
	}
	return ""
}
