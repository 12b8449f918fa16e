package xref

import (
	"strconv"
	"strings"

	"genomereport/internal/logger"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Marker tags handled by the Resolver.
const (
	TagRef        = "ref"
	TagReferences = "references"

	assemblyType = "assembly"
)

// Citation is one numbered bibliography entry.
type Citation struct {
	Number int    `json:"number"`
	Key    string `json:"key"`
	Text   string `json:"text"`
	Known  bool   `json:"known"`
}

// Resolver numbers citation markers in document order.
type Resolver struct {
	// References maps citation keys to display text, which may hold inline HTML.
	References map[string]string
	Methods    Methods
	// Link wraps each number in an anchor to its bibliography entry.
	Link bool
}

// Resolve rewrites every <ref> marker under root as a numbered superscript
// and renders the bibliography in place of <references>. A key cited more
// than once keeps the number it got on first sight. The returned citations
// are in number order.
func (r Resolver) Resolve(root *html.Node) ([]Citation, error) {
	var (
		numbers   = map[string]int{}
		citations []Citation
	)
	assign := func(key string) int {
		if n, ok := numbers[key]; ok {
			return n
		}
		n := len(citations) + 1
		numbers[key] = n
		text, known := r.References[key]
		if !known {
			logger.Warnf("citation key %q has no reference entry", key)
		}
		citations = append(citations, Citation{Number: n, Key: key, Text: text, Known: known})
		return n
	}

	for _, marker := range collect(root, TagRef) {
		keys := r.markerKeys(marker)
		if len(keys) == 0 {
			replace(marker, nil)
			continue
		}
		nums := make([]int, 0, len(keys))
		for _, key := range keys {
			nums = append(nums, assign(key))
		}
		replace(marker, r.superscript(nums))
	}

	list, err := bibliography(citations)
	if err != nil {
		return nil, err
	}
	placeholders := collect(root, TagReferences)
	switch {
	case len(placeholders) > 0:
		replace(placeholders[0], list)
		for _, extra := range placeholders[1:] {
			replace(extra, nil)
		}
	case len(citations) > 0:
		parent := findFirst(root, atom.Body)
		if parent == nil {
			parent = root
		}
		parent.AppendChild(list)
	}
	return citations, nil
}

func (r Resolver) markerKeys(marker *html.Node) []string {
	content := strings.TrimSpace(textContent(marker))
	if strings.EqualFold(strings.TrimSpace(getAttr(marker, "type")), assemblyType) {
		key, ok := r.Methods.Lookup(content)
		if !ok {
			logger.Warnf("no citation for assembly method %q; dropping marker", content)
			return nil
		}
		return []string{key}
	}
	var keys []string
	for _, part := range strings.Split(content, ";") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

func (r Resolver) superscript(nums []int) *html.Node {
	sup := newElement(atom.Sup, "class", "ref")
	for i, n := range nums {
		if i > 0 {
			sup.AppendChild(&html.Node{Type: html.TextNode, Data: ","})
		}
		label := strconv.Itoa(n)
		if !r.Link {
			sup.AppendChild(&html.Node{Type: html.TextNode, Data: label})
			continue
		}
		a := newElement(atom.A, "href", "#ref-"+label)
		a.AppendChild(&html.Node{Type: html.TextNode, Data: label})
		sup.AppendChild(a)
	}
	return sup
}

func bibliography(citations []Citation) (*html.Node, error) {
	ol := newElement(atom.Ol, "class", "references")
	for _, c := range citations {
		li := newElement(atom.Li, "id", "ref-"+strconv.Itoa(c.Number))
		nodes, err := html.ParseFragment(strings.NewReader(c.Text), newElement(atom.Li))
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			li.AppendChild(n)
		}
		ol.AppendChild(li)
	}
	return ol, nil
}
