package svgdoc

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/svg2png/pkg/errors"
)

// Namespace is the SVG namespace written when the root lacks an xmlns attribute.
const Namespace = "http://www.w3.org/2000/svg"

// Element is a parsed <svg> root detached from the fragment it was found in.
// An Element is not safe for concurrent mutation.
type Element struct {
	node *html.Node
}

// Parse parses markup as an HTML fragment and returns its first <svg>
// element. It fails with errors.ErrCodeNoSVGRoot when none is present.
func Parse(markup string) (*Element, error) {
	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), container)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse markup")
	}

	for _, n := range nodes {
		if root := findSVG(n); root != nil {
			if root.Parent != nil {
				root.Parent.RemoveChild(root)
			}
			return &Element{node: root}, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNoSVGRoot, "no SVG element found in the provided content")
}

// findSVG walks n depth-first and returns the first svg element.
func findSVG(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "svg" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSVG(c); found != nil {
			return found
		}
	}
	return nil
}

// Attr returns the value of the attribute key and whether it is present.
// Prefixed attributes are addressed as "prefix:key", e.g. "xmlns:xlink".
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.node.Attr {
		if attrName(a) == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the attribute key is present.
func (e *Element) HasAttr(key string) bool {
	_, ok := e.Attr(key)
	return ok
}

// SetAttr sets an unprefixed attribute, replacing any existing value.
func (e *Element) SetAttr(key, val string) {
	for i, a := range e.node.Attr {
		if attrName(a) == key {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: key, Val: val})
}

// EnsureNamespace sets xmlns to the SVG namespace when it is absent.
// It reports whether the attribute was added.
func (e *Element) EnsureNamespace() bool {
	if e.HasAttr("xmlns") {
		return false
	}
	e.SetAttr("xmlns", Namespace)
	return true
}

// Markup serializes the element and its subtree.
func (e *Element) Markup() ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.node); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "serialize svg")
	}
	return buf.Bytes(), nil
}

func attrName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}
