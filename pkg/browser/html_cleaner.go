package browser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// CleanedPage is page source reduced to its locatable structure.
type CleanedPage struct {
	Title     string
	HTML      string
	Truncated bool
}

// elements removed together with their subtree
var droppedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"embed":    true,
	"object":   true,
}

var blockElements = map[string]bool{
	"html": true, "head": true, "body": true,
	"div": true, "p": true, "section": true, "article": true, "header": true,
	"footer": true, "nav": true, "main": true, "aside": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "table": true, "tr": true, "td": true,
	"th": true, "form": true, "fieldset": true, "blockquote": true, "pre": true,
	"iframe": true, "dialog": true,
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// attributes kept on every element; they back the id, name and className
// locator strategies
var keptAttributes = map[string]bool{
	"id":          true,
	"name":        true,
	"class":       true,
	"role":        true,
	"title":       true,
	"aria-label":  true,
	"placeholder": true,
}

var keptTagAttributes = map[string][]string{
	"a":        {"href", "target"},
	"img":      {"src", "alt"},
	"input":    {"type", "value", "checked", "disabled"},
	"textarea": {"disabled"},
	"select":   {"multiple", "disabled"},
	"option":   {"value", "selected"},
	"button":   {"type", "disabled"},
	"form":     {"action", "method"},
	"label":    {"for"},
	"iframe":   {"src"},
}

// CleanPageSource strips scripts, styles, comments and presentational
// attributes from raw page source. Output is cut at maxLength characters of
// text and markup when maxLength is positive.
func CleanPageSource(raw string, maxLength int) (*CleanedPage, error) {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page source: %w", err)
	}

	w := &cleanWriter{limit: maxLength}
	w.children(doc, 0)

	return &CleanedPage{
		Title:     findTitle(doc),
		HTML:      strings.TrimSpace(w.out.String()),
		Truncated: w.truncated,
	}, nil
}

type cleanWriter struct {
	out       strings.Builder
	count     int // runes written
	limit     int
	truncated bool
}

// write appends s, truncating at the limit on a rune boundary. It reports
// false once the limit has been reached.
func (w *cleanWriter) write(s string) bool {
	if w.truncated {
		return false
	}
	n := utf8.RuneCountInString(s)
	if w.limit > 0 && w.count+n > w.limit {
		cut := 0
		for keep := w.limit - w.count; keep > 0; keep-- {
			_, size := utf8.DecodeRuneInString(s[cut:])
			cut += size
		}
		w.out.WriteString(s[:cut])
		w.out.WriteString("...")
		w.count = w.limit
		w.truncated = true
		return false
	}
	w.out.WriteString(s)
	w.count += n
	return true
}

func (w *cleanWriter) node(n *html.Node, depth int) {
	switch n.Type {
	case html.TextNode:
		if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
			w.write(html.EscapeString(text))
		}
	case html.ElementNode:
		w.element(n, depth)
	case html.DocumentNode:
		w.children(n, depth)
	}
}

func (w *cleanWriter) children(n *html.Node, depth int) {
	for c := n.FirstChild; c != nil && !w.truncated; c = c.NextSibling {
		w.node(c, depth)
	}
}

func (w *cleanWriter) element(n *html.Node, depth int) {
	tag := strings.ToLower(n.Data)
	if droppedElements[tag] {
		return
	}

	block := blockElements[tag]
	if block && depth > 0 {
		w.write("\n" + strings.Repeat("  ", depth))
	}

	var open strings.Builder
	open.WriteString("<" + tag)
	for _, attr := range n.Attr {
		if keepAttribute(tag, attr.Key) {
			fmt.Fprintf(&open, ` %s="%s"`, attr.Key, html.EscapeString(attr.Val))
		}
	}
	open.WriteString(">")
	if !w.write(open.String()) {
		return
	}

	if voidElements[tag] {
		return
	}

	w.children(n, depth+1)

	if block && hasBlockChild(n) {
		w.write("\n" + strings.Repeat("  ", depth))
	}
	w.write("</" + tag + ">")
}

// hasBlockChild reports whether n has a rendered block element child. Only
// then does its closing tag go on its own line.
func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		tag := strings.ToLower(c.Data)
		if blockElements[tag] && !droppedElements[tag] {
			return true
		}
	}
	return false
}

func keepAttribute(tag, key string) bool {
	key = strings.ToLower(key)
	if keptAttributes[key] || strings.HasPrefix(key, "data-") {
		return true
	}
	for _, k := range keptTagAttributes[tag] {
		if k == key {
			return true
		}
	}
	return false
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}
