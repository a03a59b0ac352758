package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// XLSReader reads .xls extracts. TEA publishes these as HTML documents with
// the data in a table; the first row is the header.
type XLSReader struct{}

// NewXLSReader creates an .xls reader.
func NewXLSReader() *XLSReader {
	return &XLSReader{}
}

// Format implements Reader.
func (r *XLSReader) Format() Format {
	return FormatXLS
}

// Read implements Reader.
func (r *XLSReader) Read(ctx context.Context, f *File, fn func(Record) error) error {
	doc, err := parseHTMLFile(f.Path)
	if err != nil {
		return err
	}

	var rows []*html.Node
	for _, table := range findAll(doc, "table") {
		rows = append(rows, findAll(table, "tr")...)
	}
	if len(rows) == 0 {
		return nil
	}

	header := cellTexts(rows[0])
	for _, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(zipRecord(header, cellTexts(row))); err != nil {
			return err
		}
	}
	return nil
}

// parseHTMLFile parses an HTML file, decoding it from its declared charset.
func parseHTMLFile(path string) (*html.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	return parseHTML(bytes.NewReader(data))
}

func parseHTML(r io.Reader) (*html.Node, error) {
	utf8, err := charset.NewReader(r, "text/html")
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := html.Parse(utf8)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// findAll returns every element below n with the given tag, in document order.
// Matching elements are not searched further.
func findAll(n *html.Node, tag string) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == tag {
			found = append(found, node)
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return found
}

// cells returns the td and th children of a table row.
func cells(row *html.Node) []*html.Node {
	var out []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
			out = append(out, c)
		}
	}
	return out
}

func cellTexts(row *html.Node) []string {
	cs := cells(row)
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = textContent(c)
	}
	return out
}

// textContent returns the trimmed text below n with whitespace collapsed.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// innerHTML renders the children of n.
func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}
