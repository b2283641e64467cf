// Package parser compiles a structure document and a template workbook into
// the report model.
package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is an element of the structure document.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	// Text is the concatenated character data directly inside the element.
	Text string
	Line int
}

// Attr returns the trimmed value of an attribute.
func (n *Node) Attr(name string) string {
	return strings.TrimSpace(n.Attrs[name])
}

// ParseXML reads a structure document into an element tree.
func ParseXML(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Node
	var stack []*Node
	var text []*strings.Builder
	line, counted := 1, int64(0)
	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedStructure, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			line += bytes.Count(data[counted:offset], []byte("\n"))
			counted = offset
			n := &Node{
				Name:  t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
				Line:  line,
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("%w: multiple root elements", ErrMalformedStructure)
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})
		case xml.EndElement:
			top := stack[len(stack)-1]
			top.Text = text[len(text)-1].String()
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedStructure)
	}
	return root, nil
}
