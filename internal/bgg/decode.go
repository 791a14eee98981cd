package bgg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Node is one element of a decoded response. Attributes play the role of the
// "$" map, children keep document order.
type Node struct {
	Name     string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// Attr returns the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// Child returns the first child element with the given name.
func (n *Node) Child(name string) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ChildrenNamed returns every child element with the given name, in order.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Decode parses an XML payload into a Node tree and returns the root element.
func Decode(payload []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.Strict = true

	var (
		root  *Node
		stack []*Node
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &DecodeError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			if len(t.Attr) > 0 {
				n.Attrs = make(map[string]string, len(t.Attr))
				for _, a := range t.Attr {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &DecodeError{Err: errors.New("multiple root elements")}
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			top := stack[len(stack)-1]
			top.Text = strings.TrimSpace(top.Text)
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, &DecodeError{Err: errors.New("empty document")}
	}
	return root, nil
}

// DecodeItems decodes a thing or collection payload and returns the nodes at
// items.item. A well-formed payload without items yields ErrEmptyResult.
func DecodeItems(payload []byte) ([]*Node, error) {
	root, err := Decode(payload)
	if err != nil {
		return nil, err
	}
	if root.Name != "items" {
		return nil, ErrEmptyResult
	}
	items := root.ChildrenNamed("item")
	if len(items) == 0 {
		return nil, ErrEmptyResult
	}
	return items, nil
}
