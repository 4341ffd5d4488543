package ui

import (
	"strconv"
	"strings"
)

// Node types understood by the browser renderer.
const (
	TypePage    = "page"
	TypeTitle   = "title"
	TypeBanner  = "banner"
	TypeColumns = "columns"
	TypeColumn  = "column"
	TypeRadio   = "radio"
	TypeSlider  = "slider"
	TypeText    = "text"
	TypeRegion  = "region"
)

// Banner levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Node is a UI view tree node with an ID, type, props, and children.
type Node struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Props    map[string]string `json:"props,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// N creates a new node with the given id and type.
func N(id, typ string) *Node {
	return &Node{
		ID:    id,
		Type:  typ,
		Props: make(map[string]string),
	}
}

// Prop sets a property on the node and returns it for chaining.
func (n *Node) Prop(k, v string) *Node {
	n.Props[k] = v
	return n
}

// PropInt sets an integer property.
func (n *Node) PropInt(k string, v int) *Node {
	n.Props[k] = strconv.Itoa(v)
	return n
}

// Text sets the "text" property.
func (n *Node) Text(s string) *Node {
	return n.Prop("text", s)
}

// Child appends child nodes and returns the parent for chaining.
func (n *Node) Child(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Find returns the first node in the tree with id, depth first.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// --- Node types (convenience constructors) ---

// Page creates the root node.
func Page(id string, children ...*Node) *Node {
	return N(id, TypePage).Child(children...)
}

// Title creates a page heading.
func Title(id, text string) *Node {
	return N(id, TypeTitle).Text(text)
}

// Banner creates a coloured message box. level is one of the Level constants.
func Banner(id, level, text string) *Node {
	return N(id, TypeBanner).Prop("level", level).Text(text)
}

// Columns lays its children out side by side.
func Columns(id string, columns ...*Node) *Node {
	return N(id, TypeColumns).Child(columns...)
}

// Column is one column inside Columns.
func Column(id string, children ...*Node) *Node {
	return N(id, TypeColumn).Child(children...)
}

// Paragraph creates a static text node.
func Paragraph(id, text string) *Node {
	return N(id, TypeText).Text(text)
}

// Radio creates a single-choice input bound to state key.
func Radio(id, key, label string, options []string, selected string) *Node {
	return N(id, TypeRadio).
		Prop("key", key).
		Prop("label", label).
		Prop("options", strings.Join(options, "\n")).
		Prop("value", selected)
}

// Slider creates an integer input bound to state key.
func Slider(id, key, label string, minimum, maximum, value int) *Node {
	return N(id, TypeSlider).
		Prop("key", key).
		Prop("label", label).
		PropInt("min", minimum).
		PropInt("max", maximum).
		PropInt("value", value)
}

// RegionNode creates the placeholder for r, carrying its current content.
func RegionNode(r *Region) *Node {
	text, version := r.Content()
	return N(r.ID(), TypeRegion).
		Text(text).
		Prop("version", strconv.FormatUint(version, 10))
}
