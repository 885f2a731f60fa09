// Package form describes the widget tree a form generator emits.
//
// A form is a closed set of node kinds: Dialog, Wizard and Panel are
// top-level windows, Sizers arrange children, and Controls are leaves.
// Layout parameters are plain structs rather than chained calls, so a
// form can be built in Go with a Builder or loaded from YAML:
//
//	root, err := form.NewDialog("MainDialog", "Settings").
//	    Sizer("main_sizer", form.Props{"orient": "wx.VERTICAL"}).
//	    Control("btn_ok", "wx.Button", form.Props{"label": "OK"}).
//	    On("wx.EVT_BUTTON", "OnOK").
//	    End().
//	    Build()
package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind is the variant of a form node.
type Kind int

const (
	KindInvalid Kind = iota
	Dialog
	Wizard
	Panel
	Sizer
	Control
)

var kindNames = map[Kind]string{
	Dialog:  "dialog",
	Wizard:  "wizard",
	Panel:   "panel",
	Sizer:   "sizer",
	Control: "control",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("form: invalid kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	want := strings.ToLower(strings.TrimSpace(string(text)))
	for kind, name := range kindNames {
		if name == want {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("form: unknown kind %q", text)
}

// TopLevel reports whether k can be the root of a form.
func (k Kind) TopLevel() bool {
	return k == Dialog || k == Wizard || k == Panel
}

// Props are widget constructor arguments, emitted as keyword arguments.
type Props map[string]string

// Keys returns the property names in sorted order.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Layout places a child inside its parent sizer.
type Layout struct {
	Proportion int      `yaml:"proportion,omitempty"`
	Flags      []string `yaml:"flags,omitempty"`
	Border     int      `yaml:"border,omitempty"`
}

// FlagExpr joins the flags with "|", or returns "0" when there are none.
func (l Layout) FlagExpr() string {
	if len(l.Flags) == 0 {
		return "0"
	}
	return strings.Join(l.Flags, "|")
}

// Binding connects an event type to a handler method.
type Binding struct {
	Event   string `yaml:"event"`
	Handler string `yaml:"handler"`
}

// Node is one element of the widget tree.
type Node struct {
	Kind Kind `yaml:"kind"`

	// Name is the class name for top-level nodes and the member name otherwise.
	Name string `yaml:"name"`

	// Class is the toolkit class, e.g. "wx.Button" or "wx.BoxSizer".
	Class string `yaml:"class,omitempty"`

	// Title is the window or wizard page title.
	Title string `yaml:"title,omitempty"`

	Props    Props     `yaml:"props,omitempty"`
	Layout   Layout    `yaml:"layout,omitempty"`
	Events   []Binding `yaml:"events,omitempty"`
	Children []*Node   `yaml:"children,omitempty"`
}

// Walk calls fn for n and every descendant in depth-first order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Handlers returns every distinct handler name bound in the tree, in the
// order they first appear.
func (n *Node) Handlers() []string {
	seen := make(map[string]bool)
	var names []string
	n.Walk(func(node *Node) {
		for _, b := range node.Events {
			if !seen[b.Handler] {
				seen[b.Handler] = true
				names = append(names, b.Handler)
			}
		}
	})
	return names
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("form: invalid form")

// ValidationError reports a node that breaks the nesting rules.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("form: %s: %s", e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Validate checks the nesting rules: the root is a Dialog, Wizard or
// Panel; Wizards hold only Panels (their pages); Controls hold nothing;
// Sizers bind no events; names are non-empty identifiers unique within the form.
func Validate(root *Node) error {
	if root == nil {
		return &ValidationError{Path: "/", Reason: "empty form"}
	}
	if !root.Kind.TopLevel() {
		return &ValidationError{Path: "/" + root.Name, Reason: fmt.Sprintf("%s cannot be a top-level form", root.Kind)}
	}
	seen := make(map[string]string)
	return validate(root, "", seen)
}

func validate(n *Node, parent string, seen map[string]string) error {
	path := parent + "/" + n.Name
	if !isIdent(n.Name) {
		return &ValidationError{Path: path, Reason: fmt.Sprintf("name %q is not an identifier", n.Name)}
	}
	if prev, dup := seen[n.Name]; dup {
		return &ValidationError{Path: path, Reason: "name already used at " + prev}
	}
	seen[n.Name] = path
	if _, ok := kindNames[n.Kind]; !ok {
		return &ValidationError{Path: path, Reason: "missing or unknown kind"}
	}

	if n.Kind == Sizer && len(n.Events) > 0 {
		return &ValidationError{Path: path, Reason: "sizers cannot bind events"}
	}
	for _, b := range n.Events {
		if b.Event == "" || !isIdent(b.Handler) {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("bad event binding %s -> %q", b.Event, b.Handler)}
		}
	}

	for _, c := range n.Children {
		if err := allowChild(n.Kind, c.Kind); err != "" {
			return &ValidationError{Path: path + "/" + c.Name, Reason: err}
		}
		if err := validate(c, path, seen); err != nil {
			return err
		}
	}
	return nil
}

func allowChild(parent, child Kind) string {
	switch parent {
	case Control:
		return "controls cannot hold children"
	case Wizard:
		if child != Panel {
			return "wizard pages must be panels"
		}
	default:
		if child == Dialog || child == Wizard {
			return fmt.Sprintf("%s cannot be nested", child)
		}
	}
	return ""
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
