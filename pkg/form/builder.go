package form

import "fmt"

// Builder assembles a form tree. Methods chain; the first error sticks and
// is returned by Build.
type Builder struct {
	root  *Node
	stack []*Node
	last  *Node
	err   error
}

func newBuilder(kind Kind, name, title, class string) *Builder {
	root := &Node{Kind: kind, Name: name, Title: title, Class: class}
	return &Builder{root: root, stack: []*Node{root}, last: root}
}

// NewDialog starts a dialog form.
func NewDialog(name, title string) *Builder {
	return newBuilder(Dialog, name, title, "wx.Dialog")
}

// NewWizard starts a wizard form. Add pages with Page.
func NewWizard(name, title string) *Builder {
	return newBuilder(Wizard, name, title, "wx.adv.Wizard")
}

// NewPanel starts a panel form.
func NewPanel(name string) *Builder {
	return newBuilder(Panel, name, "", "wx.Panel")
}

func (b *Builder) current() *Node {
	return b.stack[len(b.stack)-1]
}

func (b *Builder) add(n *Node, push bool) *Builder {
	if b.err != nil {
		return b
	}
	parent := b.current()
	if reason := allowChild(parent.Kind, n.Kind); reason != "" {
		b.err = &ValidationError{Path: parent.Name + "/" + n.Name, Reason: reason}
		return b
	}
	parent.Children = append(parent.Children, n)
	b.last = n
	if push {
		b.stack = append(b.stack, n)
	}
	return b
}

// Page adds a wizard page and descends into it.
func (b *Builder) Page(name, title string) *Builder {
	return b.add(&Node{Kind: Panel, Name: name, Title: title, Class: "wx.adv.WizardPageSimple"}, true)
}

// Sizer adds a box sizer and descends into it.
func (b *Builder) Sizer(name string, props Props) *Builder {
	return b.add(&Node{Kind: Sizer, Name: name, Class: "wx.BoxSizer", Props: props}, true)
}

// Panel adds a child panel and descends into it.
func (b *Builder) Panel(name string, props Props) *Builder {
	return b.add(&Node{Kind: Panel, Name: name, Class: "wx.Panel", Props: props}, true)
}

// Control adds a leaf widget.
func (b *Builder) Control(name, class string, props Props) *Builder {
	return b.add(&Node{Kind: Control, Name: name, Class: class, Props: props}, false)
}

// Layout sets the layout of the most recently added node.
func (b *Builder) Layout(l Layout) *Builder {
	if b.err == nil {
		b.last.Layout = l
	}
	return b
}

// On binds an event of the most recently added node to a handler.
func (b *Builder) On(event, handler string) *Builder {
	if b.err == nil {
		b.last.Events = append(b.last.Events, Binding{Event: event, Handler: handler})
	}
	return b
}

// End returns to the parent of the current container.
func (b *Builder) End() *Builder {
	if b.err != nil {
		return b
	}
	if len(b.stack) == 1 {
		b.err = fmt.Errorf("%w: End called on the root %s", ErrInvalid, b.root.Kind)
		return b
	}
	b.last = b.current()
	b.stack = b.stack[:len(b.stack)-1]
	return b
}

// Build validates and returns the form. Open containers are closed.
func (b *Builder) Build() (*Node, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := Validate(b.root); err != nil {
		return nil, err
	}
	return b.root, nil
}
