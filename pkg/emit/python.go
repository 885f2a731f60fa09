package emit

import (
	"strings"

	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/form"
)

// Python emits wxPython classes.
type Python struct{}

func (Python) Language() boundary.Language { return boundary.Python }

func (Python) Seed(*form.Node) string { return "" }

func (Python) FileName(root *form.Node) string {
	return SnakeCase(root.Name) + ".py"
}

func (Python) Generate(root *form.Node, existing map[string]bool) string {
	c := &code{unit: "    "}
	c.raw(banner)
	c.line("")
	c.line("import wx")
	if usesAdv(root) {
		c.line("import wx.adv")
	}
	c.line("")
	c.line("")
	c.line("class %s(%s):", root.Name, root.Class)
	c.indent++
	c.line("")

	params := "self, parent, id=wx.ID_ANY"
	args := "self, parent, id"
	if root.Kind != form.Panel {
		params += ", title=" + quote(root.Title)
		args += ", title"
	}
	for _, k := range root.Props.Keys() {
		args += ", " + k + "=" + root.Props[k]
	}
	c.line("def __init__(%s):", params)
	c.indent++
	c.line("%s.__init__(%s)", root.Class, args)

	var pages []string
	for _, child := range root.Children {
		c.line("")
		pyNode(c, child, "self", "")
		if root.Kind == form.Wizard {
			pages = append(pages, "self."+child.Name)
		}
	}
	if len(pages) > 0 {
		c.line("")
		if len(pages) > 1 {
			c.line("%s", pages[0]+".Chain("+strings.Join(pages[1:], ").Chain(")+")")
		}
		c.line("self.GetPageAreaSizer().Add(%s)", pages[0])
	}

	var binds []string
	root.Walk(func(n *form.Node) {
		for _, b := range n.Events {
			if n == root {
				binds = append(binds, "self.Bind("+b.Event+", self."+b.Handler+")")
			} else {
				binds = append(binds, "self.Bind("+b.Event+", self."+b.Handler+", self."+n.Name+")")
			}
		}
	})
	if len(binds) > 0 {
		c.line("")
		c.line("# Bind Event handlers")
		for _, b := range binds {
			c.line("%s", b)
		}
	}
	c.indent--

	missing, found := handlerStubs(root, existing)
	if len(binds) > 0 {
		title, hint := stubHeader(found)
		c.line("")
		c.line("# %s", title)
		c.line("# %s", hint)
		c.line(`"""`)
		for _, name := range missing {
			c.line("def %s(self, event):", name)
			c.line("    event.Skip()")
			c.line("")
		}
		c.line(`"""`)
	}
	c.line("")
	return c.String()
}

// pyNode emits n and its children. window is the parent window expression;
// sizer is the enclosing sizer variable, or "" when n sits directly in a
// window.
func pyNode(c *code, n *form.Node, window, sizer string) {
	switch n.Kind {
	case form.Sizer:
		c.line("%s = %s(%s)", n.Name, n.Class, kwargs(n.Props, nil))
		for _, child := range n.Children {
			c.line("")
			pyNode(c, child, window, n.Name)
		}
		if sizer != "" {
			c.line("%s.Add(%s, %d, %s, %d)", sizer, n.Name, n.Layout.Proportion, n.Layout.FlagExpr(), n.Layout.Border)
		} else {
			c.line("%s.SetSizerAndFit(%s)", window, n.Name)
		}

	default:
		self := "self." + n.Name
		id := "wx.ID_ANY"
		if v, ok := n.Props["id"]; ok {
			id = v
		}
		lead := []string{window}
		if n.Class != "wx.adv.WizardPageSimple" {
			lead = append(lead, id)
		}
		c.line("%s = %s(%s)", self, n.Class, kwargs(n.Props, lead))
		for _, child := range n.Children {
			c.line("")
			pyNode(c, child, self, "")
		}
		if sizer != "" {
			c.line("%s.Add(%s, %d, %s, %d)", sizer, self, n.Layout.Proportion, n.Layout.FlagExpr(), n.Layout.Border)
		}
	}
}

func kwargs(props form.Props, lead []string) string {
	args := append([]string(nil), lead...)
	for _, k := range props.Keys() {
		if k == "id" {
			continue
		}
		args = append(args, k+"="+props[k])
	}
	return strings.Join(args, ", ")
}

func quote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}

func usesAdv(root *form.Node) bool {
	uses := false
	root.Walk(func(n *form.Node) {
		if strings.HasPrefix(n.Class, "wx.adv.") {
			uses = true
		}
		for _, b := range n.Events {
			if strings.HasPrefix(b.Event, "wx.adv.") {
				uses = true
			}
		}
	})
	return uses
}
