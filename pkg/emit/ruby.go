package emit

import (
	"strings"

	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/form"
)

// Ruby emits wxRuby3 classes. The class is closed by the seed, below the
// boundary marker, so user methods stay inside it.
type Ruby struct{}

func (Ruby) Language() boundary.Language { return boundary.Ruby }

func (Ruby) Seed(root *form.Node) string {
	return "\nend  # end of " + root.Name + " class\n"
}

func (Ruby) FileName(root *form.Node) string {
	return SnakeCase(root.Name) + ".rb"
}

func (Ruby) Generate(root *form.Node, existing map[string]bool) string {
	c := &code{unit: "  "}
	c.raw(banner)
	c.line("")
	c.line("require 'wx'")
	c.line("")
	c.line("class %s < %s", root.Name, rb(root.Class))
	c.indent++
	c.line("")

	params := "parent, id = Wx::ID_ANY"
	args := "parent, id"
	if root.Kind != form.Panel {
		params += ", title = " + quote(root.Title)
		args += ", title"
	}
	for _, k := range root.Props.Keys() {
		args += ", " + k + ": " + rb(root.Props[k])
	}
	c.line("def initialize(%s)", params)
	c.indent++
	c.line("super(%s)", args)

	var pages []string
	for _, child := range root.Children {
		c.line("")
		rbNode(c, child, "self", "")
		if root.Kind == form.Wizard {
			pages = append(pages, "@"+child.Name)
		}
	}
	if len(pages) > 0 {
		c.line("")
		if len(pages) > 1 {
			c.line("%s", pages[0]+".chain("+strings.Join(pages[1:], ").chain(")+")")
		}
		c.line("get_page_area_sizer.add(%s)", pages[0])
	}

	var binds []string
	root.Walk(func(n *form.Node) {
		for _, b := range n.Events {
			method := rbEvent(b.Event)
			if n == root {
				binds = append(binds, method+"(:"+b.Handler+")")
			} else {
				binds = append(binds, method+"(@"+n.Name+".get_id, :"+b.Handler+")")
			}
		}
	})
	if len(binds) > 0 {
		c.line("")
		c.line("# Event handlers")
		for _, b := range binds {
			c.line("%s", b)
		}
	}
	c.indent--
	c.line("end")

	missing, found := handlerStubs(root, existing)
	if len(binds) > 0 {
		title, hint := stubHeader(found)
		c.line("")
		c.line("# %s", title)
		c.line("# %s", hint)
		c.line("")
		c.raw("=begin\n")
		for _, name := range missing {
			c.line("def %s(event)", name)
			c.line("  event.skip")
			c.line("end")
			c.line("")
		}
		c.raw("=end\n")
	}
	c.line("")
	return c.String()
}

func rbNode(c *code, n *form.Node, window, sizer string) {
	switch n.Kind {
	case form.Sizer:
		c.line("%s = %s.new(%s)", n.Name, rb(n.Class), rbArgs(n.Props, nil))
		for _, child := range n.Children {
			c.line("")
			rbNode(c, child, window, n.Name)
		}
		if sizer != "" {
			c.line("%s.add(%s, %d, %s, %d)", sizer, n.Name, n.Layout.Proportion, rb(n.Layout.FlagExpr()), n.Layout.Border)
		} else if window == "self" {
			c.line("set_sizer_and_fit(%s)", n.Name)
		} else {
			c.line("%s.set_sizer_and_fit(%s)", window, n.Name)
		}

	default:
		self := "@" + n.Name
		id := "Wx::ID_ANY"
		if v, ok := n.Props["id"]; ok {
			id = rb(v)
		}
		lead := []string{window}
		if n.Class != "wx.adv.WizardPageSimple" {
			lead = append(lead, id)
		}
		c.line("%s = %s.new(%s)", self, rb(n.Class), rbArgs(n.Props, lead))
		for _, child := range n.Children {
			c.line("")
			rbNode(c, child, self, "")
		}
		if sizer != "" {
			c.line("%s.add(%s, %d, %s, %d)", sizer, self, n.Layout.Proportion, rb(n.Layout.FlagExpr()), n.Layout.Border)
		}
	}
}

func rbArgs(props form.Props, lead []string) string {
	args := append([]string(nil), lead...)
	for _, k := range props.Keys() {
		if k == "id" {
			continue
		}
		args = append(args, k+": "+rb(props[k]))
	}
	return strings.Join(args, ", ")
}

// rb rewrites wxPython references such as "wx.adv.Wizard" or
// "wx.ALL|wx.EXPAND" into wxRuby constants.
func rb(expr string) string {
	return wxPrefix.ReplaceAllString(expr, "Wx::")
}

// rbEvent maps "wx.EVT_BUTTON" to the wxRuby binder "evt_button".
func rbEvent(event string) string {
	name := event
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(name)
}
