package form

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleDialog(t *testing.T) *Node {
	t.Helper()
	root, err := NewDialog("MainDialog", "Settings").
		On("wx.EVT_INIT_DIALOG", "OnInit").
		Sizer("main_sizer", Props{"orient": "wx.VERTICAL"}).
		Control("name_ctrl", "wx.TextCtrl", Props{"value": `""`}).
		Layout(Layout{Proportion: 1, Flags: []string{"wx.EXPAND", "wx.ALL"}, Border: 5}).
		Control("btn_ok", "wx.Button", Props{"label": `"OK"`, "id": "wx.ID_OK"}).
		On("wx.EVT_BUTTON", "OnOK").
		End().
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return root
}

func TestBuilder_Dialog(t *testing.T) {
	root := sampleDialog(t)
	if root.Kind != Dialog || root.Class != "wx.Dialog" {
		t.Errorf("root = %v %q", root.Kind, root.Class)
	}
	if len(root.Children) != 1 || root.Children[0].Kind != Sizer {
		t.Fatalf("children = %+v", root.Children)
	}
	sizer := root.Children[0]
	if len(sizer.Children) != 2 {
		t.Fatalf("sizer children = %d", len(sizer.Children))
	}
	if got := sizer.Children[0].Layout.FlagExpr(); got != "wx.EXPAND|wx.ALL" {
		t.Errorf("FlagExpr = %q", got)
	}
	if got := root.Handlers(); strings.Join(got, ",") != "OnInit,OnOK" {
		t.Errorf("Handlers() = %v", got)
	}
}

func TestBuilder_Wizard(t *testing.T) {
	root, err := NewWizard("SetupWizard", "Setup").
		Page("page_start", "Welcome").
		Sizer("start_sizer", nil).
		Control("intro", "wx.StaticText", Props{"label": `"Hello"`}).
		End().
		End().
		Page("page_done", "Done").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("pages = %d", len(root.Children))
	}
	for _, page := range root.Children {
		if page.Kind != Panel {
			t.Errorf("page %s kind = %v", page.Name, page.Kind)
		}
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Node, error)
	}{
		{
			name: "sizer directly in wizard",
			build: func() (*Node, error) {
				return NewWizard("W", "").Sizer("s", nil).Build()
			},
		},
		{
			name: "end on root",
			build: func() (*Node, error) {
				return NewDialog("D", "").End().Build()
			},
		},
		{
			name: "duplicate names",
			build: func() (*Node, error) {
				return NewPanel("P").Control("a", "wx.Button", nil).Control("a", "wx.Button", nil).Build()
			},
		},
		{
			name: "bad handler name",
			build: func() (*Node, error) {
				return NewPanel("P").Control("a", "wx.Button", nil).On("wx.EVT_BUTTON", "on click").Build()
			},
		},
		{
			name: "bad member name",
			build: func() (*Node, error) {
				return NewPanel("P").Control("1st", "wx.Button", nil).Build()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("nil: %v", err)
	}
	err := Validate(&Node{Kind: Control, Name: "x"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(verr.Reason, "top-level") {
		t.Errorf("Reason = %q", verr.Reason)
	}

	leaf := &Node{Kind: Panel, Name: "P", Children: []*Node{
		{Kind: Control, Name: "c", Children: []*Node{{Kind: Control, Name: "d"}}},
	}}
	if err := Validate(leaf); !errors.Is(err, ErrInvalid) {
		t.Errorf("control with children: %v", err)
	}
}

const dialogYAML = `kind: dialog
name: MainDialog
title: Settings
class: wx.Dialog
events:
  - event: wx.EVT_INIT_DIALOG
    handler: OnInit
children:
  - kind: sizer
    name: main_sizer
    class: wx.BoxSizer
    props:
      orient: wx.VERTICAL
    children:
      - kind: control
        name: btn_ok
        class: wx.Button
        props:
          label: '"OK"'
        layout:
          flags: [wx.ALL]
          border: 5
        events:
          - event: wx.EVT_BUTTON
            handler: OnOK
`

func TestParse(t *testing.T) {
	root, err := Parse([]byte(dialogYAML))
	if err != nil {
		t.Fatal(err)
	}
	if root.Kind != Dialog || root.Name != "MainDialog" {
		t.Errorf("root = %v %q", root.Kind, root.Name)
	}
	btn := root.Children[0].Children[0]
	if btn.Props["label"] != `"OK"` || btn.Layout.Border != 5 {
		t.Errorf("btn = %+v", btn)
	}
	if got := root.Handlers(); len(got) != 2 {
		t.Errorf("Handlers() = %v", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"unknown field", "kind: dialog\nname: D\ncolour: red\n"},
		{"unknown kind", "kind: frame\nname: D\n"},
		{"control root", "kind: control\nname: D\n"},
		{"not yaml", "kind: [dialog\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	root := sampleDialog(t)
	data, err := Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(Marshal()): %v\n%s", err, data)
	}
	if strings.Join(back.Handlers(), ",") != strings.Join(root.Handlers(), ",") {
		t.Errorf("handlers changed: %v vs %v", back.Handlers(), root.Handlers())
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.yaml")
	if err := os.WriteFile(path, []byte(dialogYAML), 0644); err != nil {
		t.Fatal(err)
	}
	root, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if root.Title != "Settings" {
		t.Errorf("Title = %q", root.Title)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestKind_Text(t *testing.T) {
	for kind, name := range kindNames {
		var back Kind
		if err := back.UnmarshalText([]byte(strings.ToUpper(name))); err != nil || back != kind {
			t.Errorf("UnmarshalText(%q) = %v, %v", name, back, err)
		}
	}
	if _, err := KindInvalid.MarshalText(); err == nil {
		t.Error("MarshalText(KindInvalid) should fail")
	}
}
