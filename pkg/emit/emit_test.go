package emit

import (
	"strings"
	"testing"

	"github.com/keepblock/keepblock/pkg/boundary"
	"github.com/keepblock/keepblock/pkg/form"
)

func mainDialog(t *testing.T) *form.Node {
	t.Helper()
	root, err := form.NewDialog("MainDialog", "Settings").
		On("wx.EVT_INIT_DIALOG", "OnInit").
		Sizer("main_sizer", form.Props{"orient": "wx.VERTICAL"}).
		Control("btn_ok", "wx.Button", form.Props{"label": `"OK"`}).
		Layout(form.Layout{Flags: []string{"wx.ALL"}, Border: 5}).
		On("wx.EVT_BUTTON", "OnOK").
		End().
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return root
}

const wantPython = banner + `
import wx


class MainDialog(wx.Dialog):

    def __init__(self, parent, id=wx.ID_ANY, title="Settings"):
        wx.Dialog.__init__(self, parent, id, title)

        main_sizer = wx.BoxSizer(orient=wx.VERTICAL)

        self.btn_ok = wx.Button(self, wx.ID_ANY, label="OK")
        main_sizer.Add(self.btn_ok, 0, wx.ALL, 5)
        self.SetSizerAndFit(main_sizer)

        # Bind Event handlers
        self.Bind(wx.EVT_INIT_DIALOG, self.OnInit)
        self.Bind(wx.EVT_BUTTON, self.OnOK, self.btn_ok)

    # Event handler functions
    # Add these below the comment block, or to your inherited class.
    """
    def OnInit(self, event):
        event.Skip()

    def OnOK(self, event):
        event.Skip()

    """

`

func TestPython_Generate(t *testing.T) {
	got := Python{}.Generate(mainDialog(t), nil)
	if got != wantPython {
		t.Errorf("Generate() =\n%s\nwant\n%s", got, wantPython)
	}
}

func TestPython_SkipsExistingHandlers(t *testing.T) {
	got := Python{}.Generate(mainDialog(t), map[string]bool{"OnInit": true})
	if !strings.Contains(got, "# Unimplemented Event handler functions") {
		t.Error("missing unimplemented header")
	}
	if strings.Contains(got, "def OnInit") {
		t.Error("stub emitted for a handler the user already wrote")
	}
	if !strings.Contains(got, "def OnOK(self, event):") {
		t.Error("missing OnOK stub")
	}
}

func TestPython_Wizard(t *testing.T) {
	root, err := form.NewWizard("SetupWizard", "Setup").
		On("wx.adv.EVT_WIZARD_BEFORE_PAGE_CHANGED", "OnBeforeChange").
		Page("page1", "Start").
		Sizer("sizer1", form.Props{"orient": "wx.VERTICAL"}).
		Control("intro", "wx.StaticText", form.Props{"label": `"Hello"`}).
		End().
		End().
		Page("page2", "Done").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	got := Python{}.Generate(root, nil)
	for _, want := range []string{
		"import wx.adv\n",
		"class SetupWizard(wx.adv.Wizard):",
		"self.page1 = wx.adv.WizardPageSimple(self)",
		"self.intro = wx.StaticText(self.page1, wx.ID_ANY, label=\"Hello\")",
		"self.page1.SetSizerAndFit(sizer1)",
		"self.page1.Chain(self.page2)",
		"self.GetPageAreaSizer().Add(self.page1)",
		"self.Bind(wx.adv.EVT_WIZARD_BEFORE_PAGE_CHANGED, self.OnBeforeChange)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestPython_NoEvents(t *testing.T) {
	root, err := form.NewPanel("Plain").Control("txt", "wx.StaticText", nil).Build()
	if err != nil {
		t.Fatal(err)
	}
	got := Python{}.Generate(root, nil)
	if strings.Contains(got, "Event handler") || strings.Contains(got, `"""`) {
		t.Errorf("no handler block expected:\n%s", got)
	}
	if !strings.Contains(got, "def __init__(self, parent, id=wx.ID_ANY):") {
		t.Errorf("panel signature:\n%s", got)
	}
}

func TestRuby_Generate(t *testing.T) {
	root := mainDialog(t)
	got := Ruby{}.Generate(root, nil)
	for _, want := range []string{
		"require 'wx'\n",
		"class MainDialog < Wx::Dialog\n",
		"  def initialize(parent, id = Wx::ID_ANY, title = \"Settings\")\n",
		"    super(parent, id, title)\n",
		"    main_sizer = Wx::BoxSizer.new(orient: Wx::VERTICAL)\n",
		"    @btn_ok = Wx::Button.new(self, Wx::ID_ANY, label: \"OK\")\n",
		"    main_sizer.add(@btn_ok, 0, Wx::ALL, 5)\n",
		"    set_sizer_and_fit(main_sizer)\n",
		"    evt_init_dialog(:OnInit)\n",
		"    evt_button(@btn_ok.get_id, :OnOK)\n",
		"  end\n",
		"=begin\n  def OnInit(event)\n    event.skip\n  end\n",
		"=end\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if seed := (Ruby{}).Seed(root); seed != "\nend  # end of MainDialog class\n" {
		t.Errorf("Seed() = %q", seed)
	}
}

func TestExistingHandlers(t *testing.T) {
	marker := boundary.Marker(boundary.Python)
	previous := "gen\n" + marker + "\n" +
		"    def OnInit(self, event):\n" +
		"        event.Skip()\n" +
		"  def  OnOK (self, event):\n" +
		"    # def Commented(self):\n" +
		"    undef = 1\n"

	got := ExistingHandlers(boundary.Python, previous)
	if len(got) != 2 || !got["OnInit"] || !got["OnOK"] {
		t.Errorf("ExistingHandlers() = %v", got)
	}

	if got := ExistingHandlers(boundary.Python, "def OnInit(self):\n"); len(got) != 0 {
		t.Errorf("artifact without marker: %v", got)
	}

	ruby := "gen\n" + boundary.Marker(boundary.Ruby) + "\n  def OnOK(event)\n  end\nend  # end of D class\n"
	if got := ExistingHandlers(boundary.Ruby, ruby); !got["OnOK"] || len(got) != 1 {
		t.Errorf("ruby: %v", got)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"MainDialog":   "main_dialog",
		"DlgIssue_956": "dlg_issue_956",
		"HTTPServer":   "http_server",
		"My_Dialog":    "my_dialog",
		"wizard":       "wizard",
	}
	for in, want := range tests {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFor(t *testing.T) {
	for _, lang := range []boundary.Language{boundary.Python, boundary.Ruby} {
		e, err := For(lang)
		if err != nil {
			t.Fatalf("For(%v): %v", lang, err)
		}
		if e.Language() != lang {
			t.Errorf("Language() = %v", e.Language())
		}
	}
	if _, err := For(boundary.Rust); err == nil {
		t.Error("For(Rust) should fail")
	}
}

func TestRegenerationKeepsUserHandlers(t *testing.T) {
	for _, lang := range []boundary.Language{boundary.Python, boundary.Ruby} {
		t.Run(lang.String(), func(t *testing.T) {
			root := mainDialog(t)
			e, _ := For(lang)

			first, err := boundary.Merger{Lang: lang, Seed: e.Seed(root)}.Merge(e.Generate(root, nil), nil)
			if err != nil {
				t.Fatal(err)
			}

			art, _ := boundary.Split(lang, first)
			userCode := "  def OnOK(event)\n    close\n  end\n"
			if lang == boundary.Python {
				userCode = "    def OnOK(self, event):\n        self.Close()\n"
			}
			edited, err := boundary.Compose(lang, art.Generated, userCode+art.Preserved)
			if err != nil {
				t.Fatal(err)
			}

			existing := ExistingHandlers(lang, edited)
			second, err := boundary.Merge(lang, e.Generate(root, existing), &edited)
			if err != nil {
				t.Fatal(err)
			}
			out, _ := boundary.Split(lang, second)
			if out.Preserved != userCode+art.Preserved {
				t.Errorf("preserved = %q", out.Preserved)
			}
			if strings.Contains(out.Generated, "def OnOK") {
				t.Error("OnOK stub still listed after the user wrote it")
			}
			if !strings.Contains(out.Generated, "Unimplemented Event handler functions") {
				t.Error("header should switch once user handlers exist")
			}
		})
	}
}
