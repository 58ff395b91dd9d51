package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/orgtower/pkg/hris"
	"github.com/matzehuels/orgtower/pkg/orgtree"
)

func testForest() *orgtree.Forest {
	return orgtree.Build([]hris.Employee{
		{ID: "A", DisplayName: "Ada", Title: "CEO", Department: "Exec", Status: hris.StatusActive},
		{ID: "B", ManagerID: "A", DisplayName: "Bob", Status: hris.StatusOnLeave},
		{ID: "C", ManagerID: "B", DisplayName: "Cy", Status: hris.StatusActive},
	}, orgtree.Limits{MaxDepth: 2})
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testForest(), Options{})

	for _, want := range []string{
		"digraph OrgChart {",
		`"A" [label="Ada"];`,
		`"A" -> "B";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"C"`) {
		t.Error("node beyond depth cap rendered")
	}
	if !strings.Contains(dot, `"B" [label="Bob", style="rounded,filled,dashed"];`) {
		t.Errorf("truncated manager not dashed:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(testForest(), Options{Detailed: true, StatusColors: true})
	if !strings.Contains(dot, `label="Ada\nCEO\nExec\nACTIVE"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `color="#eab308"`) {
		t.Errorf("status colour missing:\n%s", dot)
	}
}

func TestQuoteDOT(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Ada", `"Ada"`},
		{`Bob "The Builder"`, `"Bob \"The Builder\""`},
		{`C:\crew`, `"C:\\crew"`},
		{"Ada\nCEO", `"Ada\nCEO"`},
		{"Zo\x00e\x1b[1m\t", `"Zoe[1m"`},
		{"Łukasz Żółć", `"Łukasz Żółć"`},
	}
	for _, tt := range tests {
		if got := quoteDOT(tt.in); got != tt.want {
			t.Errorf("quoteDOT(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToDOTControlCharacters(t *testing.T) {
	f := orgtree.Build([]hris.Employee{
		{ID: "A\x07", DisplayName: "Ada\r", Status: hris.StatusActive},
	}, orgtree.DefaultLimits())
	dot := ToDOT(f, Options{})
	if !strings.Contains(dot, `"A" [label="Ada"];`) {
		t.Errorf("control characters not stripped:\n%s", dot)
	}
	if strings.Contains(dot, `\x`) {
		t.Errorf("Go-style escape in DOT output:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("without viewBox = %s", got)
	}
}
