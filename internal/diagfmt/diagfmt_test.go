package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"bridgegen/internal/diag"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(10)
	rep := diag.BagReporter{Bag: bag}
	diag.ReportError(rep, diag.GraphBadDeclKind, "demo.x", `unknown declaration kind "bogus"`).Emit()
	diag.ReportWarning(rep, diag.GraphUnresolvedType, "demo.area", `unresolved type "demo.Shape"`).
		WithNote("demo.Shape", "not declared in the graph").Emit()
	return bag
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatShort, "Pretty": FormatPretty, "json": FormatJSON, "sarif": FormatSarif} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Errorf("expected error for unknown format")
	}
}

func TestPrettyWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	if err := Pretty(&buf, sampleBag(), PrettyOpts{ShowNotes: true, Unit: "demo"}); err != nil {
		t.Fatal(err)
	}
	want := `demo: error GRF1003 demo.x: unknown declaration kind "bogus"
demo: warning GRF1001 demo.area: unresolved type "demo.Shape"
    = note: demo.Shape: not declared in the graph
1 error(s), 1 warning(s)
`
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestJSONRespectsMax(t *testing.T) {
	out := BuildDiagnosticsOutput([]UnitBag{{Unit: "demo", Bag: sampleBag()}}, JSONOpts{Max: 1})
	if out.Count != 2 || len(out.Diagnostics) != 1 {
		t.Fatalf("count=%d len=%d, want 2 and 1", out.Count, len(out.Diagnostics))
	}
	if out.Diagnostics[0].Code != "GRF1003" || out.Diagnostics[0].Unit != "demo" {
		t.Fatalf("unexpected first diagnostic: %+v", out.Diagnostics[0])
	}
}

func TestSarifLog(t *testing.T) {
	var buf bytes.Buffer
	err := Sarif(&buf, []UnitBag{{Unit: "demo", Bag: sampleBag()}}, SarifRunMeta{ToolName: "bridgegen", ToolVersion: "test"})
	if err != nil {
		t.Fatal(err)
	}
	var log struct {
		Version string `json:"version"`
		Runs    []struct {
			Tool struct {
				Driver struct {
					Rules []struct {
						ID string `json:"id"`
					} `json:"rules"`
				} `json:"driver"`
			} `json:"tool"`
			Invocations []struct {
				ExecutionSuccessful bool `json:"executionSuccessful"`
			} `json:"invocations"`
			Results []struct {
				Level string `json:"level"`
			} `json:"results"`
		} `json:"runs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("invalid SARIF JSON: %v", err)
	}
	run := log.Runs[0]
	if log.Version != "2.1.0" || len(run.Results) != 2 {
		t.Fatalf("unexpected log: %+v", log)
	}
	if run.Tool.Driver.Rules[0].ID != "GRF1001" {
		t.Fatalf("rules not sorted by code: %+v", run.Tool.Driver.Rules)
	}
	if run.Invocations[0].ExecutionSuccessful {
		t.Fatalf("errors must mark the invocation unsuccessful")
	}
	if !strings.Contains(buf.String(), `"demo::demo.area"`) {
		t.Fatalf("missing logical location:\n%s", buf.String())
	}
}
