package diag

import "testing"

func TestBagFormatShortSortsAndDedups(t *testing.T) {
	bag := NewBag(10)
	r := BagReporter{Bag: bag}
	ReportWarning(r, GraphUnresolvedType, "demo.area", "unresolved type \"demo.Shape\"").Emit()
	ReportError(r, GraphMissingName, "demo", "function without a name").
		WithNote("demo#3", "declaration index 3").
		Emit()
	ReportWarning(r, GraphUnresolvedType, "demo.area", "unresolved type \"demo.Shape\"").Emit()

	bag.Dedup()
	bag.Sort()

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics after dedup, got %d", bag.Len())
	}
	if !bag.HasErrors() {
		t.Fatalf("expected errors")
	}

	expected := "error GRF1004 demo function without a name\n" +
		"note GRF1004 demo#3 declaration index 3\n" +
		"warning GRF1001 demo.area unresolved type \"demo.Shape\""
	if got := bag.FormatShort(true); got != expected {
		t.Fatalf("unexpected output:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagRespectsLimit(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(New(SevInfo, ExportInlineClass, "demo.Meters", "skipped")) {
		t.Fatalf("first add must succeed")
	}
	if bag.Add(New(SevInfo, ExportInlineClass, "demo.Meters", "skipped")) {
		t.Fatalf("second add must be rejected")
	}
	other := NewBag(4)
	other.Add(New(SevWarning, GraphBadModifier, "x", "y"))
	bag.Merge(other)
	if bag.Len() != 2 || bag.Cap() < 2 {
		t.Fatalf("merge must grow the limit, len=%d cap=%d", bag.Len(), bag.Cap())
	}
}

func TestCodeID(t *testing.T) {
	if GraphUnresolvedType.ID() != "GRF1001" {
		t.Fatalf("unexpected id %s", GraphUnresolvedType.ID())
	}
	if ExportInlineClass.ID() != "EXP3001" {
		t.Fatalf("unexpected id %s", ExportInlineClass.ID())
	}
}
