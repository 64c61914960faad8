package guia

import "testing"

func note(invoice string, status Status) *DeliveryNote {
	return &DeliveryNote{InvoiceNumber: invoice, Status: status}
}

func TestSummarize(t *testing.T) {
	notes := []*DeliveryNote{
		note("F-1", StatusDelivered),
		note("F-1", StatusNotDelivered),
		note("F-2", StatusLinked),
	}

	p := Summarize(notes)
	if p.Total != 3 || p.Delivered != 1 || p.NotDelivered != 1 || p.Finalized != 2 || p.Pending != 1 {
		t.Errorf("unexpected counters: %+v", p)
	}
	if p.Complete() {
		t.Error("trip with a pending note must not be complete")
	}
}

func TestRatiosAreDistinct(t *testing.T) {
	// one delivered, one not delivered, both finalized
	p := Summarize([]*DeliveryNote{
		note("F-1", StatusDelivered),
		note("F-1", StatusNotDelivered),
	})

	if !p.Complete() {
		t.Fatal("two finalized notes out of two must complete the trip")
	}
	if got := p.SuccessRate(); got != 50 {
		t.Errorf("SuccessRate: got %d, want 50", got)
	}
	if got := p.DeliveryQuality(); got != 50 {
		t.Errorf("DeliveryQuality: got %d, want 50", got)
	}

	// with a third note still pending the two ratios diverge
	p = Summarize([]*DeliveryNote{
		note("F-1", StatusDelivered),
		note("F-1", StatusNotDelivered),
		note("F-2", StatusLinked),
	})
	if got := p.SuccessRate(); got != 33 {
		t.Errorf("SuccessRate over total: got %d, want 33", got)
	}
	if got := p.DeliveryQuality(); got != 50 {
		t.Errorf("DeliveryQuality over finalized: got %d, want 50", got)
	}
}

func TestRatiosWithZeroCounts(t *testing.T) {
	var p Progress
	if p.SuccessRate() != 0 || p.DeliveryQuality() != 0 {
		t.Error("empty progress must not divide by zero")
	}
	if p.Complete() {
		t.Error("a trip without notes is never complete")
	}
}

func TestAllInvoicesCovered(t *testing.T) {
	invoices := []string{"F-1", "F-2"}

	if AllInvoicesCovered(invoices, nil) {
		t.Error("no notes: not covered")
	}
	if AllInvoicesCovered(nil, []*DeliveryNote{note("F-1", StatusLinked)}) {
		t.Error("no invoices: not covered")
	}
	if AllInvoicesCovered(invoices, []*DeliveryNote{note("F-1", StatusLinked)}) {
		t.Error("F-2 has no note: not covered")
	}
	if !AllInvoicesCovered(invoices, []*DeliveryNote{
		note("F-1", StatusLinked),
		note("F-2", StatusLinked),
	}) {
		t.Error("every invoice has a note: covered")
	}

	// coverage counts any note, finalized or not
	if !AllInvoicesCovered(invoices, []*DeliveryNote{
		note("F-1", StatusNotDelivered),
		note("F-2", StatusLinked),
	}) {
		t.Error("finalized notes still cover their invoice")
	}
}
