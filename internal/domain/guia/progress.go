package guia

import "math"

// Progress aggregates the delivery state of every note in a trip.
type Progress struct {
	Total        int
	Delivered    int
	NotDelivered int
	Finalized    int
	Pending      int
}

// Summarize computes trip-level counters over all notes of a trip.
func Summarize(notes []*DeliveryNote) Progress {
	p := Progress{Total: len(notes)}
	for _, n := range notes {
		switch n.Status {
		case StatusDelivered:
			p.Delivered++
		case StatusNotDelivered:
			p.NotDelivered++
		}
	}
	p.Finalized = p.Delivered + p.NotDelivered
	p.Pending = p.Total - p.Finalized
	return p
}

// SuccessRate is the progress ratio: delivered over all notes, in percent.
// Used on every progress event.
func (p Progress) SuccessRate() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(float64(p.Delivered) / float64(p.Total) * 100))
}

// DeliveryQuality is the completion ratio: delivered over finalized notes,
// in percent. Only meaningful once a trip completes; intentionally a
// different ratio than SuccessRate.
func (p Progress) DeliveryQuality() int {
	if p.Finalized == 0 {
		return 0
	}
	return int(math.Round(float64(p.Delivered) / float64(p.Finalized) * 100))
}

// Complete reports whether every note of the trip is finalized.
func (p Progress) Complete() bool {
	return p.Total > 0 && p.Finalized == p.Total
}

// AllInvoicesCovered reports whether every invoice of a trip has at least
// one delivery note. This is the trigger for pending -> in_progress: no
// invoice may still be waiting for its first note. Invoices with zero notes
// keep the trip pending; finalization of notes is tracked separately.
func AllInvoicesCovered(invoiceNumbers []string, notes []*DeliveryNote) bool {
	if len(invoiceNumbers) == 0 || len(notes) == 0 {
		return false
	}
	covered := make(map[string]bool, len(notes))
	for _, n := range notes {
		covered[n.InvoiceNumber] = true
	}
	for _, num := range invoiceNumbers {
		if !covered[num] {
			return false
		}
	}
	return true
}
