package document

import "github.com/dillanmilo/railcore/internal/reports/domain"

const (
	CheckedText   = "✓ Yes"
	UncheckedText = "✗ No"
	MissingText   = "N/A"
)

// FormatValue renders a checklist answer. A nil or empty value is "N/A".
func FormatValue(v *domain.Value) string {
	if v == nil || v.IsZero() {
		return MissingText
	}
	if b, ok := v.Bool(); ok {
		if b {
			return CheckedText
		}
		return UncheckedText
	}
	if s := v.String(); s != "" {
		return s
	}
	return MissingText
}

// LayoutChecklist writes one label/value row per template field, in template
// order, until the page is full.
func LayoutChecklist(sub domain.ChecklistSubmission, tpl domain.ChecklistTemplate, projectName string) Layout {
	b := newBuilder("Checklist Report")
	b.heading("Checklist Report", projectName)
	b.advance(20)
	b.text(Margin, "Checklist: "+tpl.Name, lineStyle)
	b.advance(10)

	limit := singlePageLimit()
	for _, f := range tpl.Fields {
		if !b.fits(20, limit) {
			break
		}
		b.advance(20)
		label := f.Label
		if label == "" {
			label = f.Key
		}
		b.text(Margin, label, labelStyle)

		var val *domain.Value
		if v, ok := sub.Values[f.Key]; ok {
			val = &v
		}
		b.text(Margin+ValueColumn, FormatValue(val), bodyStyle)
	}
	return b.done("")
}
