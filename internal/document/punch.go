package document

import (
	"strings"

	"github.com/dillanmilo/railcore/internal/reports/domain"
)

// LayoutPunchList positions punch items in input order. When less than the
// break reserve is left on a page, the next item starts on a fresh page.
func LayoutPunchList(items []domain.PunchItem, projectName string) Layout {
	b := newBuilder("Punch List Report")
	b.heading("Punch List Report", projectName)
	b.advance(10)

	breakAt := PageHeight - (Margin + punchBreakReserve)
	for _, it := range items {
		if b.y > breakAt {
			b.newPage()
		}
		b.advance(20)
		b.text(Margin, strings.TrimSpace(it.Title), labelStyle)
		b.textRight(it.Status.Label(), Style{Size: BodySize, Bold: true, Color: statusColor(it.Status)})
		if d := strings.TrimSpace(it.Description); d != "" {
			b.advance(lineGap)
			b.text(Margin, d, bodyStyle)
		}
		if a := strings.TrimSpace(it.Assignee); a != "" {
			b.advance(lineGap)
			b.text(Margin, "Assignee: "+a, mutedStyle)
		}
		b.advance(10)
	}
	return b.done("")
}

func statusColor(s domain.PunchStatus) Color {
	switch s {
	case domain.PunchDone:
		return Color{21, 128, 61}
	case domain.PunchInProgress:
		return Color{180, 83, 9}
	}
	return Color{185, 28, 28}
}
