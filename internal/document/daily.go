package document

import (
	"strings"
	"time"

	"github.com/dillanmilo/railcore/internal/reports/domain"
)

const (
	sectionGap = 28.0
	lineGap    = 14.0
)

// LayoutDailyReport positions a daily report on a single page. Lines that
// would cross the bottom limit are dropped.
func LayoutDailyReport(r domain.DailyReport, projectName string, now time.Time) Layout {
	b := newBuilder("Daily Construction Report")
	b.heading("Daily Construction Report", projectName)
	b.textRight("Date: "+r.ReportDate.Format(longDate), lineStyle)

	limit := singlePageLimit()

	b.advance(sectionGap)
	b.text(Margin, "Crew:", labelStyle)
	b.advance(16)
	b.text(Margin, strings.TrimSpace(r.Crew), bodyStyle)

	b.section("Activities:", r.ActivityLines(), limit)
	if q := strings.TrimSpace(r.Quantities); q != "" {
		b.section("Quantities:", splitText(q), limit)
	}
	if bl := strings.TrimSpace(r.Blockers); bl != "" {
		b.section("Blockers:", splitText(bl), limit)
	}
	return b.done(generatedOn(now))
}

func (b *builder) section(header string, lines []string, limit float64) {
	if !b.fits(sectionGap, limit) {
		return
	}
	b.advance(sectionGap)
	b.text(Margin, header, sectionStyle)
	b.advance(4)
	for _, l := range lines {
		if !b.fits(lineGap, limit) {
			return
		}
		b.advance(lineGap)
		b.text(Margin, l, bodyStyle)
	}
}

func splitText(s string) []string {
	return domain.DailyReport{Activities: s}.ActivityLines()
}
