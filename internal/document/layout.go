// Package document renders reporting records into US Letter PDF documents.
//
// Rendering happens in two steps. A layout function turns a record into pages
// of positioned text runs; this step is pure and carries the exact strings a
// reader will see. The painter then writes those runs with fpdf. Coordinates
// are points measured from the top-left corner, Y being the text baseline.
package document

import (
	"time"
)

const (
	PageWidth  = 612.0
	PageHeight = 792.0
	Margin     = 50.0

	TitleSize   = 20.0
	SectionSize = 14.0
	LabelSize   = 12.0
	BodySize    = 10.0
	FooterSize  = 8.0

	// ValueColumn is the checklist value offset from the left margin.
	ValueColumn = 150.0

	// Content stops this far above the bottom margin on single page documents.
	bottomReserve = 50.0
	// Punch lists break to a new page once less than this is left above the bottom margin.
	punchBreakReserve = 100.0

	longDate = "January 2, 2006"
)

type Color struct{ R, G, B int }

var (
	Black = Color{0, 0, 0}
	Gray  = Color{128, 128, 128}
	// TitleBlue is RGB(0.118, 0.251, 0.686).
	TitleBlue = Color{30, 64, 175}
)

type Style struct {
	Size  float64
	Bold  bool
	Color Color
}

var (
	titleStyle   = Style{Size: TitleSize, Bold: true, Color: TitleBlue}
	sectionStyle = Style{Size: SectionSize, Bold: true, Color: Black}
	labelStyle   = Style{Size: LabelSize, Bold: true, Color: Black}
	lineStyle    = Style{Size: LabelSize, Color: Black}
	bodyStyle    = Style{Size: BodySize, Color: Black}
	mutedStyle   = Style{Size: BodySize, Color: Gray}
	footerStyle  = Style{Size: FooterSize, Color: Gray}
)

// Run is one line of text. When AlignRight is set, X is the right edge.
type Run struct {
	X, Y       float64
	Text       string
	Style      Style
	AlignRight bool
}

type Page struct {
	Runs []Run
}

// Layout is a fully positioned document.
type Layout struct {
	Title  string
	Pages  []Page
	Footer string
}

// Texts returns every run's text in paint order.
func (l Layout) Texts() []string {
	var out []string
	for _, p := range l.Pages {
		for _, r := range p.Runs {
			out = append(out, r.Text)
		}
	}
	return out
}

// builder tracks the write position and appends runs to the current page.
type builder struct {
	layout Layout
	y      float64
}

func newBuilder(title string) *builder {
	b := &builder{layout: Layout{Title: title}}
	b.newPage()
	return b
}

func (b *builder) newPage() {
	b.layout.Pages = append(b.layout.Pages, Page{})
	b.y = Margin
}

func (b *builder) page() *Page { return &b.layout.Pages[len(b.layout.Pages)-1] }

func (b *builder) text(x float64, s string, st Style) {
	if s == "" {
		return
	}
	b.page().Runs = append(b.page().Runs, Run{X: x, Y: b.y, Text: s, Style: st})
}

func (b *builder) textRight(s string, st Style) {
	b.page().Runs = append(b.page().Runs, Run{X: PageWidth - Margin, Y: b.y, Text: s, Style: st, AlignRight: true})
}

// advance moves the baseline down by dy.
func (b *builder) advance(dy float64) { b.y += dy }

// fits reports whether a line advanced by dy stays above limit.
func (b *builder) fits(dy, limit float64) bool { return b.y+dy <= limit }

// done closes the layout. Only daily reports carry a footer line; multi-page
// documents still get page numbers from the painter.
func (b *builder) done(footer string) Layout {
	b.layout.Footer = footer
	return b.layout
}

// heading writes the title and the project line shared by every document.
func (b *builder) heading(title, projectName string) {
	b.advance(TitleSize)
	b.text(Margin, title, titleStyle)
	b.advance(30)
	b.text(Margin, "Project: "+projectName, lineStyle)
}

func singlePageLimit() float64 { return PageHeight - Margin - bottomReserve }

func generatedOn(now time.Time) string {
	return "Generated on " + now.Format(longDate)
}
