package document

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/dillanmilo/railcore/internal/reports/domain"
)

// Options configure a Renderer. The zero value renders compressed documents
// stamped with the current UTC time.
type Options struct {
	Now      func() time.Time
	Location *time.Location
	// Uncompressed leaves content streams readable, which tests rely on.
	Uncompressed bool
	// RegularFont and BoldFont are TrueType files used for all text. They
	// default to the Go fonts, which cover Latin, Greek and Cyrillic scripts.
	RegularFont []byte
	BoldFont    []byte
}

// textFamily is the name the embedded fonts are registered under.
const textFamily = "body"

// Renderer turns records into PDF bytes. It holds no mutable state and is
// safe for concurrent use.
type Renderer struct {
	now      func() time.Time
	loc      *time.Location
	compress bool
	regular  []byte
	bold     []byte
}

func New(opts Options) *Renderer {
	r := &Renderer{
		now:      opts.Now,
		loc:      opts.Location,
		compress: !opts.Uncompressed,
		regular:  opts.RegularFont,
		bold:     opts.BoldFont,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.loc == nil {
		r.loc = time.UTC
	}
	if len(r.regular) == 0 {
		r.regular = goregular.TTF
	}
	if len(r.bold) == 0 {
		r.bold = gobold.TTF
	}
	return r
}

func (r *Renderer) today() time.Time { return r.now().In(r.loc) }

func (r *Renderer) RenderDailyReport(rep domain.DailyReport, projectName string) ([]byte, error) {
	return r.Paint(LayoutDailyReport(rep, projectName, r.today()))
}

func (r *Renderer) RenderPunchList(items []domain.PunchItem, projectName string) ([]byte, error) {
	return r.Paint(LayoutPunchList(items, projectName))
}

func (r *Renderer) RenderChecklist(sub domain.ChecklistSubmission, tpl domain.ChecklistTemplate, projectName string) ([]byte, error) {
	return r.Paint(LayoutChecklist(sub, tpl, projectName))
}

// Paint writes a layout to PDF.
func (r *Renderer) Paint(l Layout) ([]byte, error) {
	now := r.today()
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, Margin)
	pdf.SetCompression(r.compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(now)
	pdf.SetModificationDate(now)
	pdf.SetTitle(l.Title, true)
	pdf.SetCreator("railcore", true)
	pdf.AddUTF8FontFromBytes(textFamily, "", r.regular)
	pdf.AddUTF8FontFromBytes(textFamily, "B", r.bold)

	p := painter{pdf: pdf}
	total := len(l.Pages)
	for i, pg := range l.Pages {
		pdf.AddPage()
		for _, run := range pg.Runs {
			p.run(run)
		}
		p.footer(l.Footer, i+1, total)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render %q: %w", l.Title, err)
	}
	return buf.Bytes(), nil
}

type painter struct {
	pdf *fpdf.Fpdf
}

// Leading glyphs of formatted checklist values map to ZapfDingbats codes.
var dingbats = map[string]string{
	"✓": "3",
	"✗": "7",
}

func (p painter) setStyle(st Style) {
	style := ""
	if st.Bold {
		style = "B"
	}
	p.pdf.SetFont(textFamily, style, st.Size)
	p.pdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
}

func (p painter) run(r Run) {
	mark, text := splitMark(r.Text)
	p.setStyle(r.Style)

	width := p.pdf.GetStringWidth(text)
	markWidth := 0.0
	if mark != "" {
		p.pdf.SetFont("ZapfDingbats", "", r.Style.Size)
		markWidth = p.pdf.GetStringWidth(mark) + r.Style.Size/3
		p.setStyle(r.Style)
	}

	x := r.X
	if r.AlignRight {
		x -= width + markWidth
	}
	if mark != "" {
		p.pdf.SetFont("ZapfDingbats", "", r.Style.Size)
		p.pdf.Text(x, r.Y, mark)
		p.setStyle(r.Style)
		x += markWidth
	}
	p.pdf.Text(x, r.Y, text)
}

func (p painter) footer(text string, page, total int) {
	y := PageHeight - Margin/2
	p.setStyle(footerStyle)
	if text != "" {
		p.pdf.Text(Margin, y, text)
	}
	if total > 1 {
		label := fmt.Sprintf("Page %d of %d", page, total)
		p.pdf.Text(PageWidth-Margin-p.pdf.GetStringWidth(label), y, label)
	}
}

// splitMark separates a leading check or cross glyph from the rest of the text.
func splitMark(s string) (mark, rest string) {
	for glyph, code := range dingbats {
		if strings.HasPrefix(s, glyph) {
			return code, strings.TrimSpace(strings.TrimPrefix(s, glyph))
		}
	}
	return "", s
}

// ShowText returns the text showing operation the painter writes for s into
// an uncompressed content stream. Text is UTF-16BE in a literal string.
func ShowText(s string) []byte {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for _, u := range utf16.Encode([]rune(s)) {
		for _, b := range [2]byte{byte(u >> 8), byte(u)} {
			switch b {
			case '\\', '(', ')':
				buf.WriteByte('\\')
			case '\r':
				buf.WriteString(`\r`)
				continue
			}
			buf.WriteByte(b)
		}
	}
	buf.WriteString(") Tj")
	return buf.Bytes()
}
