// Package export provides functionality for rendering setlists as
// paginated PDF documents.
package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/bandstand-io/bandstand/internal/domain"
)

// Page geometry in points, A4 portrait.
const (
	pageWidth  = 595.28
	pageHeight = 841.89

	headerBaseline = 52.0
	ruleY          = 64.0
	headerHeight   = 90.0
	bottomMargin   = 36.0
	sideMargin     = 40.0

	headerFontSize = 22.0
	titleFontSize  = 16.0
	smallFontSize  = 10.0

	lineHeightFactor = 1.2
	minLineSpacing   = 5.0

	// PageCapacity is the maximum number of songs rendered on one page.
	PageCapacity = 24
)

// Options control which song annotations are printed.
type Options struct {
	ShowBPM bool `json:"show_bpm"`
	ShowKey bool `json:"show_key"`
}

// PageInfo reports the outcome of rendering a single page.
type PageInfo struct {
	Number    int    `json:"number"`
	FirstSong int    `json:"first_song,omitempty"`
	LastSong  int    `json:"last_song,omitempty"`
	Rendered  bool   `json:"rendered"`
	Error     string `json:"error,omitempty"`
}

// Result describes a finished export. Pages lists every planned page
// and whether it made it into the document, so a failed page is visible
// to the caller instead of silently missing from the output.
type Result struct {
	PDF       []byte     `json:"-"`
	PageCount int        `json:"page_count"`
	SongCount int        `json:"song_count"`
	Pages     []PageInfo `json:"pages"`
}

// ProgressFunc is called after each page with the number of the page
// just finished and the total number of pages.
type ProgressFunc func(page, total int)

// Export renders the setlist as an A4 PDF document.
func Export(set *domain.Setlist, opts Options) (*Result, error) {
	return ExportWithProgress(set, opts, nil)
}

// ExportWithProgress renders the setlist and reports per-page progress.
// The returned Result is populated even when an error is returned; its
// Pages field records which pages rendered before the failure.
func ExportWithProgress(set *domain.Setlist, opts Options, progress ProgressFunc) (*Result, error) {
	if set == nil {
		return nil, errors.New("nil setlist")
	}

	pages := paginate(set.Songs, PageCapacity)
	res := &Result{SongCount: len(set.Songs), Pages: make([]PageInfo, 0, len(pages))}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetTitle(set.Name, true)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if len(pages) == 0 {
		// An empty setlist still produces a printable header-only page.
		pdf.AddPage()
		renderHeader(pdf, tr, set.Name)
		res.Pages = append(res.Pages, PageInfo{Number: 1, Rendered: !pdf.Err()})
	}

	number := 1
	failed := 0
	for i, pageSongs := range pages {
		info := PageInfo{Number: i + 1, FirstSong: number, LastSong: number + len(pageSongs) - 1}
		if pdf.Err() {
			// Document errors are sticky: once one page fails nothing
			// after it can render.
			info.Error = fmt.Sprintf("aborted after earlier failure: %v", pdf.Error())
			failed++
		} else {
			renderPage(pdf, tr, set.Name, pageSongs, number, opts)
			if pdf.Err() {
				info.Error = pdf.Error().Error()
				failed++
			} else {
				info.Rendered = true
			}
		}
		number += len(pageSongs)
		res.Pages = append(res.Pages, info)
		if progress != nil {
			progress(i+1, len(pages))
		}
	}

	if failed > 0 {
		return res, fmt.Errorf("render failed for %d of %d pages: %w", failed, len(pages), pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return res, fmt.Errorf("write pdf: %w", err)
	}
	res.PDF = buf.Bytes()
	res.PageCount = pdf.PageCount()
	return res, nil
}

// renderPage draws the header plus the page's songs, spreading the
// lines evenly over the space below the header.
func renderPage(pdf *fpdf.Fpdf, tr func(string) string, title string, songs []domain.Song, firstNumber int, opts Options) {
	pdf.AddPage()
	renderHeader(pdf, tr, title)

	available := pageHeight - headerHeight - bottomMargin
	lineHeight := titleFontSize * lineHeightFactor
	spacing := lineSpacing(available, lineHeight, len(songs))

	y := headerHeight
	for i := range songs {
		y += spacing + lineHeight
		renderLine(pdf, tr, firstNumber+i, songs[i], opts, y)
	}
}

// renderHeader puts the setlist name and a horizontal rule on every
// page, so the sheet stays identifiable on a music stand.
func renderHeader(pdf *fpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", headerFontSize)
	text := tr(title)
	w := pdf.GetStringWidth(text)
	pdf.Text((pageWidth-w)/2, headerBaseline, text)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(sideMargin, ruleY, pageWidth-sideMargin, ruleY)
}

// renderLine centers one composed song line. Each segment is measured
// and drawn in its own font: the number and labels stay small while the
// title, BPM value and key carry the large bold face.
func renderLine(pdf *fpdf.Fpdf, tr func(string) string, number int, song domain.Song, opts Options, y float64) {
	segs := lineSegments(number, song, opts)

	texts := make([]string, len(segs))
	widths := make([]float64, len(segs))
	total := 0.0
	for i, seg := range segs {
		setFont(pdf, seg.font)
		texts[i] = tr(seg.text)
		widths[i] = pdf.GetStringWidth(texts[i])
		total += widths[i]
	}

	x := (pageWidth - total) / 2
	for i, seg := range segs {
		setFont(pdf, seg.font)
		pdf.Text(x, y, texts[i])
		x += widths[i]
	}
}

func setFont(pdf *fpdf.Fpdf, class fontClass) {
	if class == fontLarge {
		pdf.SetFont("Helvetica", "B", titleFontSize)
		return
	}
	pdf.SetFont("Helvetica", "", smallFontSize)
}
