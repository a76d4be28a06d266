package services

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf"
)

type PDFSection struct {
	Heading string
	Body    string
}

type PlanPDF struct {
	TravelerName string
	Destination  string
	NumDays      int
	Budget       string
	Currency     string
	Summary      string
	Sections     []PDFSection
	Map          *Coordinates
	GeneratedAt  time.Time

	// FontPath is a TrueType font used for non-Latin text. Empty means the
	// first of DefaultFontPaths that exists, then the core Helvetica font.
	FontPath string
}

// DefaultFontPaths are the Unicode fonts tried when PlanPDF.FontPath is empty.
var DefaultFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
}

// LossyTextNote ends a PDF rendered with the core font when letters were dropped.
const LossyTextNote = "Some non-Latin characters could not be shown. Set PDF_FONT_PATH to a Unicode TrueType font."

// GeneratePlanPDF renders a plan and returns raw bytes (no filesystem needed)
func GeneratePlanPDF(data PlanPDF) ([]byte, error) {
	fontBytes, err := loadFont(data.FontPath)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)

	family := "Helvetica"
	lossy := false
	var text func(s string) string
	if fontBytes != nil {
		family = "PlanSans"
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8FontFromBytes(family, style, fontBytes)
		}
		text = withoutPictographs
	} else {
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		text = func(s string) string {
			out, dropped := latin1Only(s)
			lossy = lossy || dropped
			return tr(out)
		}
	}

	// ── Footer ────────────────────────────────────────────────
	pdf.SetFooterFunc(func() {
		pdf.SetY(-18)
		pdf.SetFont(family, "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8, fmt.Sprintf("Generated by Travel Planner - page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(family, "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(170, 10, text("Travel Plan: "+data.Destination), "", 0, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "AI-Powered Travel Research", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont(family, "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 10, "FD")
	pdf.SetXY(23, y+2)
	pdf.MultiCell(164, 4, "AI-generated suggestions and live data snapshots. Verify contacts, prices and schedules before you travel.", "", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	// ── Section Helper ───────────────────────────────────────
	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont(family, "B", 11)
		pdf.CellFormat(170, 8, "  "+text(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont(family, "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont(family, "B", 10)
		pdf.CellFormat(115, 7, text(value), "", 1, "L", false, 0, "")
	}

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	name := data.TravelerName
	if name == "" {
		name = "Guest Traveler"
	}
	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	row("Traveler", name)
	row("Destination", data.Destination)
	row("Duration", fmt.Sprintf("%d days", data.NumDays))
	row("Budget", data.Budget)
	row("Currency", data.Currency)
	if data.Map != nil {
		row("Location", fmt.Sprintf("%.4f, %.4f", data.Map.Lat, data.Map.Lon))
	}
	row("Generated", generated.UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	if data.Summary != "" {
		pdf.SetFont(family, "I", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(170, 5, text(data.Summary), "", "L", false)
		pdf.Ln(4)
	}

	// ── Panels ────────────────────────────────────────────────
	for _, s := range data.Sections {
		sectionHeader(s.Heading)
		pdf.SetFont(family, "", 10)
		pdf.SetTextColor(40, 40, 40)
		pdf.MultiCell(170, 5, text(stripMarkdown(s.Body)), "", "L", false)
		pdf.Ln(4)
	}

	if lossy {
		pdf.SetFont(family, "I", 8)
		pdf.SetTextColor(130, 90, 20)
		pdf.MultiCell(170, 4, LossyTextNote, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

// loadFont reads path, or the first existing default font when path is empty.
// A nil result means the core fonts are used.
func loadFont(path string) ([]byte, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read PDF font: %w", err)
		}
		return b, nil
	}
	for _, candidate := range DefaultFontPaths {
		if b, err := os.ReadFile(candidate); err == nil {
			return b, nil
		}
	}
	return nil, nil
}

// latin1Only drops runes the core PDF fonts cannot draw. dropped reports
// whether any letter or digit was lost, as opposed to emoji alone.
func latin1Only(s string) (out string, dropped bool) {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '€' || r == '–' || r == '—' || r == '’' || r == '“' || r == '”' || r == '•':
			b.WriteRune(r)
		case r <= 0xFF:
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			dropped = true
		}
	}
	return strings.TrimLeft(b.String(), " "), dropped
}

// withoutPictographs keeps every script but drops emoji and their joiners,
// which text fonts have no glyphs for.
func withoutPictographs(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r > 0xFFFF, r == 0x200D, r >= 0xFE00 && r <= 0xFE0F:
		case r >= 0x2190 && unicode.Is(unicode.So, r):
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), " ")
}

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// stripMarkdown removes emphasis markers and turns [title](link) into "title (link)".
func stripMarkdown(s string) string {
	s = strings.NewReplacer("**", "", "__", "", "### ", "", "## ", "", "# ", "").Replace(s)
	return markdownLink.ReplaceAllString(s, "$1 ($2)")
}
