package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	gofpdf "github.com/go-pdf/fpdf"
	"github.com/waftester/dorkshot/pkg/defaults"
	"github.com/waftester/dorkshot/pkg/runner"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	pageMargin  = 10.0 // mm
	headerH     = 8.0
	lineH       = 5.0
	footerSpace = 12.0
)

// RenderPDF writes a contact sheet for s to w: a cover page with the run
// details and an outcome table, then one page per saved screenshot.
// compress controls stream compression.
func RenderPDF(w io.Writer, s *runner.Summary, compress bool) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, footerSpace)
	pdf.SetTitle("Dork screenshots for "+s.Domain, true)
	pdf.SetCreator(defaults.ToolName+" "+defaults.Version, true)
	pdf.SetCreationDate(s.StartedAt)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	titleCase := cases.Title(language.English)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pageMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, lineH, fmt.Sprintf("%s - page %d", s.RunID, pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	addCover(pdf, s, tr, titleCase)

	for _, o := range s.Outcomes {
		if !o.IsCaptured() {
			continue
		}
		if err := addCapturePage(pdf, o, tr, titleCase); err != nil {
			return err
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

func addCover(pdf *gofpdf.Fpdf, s *runner.Summary, tr func(string) string, titleCase cases.Caser) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 12, tr("Dork screenshots: "+s.Domain), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	captured, skipped, waits := s.Counts()
	rows := [][2]string{
		{"Run ID", s.RunID},
		{"Target", s.Target},
		{"Registrable domain", RegistrableDomain(s.Domain)},
		{"Started", s.StartedAt.Format(time.RFC3339)},
		{"Duration", s.Duration().Round(time.Second).String()},
		{"Directory", s.Dir},
		{"Captured", fmt.Sprintf("%d", captured)},
		{"Skipped", fmt.Sprintf("%d", skipped)},
		{"Captured before ready", fmt.Sprintf("%d", waits)},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(80, 80, 80)
		pdf.CellFormat(50, 6, row[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(30, 30, 30)
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Outcome table
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(30, 41, 59)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(30, 7, "Engine", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(0, 7, "Query", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for i, o := range s.Outcomes {
		if i%2 == 0 {
			pdf.SetFillColor(245, 247, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(30, 6, titleCase.String(o.Engine), "1", 0, "L", true, 0, "")
		switch {
		case !o.IsCaptured():
			pdf.SetTextColor(217, 119, 6)
		case o.Result.WaitError != "":
			pdf.SetTextColor(202, 138, 4)
		default:
			pdf.SetTextColor(22, 163, 74)
		}
		pdf.CellFormat(25, 6, string(o.Status), "1", 0, "C", true, 0, "")
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(0, 6, tr(o.Query), "1", 1, "L", true, 0, "")
	}
}

func addCapturePage(pdf *gofpdf.Fpdf, o runner.Outcome, tr func(string) string, titleCase cases.Caser) error {
	r := o.Result
	data, err := os.ReadFile(r.FilePath)
	if err != nil {
		return fmt.Errorf("contact sheet: %w", err)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, headerH, tr(titleCase.String(o.Engine)+": "+o.Query), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, lineH, tr(r.URL), "", 1, "L", false, 0, "")
	if r.WaitError != "" {
		pdf.SetTextColor(202, 138, 4)
		pdf.CellFormat(0, lineH, tr("Captured before the page was ready: "+r.WaitError), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	name := filepath.Base(r.FilePath)
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if info == nil || pdf.Err() {
		return fmt.Errorf("contact sheet %s: %w", name, pdf.Error())
	}

	pageW, pageH := pdf.GetPageSize()
	x, y := pdf.GetXY()
	w, h := fitImage(info.Width(), info.Height(), pageW-2*pageMargin, pageH-y-footerSpace)
	pdf.ImageOptions(name, x+(pageW-2*pageMargin-w)/2, y, w, h, false, opts, 0, "")
	return nil
}

// fitImage scales an image of size iw x ih to fit in maxW x maxH keeping
// its aspect ratio.
func fitImage(iw, ih, maxW, maxH float64) (w, h float64) {
	if iw <= 0 || ih <= 0 {
		return 0, 0
	}
	scale := maxW / iw
	if s := maxH / ih; s < scale {
		scale = s
	}
	return iw * scale, ih * scale
}

// WritePDF writes report.pdf into the run directory and returns its path.
func WritePDF(s *runner.Summary) (string, error) {
	if s.Dir == "" {
		return "", fmt.Errorf("write pdf: run has no output directory")
	}
	var buf bytes.Buffer
	if err := RenderPDF(&buf, s, true); err != nil {
		return "", err
	}
	path := filepath.Join(s.Dir, defaults.ReportFile)
	if err := os.WriteFile(path, buf.Bytes(), defaults.FilePerm); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return path, nil
}
