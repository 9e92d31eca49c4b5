// Package summary renders center lists as shareable table images.
package summary

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"centerhub/internal/center"
)

// Table styling constants, rendered at 2x scale for chat clarity
const (
	cellPaddingX  = 20
	cellPaddingY  = 16
	minRowHeight  = 76
	headerHeight  = 88
	fontSize      = 26
	headerFontSz  = 26
	titleFontSz   = 40
	footerFontSz  = 24
	titlePadding  = 110
	footerPadding = 80
	minColWidth   = 110
	maxNameWidth  = 420.0
	maxTeamWidth  = 300.0
)

// Light theme colors
var (
	bgColor         = color.RGBA{R: 245, G: 247, B: 250, A: 255}
	titleColor      = color.RGBA{R: 30, G: 41, B: 59, A: 255}
	headerBgColor   = color.RGBA{R: 37, G: 99, B: 235, A: 255}
	headerTextColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rowEvenColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	rowOddColor     = color.RGBA{R: 241, G: 245, B: 249, A: 255}
	textColor       = color.RGBA{R: 30, G: 41, B: 59, A: 255}
	riskTextColor   = color.RGBA{R: 185, G: 28, B: 28, A: 255}
	borderColor     = color.RGBA{R: 203, G: 213, B: 225, A: 255}
	footerColor     = color.RGBA{R: 100, G: 116, B: 139, A: 255}
)

// column definition for the table.
type column struct {
	header   string
	field    func(r *center.Record) string
	maxWidth float64 // 0 means auto
}

// columns defines the table layout.
var columns = []column{
	{"ক্রমিক", func(r *center.Record) string { return r.SerialNo }, 0},
	{"কেন্দ্রের নাম", func(r *center.Record) string { return r.CenterName }, maxNameWidth},
	{"উপজেলা", func(r *center.Record) string { return r.Upazila }, 0},
	{"ইউনিয়ন", func(r *center.Record) string { return r.Union }, 0},
	{"ঝুঁকি", func(r *center.Record) string { return r.RiskStatus }, 0},
	{"মোট ভোটার", func(r *center.Record) string { return r.TotalVoters }, 0},
	{"অফিসার", func(r *center.Record) string { return r.OfficerName }, maxTeamWidth},
	{"ফোন", func(r *center.Record) string { return r.Phone }, 0},
}

// Renderer draws tables with the given TrueType fonts. An empty or
// unreadable font path falls back to a built-in bitmap face, which has no
// Bengali glyphs but keeps rendering working on bare hosts.
type Renderer struct {
	RegularFont string
	BoldFont    string
	Now         func() time.Time
}

// NewRenderer returns a renderer using the first system fonts found.
func NewRenderer() *Renderer {
	return &Renderer{
		RegularFont: findFont(false),
		BoldFont:    findFont(true),
		Now:         time.Now,
	}
}

// RenderTable renders records with the default renderer.
func RenderTable(records []center.Record, title string) ([]byte, error) {
	return NewRenderer().RenderTable(records, title)
}

// findFont locates a font with Bengali coverage across Linux, macOS and
// Windows paths, falling back to DejaVu. Returns "" when nothing is found.
func findFont(bold bool) string {
	var candidates []string
	switch runtime.GOOS {
	case "windows":
		winRoot := os.Getenv("WINDIR")
		if winRoot == "" {
			winRoot = `C:\Windows`
		}
		if bold {
			candidates = []string{winRoot + `\Fonts\NirmalaB.ttf`, winRoot + `\Fonts\arialbd.ttf`}
		} else {
			candidates = []string{winRoot + `\Fonts\Nirmala.ttf`, winRoot + `\Fonts\arial.ttf`}
		}
	case "darwin":
		candidates = []string{"/Library/Fonts/Arial Unicode.ttf", "/System/Library/Fonts/Supplemental/Arial Unicode.ttf"}
	default:
		if bold {
			candidates = []string{
				"/usr/share/fonts/truetype/noto/NotoSansBengali-Bold.ttf",
				"/usr/share/fonts/noto/NotoSansBengali-Bold.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			}
		} else {
			candidates = []string{
				"/usr/share/fonts/truetype/noto/NotoSansBengali-Regular.ttf",
				"/usr/share/fonts/noto/NotoSansBengali-Regular.ttf",
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
			}
		}
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// setFont loads path at size, or the bitmap fallback face.
func setFont(dc *gg.Context, path string, size float64) {
	if path != "" {
		if err := dc.LoadFontFace(path, size); err == nil {
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// wrapText splits text into multiple lines to fit within maxWidth.
func wrapText(dc *gg.Context, text string, maxWidth float64) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))

	if maxWidth <= 0 {
		return []string{text}
	}
	if w, _ := dc.MeasureString(text); w <= maxWidth {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	currentLine := words[0]
	for _, word := range words[1:] {
		testLine := currentLine + " " + word
		if tw, _ := dc.MeasureString(testLine); tw > maxWidth {
			lines = append(lines, currentLine)
			currentLine = word
		} else {
			currentLine = testLine
		}
	}
	return append(lines, currentLine)
}

// computeRowHeights calculates the height of each row based on wrapped text.
func computeRowHeights(dc *gg.Context, records []center.Record, colWidths []float64) []float64 {
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4

	heights := make([]float64, len(records))
	for rowIdx := range records {
		r := &records[rowIdx]
		maxLines := 1
		for i, col := range columns {
			wrapped := wrapText(dc, col.field(r), colWidths[i]-cellPaddingX*2)
			if len(wrapped) > maxLines {
				maxLines = len(wrapped)
			}
		}
		h := float64(maxLines)*lineSpacing + cellPaddingY*2
		if h < float64(minRowHeight) {
			h = float64(minRowHeight)
		}
		heights[rowIdx] = h
	}
	return heights
}

// RenderTable draws records as a table image and returns PNG bytes.
// Records keep their given order. An empty list is an error.
func (rd *Renderer) RenderTable(records []center.Record, title string) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no centers to render")
	}
	now := time.Now
	if rd.Now != nil {
		now = rd.Now
	}
	if title == "" {
		title = "নির্বাচন কেন্দ্র"
	}

	// ---- Step 1: Measure column widths ----
	tmpDC := gg.NewContext(1, 1)
	setFont(tmpDC, rd.BoldFont, headerFontSz)

	colWidths := make([]float64, len(columns))
	for i, col := range columns {
		w, _ := tmpDC.MeasureString(col.header)
		colWidths[i] = w + cellPaddingX*2 + 4
		if colWidths[i] < float64(minColWidth) {
			colWidths[i] = float64(minColWidth)
		}
	}

	setFont(tmpDC, rd.RegularFont, fontSize)
	for rowIdx := range records {
		r := &records[rowIdx]
		for i, col := range columns {
			w, _ := tmpDC.MeasureString(col.field(r))
			if needed := w + cellPaddingX*2 + 4; needed > colWidths[i] {
				colWidths[i] = needed
			}
		}
	}
	for i, col := range columns {
		if col.maxWidth > 0 && colWidths[i] > col.maxWidth {
			colWidths[i] = col.maxWidth
		}
	}

	rowHeights := computeRowHeights(tmpDC, records, colWidths)

	// ---- Step 2: Calculate canvas size ----
	var totalWidth, totalRowHeight float64
	for _, w := range colWidths {
		totalWidth += w
	}
	for _, h := range rowHeights {
		totalRowHeight += h
	}

	canvasWidth := totalWidth + 80
	canvasHeight := float64(titlePadding) + float64(headerHeight) + totalRowHeight + float64(footerPadding)

	// ---- Step 3: Draw ----
	dc := gg.NewContext(int(canvasWidth), int(canvasHeight))
	dc.SetColor(bgColor)
	dc.Clear()

	setFont(dc, rd.BoldFont, titleFontSz)
	dc.SetColor(titleColor)
	heading := fmt.Sprintf("%s  |  %s", title, now().Format("02 Jan 2006, 03:04 PM"))
	dc.DrawStringAnchored(heading, canvasWidth/2, float64(titlePadding)/2+2, 0.5, 0.5)

	tableX := 40.0
	tableY := float64(titlePadding)

	dc.SetColor(headerBgColor)
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, float64(headerHeight), 16)
	dc.Fill()

	setFont(dc, rd.BoldFont, headerFontSz)
	dc.SetColor(headerTextColor)
	x := tableX
	for i, col := range columns {
		dc.DrawStringAnchored(col.header, x+colWidths[i]/2, tableY+float64(headerHeight)/2, 0.5, 0.5)
		x += colWidths[i]
	}

	setFont(dc, rd.RegularFont, fontSize)
	_, lineH := dc.MeasureString("Ay")
	lineSpacing := lineH + 4
	curY := tableY + float64(headerHeight)

	for rowIdx := range records {
		r := &records[rowIdx]
		rh := rowHeights[rowIdx]

		if rowIdx%2 == 0 {
			dc.SetColor(rowEvenColor)
		} else {
			dc.SetColor(rowOddColor)
		}
		dc.DrawRectangle(tableX, curY, totalWidth, rh)
		dc.Fill()

		dc.SetColor(borderColor)
		dc.SetLineWidth(0.5)
		dc.DrawLine(tableX, curY+rh, tableX+totalWidth, curY+rh)
		dc.Stroke()

		x := tableX
		for i, col := range columns {
			if col.header == "ঝুঁকি" && r.RiskStatus != center.DefaultRisk {
				dc.SetColor(riskTextColor)
			} else {
				dc.SetColor(textColor)
			}
			wrapped := wrapText(dc, col.field(r), colWidths[i]-cellPaddingX*2)
			startY := curY + (rh-float64(len(wrapped))*lineSpacing)/2 + lineH
			for lineIdx, line := range wrapped {
				dc.DrawString(line, x+cellPaddingX, startY+float64(lineIdx)*lineSpacing)
			}
			x += colWidths[i]
		}
		curY += rh
	}

	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	totalTableH := float64(headerHeight) + totalRowHeight
	dc.DrawRoundedRectangle(tableX, tableY, totalWidth, totalTableH, 16)
	dc.Stroke()

	dc.SetLineWidth(0.5)
	x = tableX
	for i := 0; i < len(columns)-1; i++ {
		x += colWidths[i]
		dc.DrawLine(x, tableY+float64(headerHeight), x, tableY+totalTableH)
		dc.Stroke()
	}

	setFont(dc, rd.RegularFont, footerFontSz)
	dc.SetColor(footerColor)
	dc.DrawStringAnchored(fmt.Sprintf("মোট কেন্দ্র: %d", len(records)), canvasWidth/2, canvasHeight-30, 0.5, 0.5)

	// ---- Step 4: Encode to PNG ----
	return encodeImage(dc.Image())
}

func encodeImage(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
