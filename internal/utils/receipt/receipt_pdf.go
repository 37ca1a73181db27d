package receipt

import (
	"Durian-Scanner/domain"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/gofiber/fiber/v2/log"
)

const utf8Family = "ReceiptUTF8"

type (
	// Receipt is the visible content of a receipt, one string per printed line.
	Receipt struct {
		Title         string
		TransactionID string
		Subtotal      string
		ItemLines     []string
		GrandTotal    string
	}

	Renderer interface {
		Render(r Receipt) ([]byte, error)
	}

	pdfRenderer struct {
		fontPath string
	}
)

// fontCandidates are common locations of a UTF-8 TTF with a peso glyph,
// tried when no font path is configured.
var fontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
	`C:\Windows\Fonts\arial.ttf`,
}

// NewRenderer renders receipts as PDF. An empty fontPath falls back to the
// first installed font in fontCandidates. With a TTF the currency sign is
// printed as-is; the built-in core font has no glyph for it, so it is
// spelled "PHP" instead.
func NewRenderer(fontPath string) Renderer {
	if fontPath == "" {
		fontPath = defaultFontPath()
		if fontPath == "" {
			log.Warnf("no UTF-8 receipt font found; amounts will print as PHP")
		}
	}
	return &pdfRenderer{fontPath: fontPath}
}

func defaultFontPath() string {
	for _, candidate := range fontCandidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func Build(items []domain.CheckoutItem, total float64, transactionID string) Receipt {
	var subtotal float64
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lineTotal := item.LineTotal()
		subtotal += lineTotal
		lines = append(lines, fmt.Sprintf("%s x %d - %s", item.Name, item.Quantity, FormatAmount(lineTotal)))
	}

	return Receipt{
		Title:         domain.ReceiptTitle,
		TransactionID: "Transaction ID: " + transactionID,
		Subtotal:      "Subtotal: " + FormatAmount(subtotal),
		ItemLines:     lines,
		GrandTotal:    "Grand Total: " + FormatAmount(total),
	}
}

// FormatAmount prints the shortest exact decimal, so 20 is "₱20" and 12.5
// is "₱12.5".
func FormatAmount(v float64) string {
	return domain.CurrencySymbol + strconv.FormatFloat(v, 'f', -1, 64)
}

func (p *pdfRenderer) Render(r Receipt) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	family := "Arial"
	if p.fontPath != "" {
		pdf.AddUTF8Font(utf8Family, "", p.fontPath)
		pdf.AddUTF8Font(utf8Family, "B", p.fontPath)
		family = utf8Family
	}
	text := p.printable
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 10, text(r.Title), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont(family, "B", 12)
	pdf.CellFormat(0, 10, text(r.TransactionID), "", 1, "", false, 0, "")

	pdf.SetFont(family, "", 12)
	pdf.CellFormat(0, 10, text(r.Subtotal), "", 1, "", false, 0, "")
	pdf.Ln(5)

	pdf.CellFormat(0, 10, "Items:", "", 1, "", false, 0, "")
	for _, line := range r.ItemLines {
		pdf.CellFormat(0, 10, text(line), "", 1, "", false, 0, "")
	}

	pdf.Ln(5)
	pdf.CellFormat(0, 10, text(r.GrandTotal), "", 1, "", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrReceiptRender, err)
	}
	return buf.Bytes(), nil
}

// printable adapts s to the font in use.
func (p *pdfRenderer) printable(s string) string {
	if p.fontPath != "" {
		return s
	}
	return strings.ReplaceAll(s, domain.CurrencySymbol, "PHP ")
}
