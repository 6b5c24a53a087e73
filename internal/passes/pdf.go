package passes

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/signintech/gopdf"

	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/models"
)

// PDFExporter turns an issued ticket into a static printable document with
// the guest fields and the scannable code embedded.
type PDFExporter struct {
	Event    config.EventConfig
	FontPath string
}

func NewPDFExporter(event config.EventConfig, fontPath string) *PDFExporter {
	return &PDFExporter{Event: event, FontPath: fontPath}
}

func (g *PDFExporter) Export(ticket models.Ticket, qrCode []byte) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	err := pdf.AddTTFFont("dejavu", g.FontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	err = pdf.SetFont("dejavu", "", 14)
	if err != nil {
		return nil, fmt.Errorf("failed to set font: %w", err)
	}

	addHeader(pdf, g.Event.Title)

	pdf.SetY(60)
	addTicketInfo(pdf, ticket)

	if len(qrCode) > 0 {
		pdf.SetY(pdf.GetY() + 20)
		addQRCode(pdf, qrCode)
	}

	pdf.SetY(260)
	addFooter(pdf)

	var buf bytes.Buffer
	err = pdf.Write(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func addHeader(pdf *gopdf.GoPdf, title string) {
	pdf.SetX(40)
	pdf.SetY(30)
	pdf.Cell(nil, "🎟️ "+title)
}

func addTicketInfo(pdf *gopdf.GoPdf, ticket models.Ticket) {
	info := []struct {
		Label string
		Value string
	}{
		{"Ticket ID", ticket.ID},
		{"Guest", ticket.GuestName},
		{"Pass No.", ticket.NumberRange},
		{"Admit", fmt.Sprintf("%d person(s)", ticket.Quantity)},
		{"Date", ticket.EventDate},
		{"Time", ticket.EventTime},
		{"Venue", ticket.EventVenue},
		{"Total", fmt.Sprintf("$%.2f", ticket.TotalPrice)},
		{"Issued At", ticket.IssuedAt.Format("2006-01-02 15:04")},
	}

	for _, item := range info {
		pdf.Cell(nil, item.Label+": "+item.Value)
		pdf.Br(20)
	}
}

func addQRCode(pdf *gopdf.GoPdf, qrCode []byte) {
	img, err := png.Decode(bytes.NewReader(qrCode))
	if err != nil {
		pdf.Cell(nil, "Failed to load QR code")
		return
	}

	rect := &gopdf.Rect{W: 100, H: 100}
	err = pdf.ImageFrom(img, 100, pdf.GetY(), rect)
	if err != nil {
		pdf.Cell(nil, "Failed to draw QR code")
	}
}

func addFooter(pdf *gopdf.GoPdf) {
	pdf.SetX(50)
	pdf.Cell(nil, "Present this pass at the door.")
}
