package reports

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/Wolf-Quiteque/100destinosBackend/internal/bookinglist"
)

const bookingsSheet = "Reservas"

// RenderRevenuePDF writes the revenue summary as a one-page PDF
func RenderRevenuePDF(w io.Writer, title string, s RevenueSummary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(190, 10, tr(title))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Data: %s", s.Date),
		fmt.Sprintf("Receita total: AOA %.2f", s.TotalRevenue),
		fmt.Sprintf("Receita de hoje: AOA %.2f", s.TodayRevenue),
		fmt.Sprintf("Reservas: %d (pendentes %d, confirmadas %d)", s.TotalBookings, s.PendingBookings, s.ConfirmedBookings),
	}
	for _, line := range lines {
		pdf.Cell(190, 8, tr(line))
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 8, tr("Rota"), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, tr("Reservas"), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, u := range s.RouteUsage {
		pdf.CellFormat(140, 7, tr(u.Route), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d", u.Bookings), "1", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// ExportBookingsXLSX writes booking rows as a spreadsheet
func ExportBookingsXLSX(w io.Writer, rows []bookinglist.Row) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", bookingsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"ID", "Rota", "Passageiros", "Telefone", "Email", "Data", "Estado", "Total (AOA)"}
	if err := f.SetSheetRow(bookingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			r.ID, r.RouteName, r.PassengerNames, r.ContactPhone, r.ContactEmail,
			r.BookingDate, r.StatusLabel, r.TotalPrice,
		}
		if err := f.SetSheetRow(bookingsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return nil
}
