package services

import (
	"bytes"
	"fmt"
	"strings"

	"buslines/internal/domain"
	"buslines/internal/domain/models"
	"buslines/internal/repositories"
	"buslines/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the e-ticket PDF for a paid booking.
type DocsService struct {
	Bookings  repositories.BookingRepo
	Schedules repositories.ScheduleRepo
	RequestID string
	Loader    func(string) (models.Booking, models.ScheduleDetail, error)
}

// GenerateETicket renders the ticket for a booking reference. Only confirmed
// bookings get a ticket; anything else is a conflict.
func (s DocsService) GenerateETicket(reference string) ([]byte, string, error) {
	booking, detail, err := s.load(reference)
	if err != nil {
		return nil, "", err
	}
	if booking.Status != domain.StatusConfirmed {
		return nil, "", domain.ConflictError{Resource: "booking", Msg: "ticket only available for confirmed bookings"}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_eticket", "reference="+reference)
	return buildETicketPDF(booking, detail)
}

func (s DocsService) load(reference string) (models.Booking, models.ScheduleDetail, error) {
	if s.Loader != nil {
		return s.Loader(reference)
	}
	booking, err := s.Bookings.GetByReference(nil, reference)
	if err != nil {
		return models.Booking{}, models.ScheduleDetail{}, err
	}
	detail, err := s.Schedules.GetDetail(nil, booking.ScheduleID)
	if err != nil {
		return models.Booking{}, models.ScheduleDetail{}, err
	}
	return booking, detail, nil
}

func buildETicketPDF(b models.Booking, d models.ScheduleDetail) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Passenger    : %s", safe(b.PassengerName, "-")),
		fmt.Sprintf("Phone        : %s", safe(b.PassengerPhone, "-")),
		fmt.Sprintf("Route        : %s -> %s", safe(d.Origin, "-"), safe(d.Destination, "-")),
		fmt.Sprintf("Departure    : %s", d.DepartureTime.Format("2006-01-02 15:04")),
		fmt.Sprintf("Bus          : %s (%s)", safe(d.BusNumber, "-"), safe(d.BusType, "-")),
		fmt.Sprintf("Seats        : %d", b.SeatCount),
		fmt.Sprintf("Fare         : %s", utils.FormatZAR(b.TotalCents)),
		fmt.Sprintf("Reference    : %s", safe(b.BookingReference, "-")),
	}
	if b.DiscountType != domain.DiscountNone {
		lines = append(lines, fmt.Sprintf("Discount     : %s (-%s)", b.DiscountType, utils.FormatZAR(b.DiscountCents)))
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This e-ticket admits one passenger. Please present it with photo ID at boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s_%s.pdf", b.BookingReference, safeFilenamePart(b.PassengerName))
	return buf.Bytes(), filename, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
