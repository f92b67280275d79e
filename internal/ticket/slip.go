// Package ticket renders booking slips.
package ticket

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/iliyamo/train-ticket-reservation/internal/booking"
)

// Slip is what goes on the printed booking slip.
type Slip struct {
	Reference     string
	TrainName     string
	DepartureTime string
	ArrivalTime   string
	Request       booking.Request
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename is the attachment name offered for the slip.
func (s Slip) Filename() string {
	ref := s.Reference
	if ref == "" {
		ref = "draft"
	}
	part := unsafeName.ReplaceAllString(s.Request.PassengerName, "_")
	return fmt.Sprintf("SLIP_%s_%s.pdf", unsafeName.ReplaceAllString(ref, "_"), strings.Trim(part, "_"))
}

// Render writes the slip as a single A4 page PDF.
func Render(s Slip) ([]byte, error) {
	r := s.Request
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Slip", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TRAIN BOOKING SLIP")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Reference      : %s", safe(s.Reference, "pending")),
		fmt.Sprintf("Train          : %s", safe(s.TrainName, "-")),
		fmt.Sprintf("Route          : %s -> %s", safe(r.FromStation, "-"), safe(r.ToStation, "-")),
		fmt.Sprintf("Date           : %s", safe(r.Date, "-")),
		fmt.Sprintf("Departs/Arrives: %s / %s", safe(s.DepartureTime, "-"), safe(s.ArrivalTime, "-")),
		fmt.Sprintf("Class          : %s", safe(string(r.TravelClass), "-")),
		fmt.Sprintf("Tickets        : %d", r.TicketCount),
		fmt.Sprintf("Seats          : %s", safe(strings.Join(r.Seats, ", "), "-")),
		fmt.Sprintf("Passenger      : %s", safe(r.PassengerName, "-")),
		fmt.Sprintf("Age / Gender   : %d / %s", r.Age, safe(r.Gender, "-")),
		fmt.Sprintf("Contact        : %s", safe(r.Contact, "-")),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "This slip confirms the request was handed to booking. Seats are final once the booking is confirmed.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render slip: %w", err)
	}
	return buf.Bytes(), nil
}

func safe(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
