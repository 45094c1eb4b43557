// Package ticket renders printable e-tickets for reservations.
package ticket

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

// ErrCancelled is returned for reservations that no longer entitle travel.
var ErrCancelled = errors.New("ticket: reservation is cancelled")

const timeLayout = "Mon 02 Jan 2006 15:04"

// Renderer draws tickets.  QR payloads are signed so a conductor app can
// tell a printed ticket from a forged one.
type Renderer struct {
	secret []byte
}

func NewRenderer(secret []byte) *Renderer { return &Renderer{secret: secret} }

// Payload is "reservation|schedule|seats|signature".
func (r *Renderer) Payload(res *model.Reservation) string {
	data := fmt.Sprintf("BUS-%d|%d|%d", res.ID, res.Schedule.ID, res.NumberOfSeats)
	h := hmac.New(sha256.New, r.secret)
	h.Write([]byte(data))
	return data + "|" + base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Verify checks a payload produced by Payload.
func (r *Renderer) Verify(payload string) bool {
	i := strings.LastIndex(payload, "|")
	if i < 0 {
		return false
	}
	h := hmac.New(sha256.New, r.secret)
	h.Write([]byte(payload[:i]))
	want := base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(want), []byte(payload[i+1:]))
}

// Render returns an A4 PDF for res.  The schedule must be resolved (nested)
// so the route and times can be printed.
func (r *Renderer) Render(res *model.Reservation, holder string) ([]byte, error) {
	if res.Status == model.StatusCancelled {
		return nil, ErrCancelled
	}
	s := res.Schedule.Schedule
	if s == nil {
		return nil, errors.New("ticket: schedule details missing")
	}

	qrPNG, err := qrcode.Encode(r.Payload(res), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Ticket BUS-%d", res.ID), true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Bus Ticket")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		fmt.Sprintf("Reference: BUS-%d", res.ID),
		fmt.Sprintf("Passenger: %s", holder),
		fmt.Sprintf("From: %s", s.DepartureCity()),
		fmt.Sprintf("To: %s", s.ArrivalCity()),
		fmt.Sprintf("Departure: %s", s.DepartureTime.Format(timeLayout)),
		fmt.Sprintf("Arrival: %s", s.ArrivalTime.Format(timeLayout)),
		fmt.Sprintf("Seats: %d", res.NumberOfSeats),
		fmt.Sprintf("Total: %s EUR", totalOf(res, s).StringFixed(2)),
		fmt.Sprintf("Status: %s", res.Status),
	}
	if s.Bus != nil {
		lines = append(lines, fmt.Sprintf("Bus: %s (%s)", s.Bus.PlateNumber, s.Bus.Model))
	}
	if res.SpecialRequests != "" {
		lines = append(lines, "Requests: "+res.SpecialRequests)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, l := range lines {
		pdf.Cell(0, 8, tr(l))
		pdf.Ln(8)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 45, 45, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// totalOf prefers the server total and falls back to price × seats.
func totalOf(res *model.Reservation, s *model.Schedule) decimal.Decimal {
	if !res.TotalPrice.IsZero() {
		return res.TotalPrice
	}
	return s.TotalFor(res.NumberOfSeats)
}
