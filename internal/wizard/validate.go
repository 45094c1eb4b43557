package wizard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iliyamo/bus-reservation-portal/internal/model"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{16}$`)
	cvvRe        = regexp.MustCompile(`^\d{3,4}$`)
	emailRe      = regexp.MustCompile(`\S+@\S+\.\S+`)
	spaceRe      = regexp.MustCompile(`\s`)
)

// validateSelection guards selection → details.
func validateSelection(d Draft) *ValidationError {
	if d.Schedule == nil {
		return &ValidationError{Field: "schedule", Message: "please select a schedule"}
	}
	if d.Seats < 1 || d.Seats > d.Schedule.AvailableSeats {
		return &ValidationError{
			Field:   "seats",
			Message: fmt.Sprintf("number of seats must be between 1 and %d", d.Schedule.AvailableSeats),
		}
	}
	return nil
}

// validatePayment guards details → confirmation for the chosen method.
func validatePayment(d Draft) *ValidationError {
	switch d.Method {
	case model.PaymentCard:
		return validateCard(d.Card)
	case model.PaymentPayPal:
		return validatePayPal(d.PayPal)
	}
	return &ValidationError{Field: "payment_method", Message: "unsupported payment method"}
}

func validateCard(c Card) *ValidationError {
	if blank(c.Number) || blank(c.Name) || blank(c.Expiry) || blank(c.CVV) {
		return &ValidationError{Field: "card", Message: "please fill in all card fields"}
	}
	if !ValidCardNumber(c.Number) {
		return &ValidationError{Field: "card.number", Message: "invalid card number"}
	}
	if !ValidCVV(c.CVV) {
		return &ValidationError{Field: "card.cvv", Message: "invalid CVV"}
	}
	return nil
}

func validatePayPal(p PayPal) *ValidationError {
	if blank(p.Email) || p.Password == "" {
		return &ValidationError{Field: "paypal", Message: "please fill in all PayPal fields"}
	}
	if !ValidEmail(p.Email) {
		return &ValidationError{Field: "paypal.email", Message: "invalid PayPal email"}
	}
	return nil
}

// ValidCardNumber accepts exactly 16 digits once whitespace is removed.
func ValidCardNumber(n string) bool {
	return cardNumberRe.MatchString(spaceRe.ReplaceAllString(n, ""))
}

// ValidCVV accepts 3 or 4 digits.
func ValidCVV(s string) bool { return cvvRe.MatchString(s) }

// ValidEmail is a loose syntactic check: something@domain.tld.
func ValidEmail(s string) bool { return emailRe.MatchString(s) }

// MaskCard keeps the last four digits for display on the confirmation step.
func MaskCard(n string) string {
	digits := spaceRe.ReplaceAllString(n, "")
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("•", len(digits)-4) + digits[len(digits)-4:]
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
