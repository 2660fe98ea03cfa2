package receipt

import (
	"strings"
	"unicode/utf8"

	"receipts/internal/apperror"
	"receipts/internal/model"

	"github.com/shopspring/decimal"
)

const (
	msgInvalidPaymentType    = "Invalid payment type, must be 'cash' or 'card'."
	msgAmountRequiredForCash = "Amount is required for cash payments."

	// MaxNameLength matches the product_name column width
	MaxNameLength = 255
)

// MaxAmount is the largest value a decimal(10,2) money column holds
var MaxAmount = decimal.RequireFromString("99999999.99")

// ErrInsufficientPayment is returned when a cash amount does not cover the total
var ErrInsufficientPayment = apperror.Validation("Insufficient cash provided")

// ProductLine is a product as submitted by the client
type ProductLine struct {
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// CalculatedLine is a ProductLine annotated with its line total
type CalculatedLine struct {
	ProductLine
	Total decimal.Decimal
}

// Payment holds the payment kind and, for cash, the handed amount
type Payment struct {
	Type   model.PaymentType
	Amount *decimal.Decimal
}

type Calculation struct {
	Lines []CalculatedLine
	Total decimal.Decimal
	Rest  decimal.Decimal
}

// Calculate computes per-line totals, the overall total and the change.
// It is pure and validates everything a receipt needs before it is persisted.
func Calculate(lines []ProductLine, payment Payment) (Calculation, error) {
	if !payment.Type.Valid() {
		return Calculation{}, apperror.Validation(msgInvalidPaymentType)
	}
	if payment.Type == model.PaymentCash {
		if payment.Amount == nil {
			return Calculation{}, apperror.Validation(msgAmountRequiredForCash)
		}
		if payment.Amount.IsNegative() {
			return Calculation{}, apperror.Validation("Payment amount must not be negative.")
		}
		if !hasCents(*payment.Amount) {
			return Calculation{}, apperror.Validation("Payment amount must have at most 2 decimal places.")
		}
		if payment.Amount.GreaterThan(MaxAmount) {
			return Calculation{}, apperror.Validation("Payment amount must not exceed 99999999.99.")
		}
	}

	calc := Calculation{
		Lines: make([]CalculatedLine, 0, len(lines)),
		Total: decimal.Zero,
	}
	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return Calculation{}, err
		}
		total := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		calc.Total = calc.Total.Add(total)
		calc.Lines = append(calc.Lines, CalculatedLine{ProductLine: line, Total: total})
	}
	if calc.Total.GreaterThan(MaxAmount) {
		return Calculation{}, apperror.Validation("Receipt total must not exceed 99999999.99.")
	}

	calc.Rest = decimal.Zero
	if payment.Type == model.PaymentCash {
		calc.Rest = payment.Amount.Sub(calc.Total)
		if calc.Rest.IsNegative() {
			return Calculation{}, ErrInsufficientPayment
		}
	}
	return calc, nil
}

func validateLine(line ProductLine) error {
	switch {
	case strings.TrimSpace(line.Name) == "":
		return apperror.Validation("Product name is required.")
	case utf8.RuneCountInString(line.Name) > MaxNameLength:
		return apperror.Validation("Product name must be at most 255 characters.")
	case line.Quantity < 0:
		return apperror.Validation("Quantity must not be negative.")
	case line.Price.IsNegative():
		return apperror.Validation("Price must not be negative.")
	case !hasCents(line.Price):
		return apperror.Validation("Price must have at most 2 decimal places.")
	case line.Price.GreaterThan(MaxAmount):
		return apperror.Validation("Price must not exceed 99999999.99.")
	}
	return nil
}

func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
