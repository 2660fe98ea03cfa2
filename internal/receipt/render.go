package receipt

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"receipts/internal/model"

	"github.com/shopspring/decimal"
)

const (
	DefaultLineWidth  = 40
	MaxLineWidth      = 200
	DefaultSellerName = "ФОП Джонсонюк Борис"
	DefaultThankYou   = "Дякуємо за покупку!"

	labelTotal = "СУМА"
	labelCard  = "Картка"
	labelCash  = "Готівка"
	labelRest  = "Решта"

	timestampLayout = "02.01.2006 15:04"
)

// Renderer formats a persisted receipt into a fixed-width retail ticket
type Renderer struct {
	seller   string
	thankYou string
	loc      *time.Location
}

type RendererOption func(*Renderer)

func WithSellerName(name string) RendererOption {
	return func(r *Renderer) { r.seller = name }
}

func WithThankYou(msg string) RendererOption {
	return func(r *Renderer) { r.thankYou = msg }
}

// WithLocation sets the zone the timestamp is printed in
func WithLocation(loc *time.Location) RendererOption {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		seller:   DefaultSellerName,
		thankYou: DefaultThankYou,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the ticket text. A width <= 0 falls back to DefaultLineWidth
// and a width above MaxLineWidth is clamped to it.
// Width is measured in runes. Left and right columns are always separated by
// at least one space; nothing is truncated, so overlong lines exceed width.
func (r *Renderer) Render(rec *model.Receipt, width int) string {
	width = ClampWidth(width)
	doubleRule := strings.Repeat("=", width)
	singleRule := strings.Repeat("-", width)

	lines := []string{
		center(r.seller, width),
		doubleRule,
	}

	for _, item := range rec.Items {
		total := formatAmount(item.LineTotal())
		qty := item.UnitPrice.StringFixed(2) + " x " + strconv.Itoa(item.Quantity)
		lines = append(lines,
			justify(qty, total, width),
			justify(item.ProductName, total, width),
			singleRule,
		)
	}

	paidLabel := labelCard
	if rec.PaymentType == model.PaymentCash {
		paidLabel = labelCash
	}

	lines = append(lines,
		doubleRule,
		justify(labelTotal, formatAmount(rec.TotalAmount), width),
		justify(paidLabel, formatAmount(rec.PaidOrTotal()), width),
		justify(labelRest, formatAmount(rec.Rest()), width),
		doubleRule,
		center(rec.CreatedAt.In(r.loc).Format(timestampLayout), width),
		center(r.thankYou, width),
	)
	return strings.Join(lines, "\n")
}

// ClampWidth maps a requested ticket width into [1, MaxLineWidth]
func ClampWidth(width int) int {
	switch {
	case width <= 0:
		return DefaultLineWidth
	case width > MaxLineWidth:
		return MaxLineWidth
	}
	return width
}

func justify(left, right string, width int) string {
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// center puts the smaller half of the padding on the left
func center(text string, width int) string {
	pad := width - utf8.RuneCountInString(text)
	if pad <= 0 {
		return text
	}
	left := pad / 2
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", pad-left)
}

// formatAmount prints d with two fractional digits and a space as thousands separator
func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	return sign + groupThousands(intPart) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
