package receipt

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"receipts/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt(pt model.PaymentType) *model.Receipt {
	r := &model.Receipt{
		PaymentType: pt,
		TotalAmount: dec("29.97"),
		CreatedAt:   time.Date(2024, 5, 1, 10, 5, 0, 0, time.UTC),
		Items: []model.ReceiptItem{
			{ProductName: "Widget", UnitPrice: dec("9.99"), Quantity: 3},
		},
	}
	if pt == model.PaymentCash {
		r.PaidAmount = decimal.NewNullDecimal(dec("40.00"))
	}
	return r
}

func TestRender_Layout(t *testing.T) {
	out := NewRenderer().Render(sampleReceipt(model.PaymentCash), 40)
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 12)
	assert.Equal(t, "ФОП Джонсонюк Борис", strings.TrimSpace(lines[0]))
	assert.Equal(t, strings.Repeat("=", 40), lines[1])
	assert.Equal(t, "9.99 x 3"+strings.Repeat(" ", 27)+"29.97", lines[2])
	assert.Equal(t, "Widget"+strings.Repeat(" ", 29)+"29.97", lines[3])
	assert.Equal(t, strings.Repeat("-", 40), lines[4])
	assert.Equal(t, strings.Repeat("=", 40), lines[5])
	assert.Equal(t, "СУМА"+strings.Repeat(" ", 31)+"29.97", lines[6])
	assert.Equal(t, "Готівка"+strings.Repeat(" ", 28)+"40.00", lines[7])
	assert.Equal(t, "Решта"+strings.Repeat(" ", 30)+"10.03", lines[8])
	assert.Equal(t, strings.Repeat("=", 40), lines[9])
	assert.Equal(t, "01.05.2024 10:05", strings.TrimSpace(lines[10]))
	assert.Equal(t, "Дякуємо за покупку!", strings.TrimSpace(lines[11]))

	for i, line := range lines {
		assert.Equal(t, 40, utf8.RuneCountInString(line), "line %d", i)
	}
}

func TestRender_Card(t *testing.T) {
	out := NewRenderer().Render(sampleReceipt(model.PaymentCard), 40)
	lines := strings.Split(out, "\n")

	assert.Equal(t, "Картка"+strings.Repeat(" ", 29)+"29.97", lines[7])
	assert.Equal(t, "Решта"+strings.Repeat(" ", 31)+"0.00", lines[8])
}

func TestRender_Idempotent(t *testing.T) {
	r := NewRenderer()
	rec := sampleReceipt(model.PaymentCash)
	assert.Equal(t, r.Render(rec, 32), r.Render(rec, 32))
}

func TestRender_DefaultWidth(t *testing.T) {
	r := NewRenderer()
	rec := sampleReceipt(model.PaymentCard)
	assert.Equal(t, r.Render(rec, DefaultLineWidth), r.Render(rec, 0))
	assert.Equal(t, r.Render(rec, DefaultLineWidth), r.Render(rec, -5))
}

func TestRender_OverflowKeepsOneSpace(t *testing.T) {
	rec := sampleReceipt(model.PaymentCard)
	rec.Items[0].ProductName = "A very long product name"

	out := NewRenderer().Render(rec, 10)
	assert.Contains(t, out, "A very long product name 29.97")
	// centered text wider than the line is emitted as is
	assert.Contains(t, out, "\nДякуємо за покупку!")
}

func TestRender_Options(t *testing.T) {
	r := NewRenderer(
		WithSellerName("Shop"),
		WithThankYou("Bye"),
		WithLocation(time.FixedZone("EET", 2*3600)),
	)
	lines := strings.Split(r.Render(sampleReceipt(model.PaymentCard), 20), "\n")

	assert.Equal(t, "        Shop        ", lines[0])
	assert.Equal(t, "01.05.2024 12:05", strings.TrimSpace(lines[10]))
	assert.Equal(t, "        Bye         ", lines[11])
}

func TestRender_UnitPriceIsNotGrouped(t *testing.T) {
	rec := sampleReceipt(model.PaymentCard)
	rec.Items[0].UnitPrice = dec("1234.50")
	rec.Items[0].Quantity = 2000
	rec.TotalAmount = dec("2469000.00")

	lines := strings.Split(NewRenderer().Render(rec, 40), "\n")
	assert.True(t, strings.HasPrefix(lines[2], "1234.50 x 2000 "), lines[2])
	assert.True(t, strings.HasSuffix(lines[2], " 2 469 000.00"), lines[2])
}

func TestRender_WidthIsClamped(t *testing.T) {
	r := NewRenderer()
	rec := sampleReceipt(model.PaymentCard)

	out := r.Render(rec, 1_000_000_000)
	assert.Equal(t, r.Render(rec, MaxLineWidth), out)
	assert.Equal(t, strings.Repeat("=", MaxLineWidth), strings.Split(out, "\n")[1])
}

func TestClampWidth(t *testing.T) {
	assert.Equal(t, DefaultLineWidth, ClampWidth(0))
	assert.Equal(t, DefaultLineWidth, ClampWidth(-1))
	assert.Equal(t, 1, ClampWidth(1))
	assert.Equal(t, MaxLineWidth, ClampWidth(MaxLineWidth))
	assert.Equal(t, MaxLineWidth, ClampWidth(MaxLineWidth+1))
}

func TestFormatAmount(t *testing.T) {
	tests := map[string]string{
		"0":          "0.00",
		"999":        "999.00",
		"1234.5":     "1 234.50",
		"1234567":    "1 234 567.00",
		"-1234.5":    "-1 234.50",
		"123456.789": "123 456.79",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatAmount(dec(in)), in)
	}
}
