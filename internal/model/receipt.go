package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentType string

const (
	PaymentCash PaymentType = "cash"
	PaymentCard PaymentType = "card"
)

// Valid reports whether p is one of the supported payment types
func (p PaymentType) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}

// Receipt is an immutable record of a sale. TotalAmount is computed once at creation.
type Receipt struct {
	ID          uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	PaymentType PaymentType         `gorm:"type:varchar(10);not null;index" json:"payment_type"`
	TotalAmount decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaidAmount  decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"paid_amount"` // null for card
	TextPath    *string             `gorm:"type:varchar(512)" json:"-"`
	QRPath      *string             `gorm:"type:varchar(512)" json:"-"`
	CreatedAt   time.Time           `gorm:"not null;index" json:"created_at"`
	Items       []ReceiptItem       `gorm:"foreignKey:ReceiptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
}

// ReceiptItem is a frozen snapshot of a sold product line
type ReceiptItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ProductName string          `gorm:"type:varchar(255);not null" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Position    int             `gorm:"not null;default:0" json:"-"` // order within the receipt
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (i *ReceiptItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// PaidOrTotal returns the paid amount, which equals the total for card payments
func (r *Receipt) PaidOrTotal() decimal.Decimal {
	if r.PaymentType == PaymentCash && r.PaidAmount.Valid {
		return r.PaidAmount.Decimal
	}
	return r.TotalAmount
}

// Rest returns the change handed back to the payer
func (r *Receipt) Rest() decimal.Decimal {
	if r.PaymentType != PaymentCash {
		return decimal.Zero
	}
	return r.PaidOrTotal().Sub(r.TotalAmount)
}

// LineTotal returns UnitPrice * Quantity
func (i ReceiptItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
