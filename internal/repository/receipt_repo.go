package repository

import (
	"context"
	"time"

	"receipts/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptFilter narrows a user's receipt listing. Nil fields are not applied.
type ReceiptFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	MinTotal    *decimal.Decimal
	PaymentType *model.PaymentType
	Limit       int
	Offset      int
}

type ReceiptRepository interface {
	// Create inserts the receipt together with its items
	Create(ctx context.Context, receipt *model.Receipt) error
	List(ctx context.Context, userID uuid.UUID, filter ReceiptFilter) ([]model.Receipt, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*model.Receipt, error)
	GetPublic(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	UpdateFilePaths(ctx context.Context, id uuid.UUID, textPath, qrPath string) error
}

type receiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *model.Receipt) error {
	return translate(conn(ctx, r.db).Create(receipt).Error)
}

func (r *receiptRepository) List(ctx context.Context, userID uuid.UUID, filter ReceiptFilter) ([]model.Receipt, error) {
	query := conn(ctx, r.db).Model(&model.Receipt{}).
		Preload("Items", itemOrder).
		Where("user_id = ?", userID)

	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}
	if filter.MinTotal != nil {
		query = query.Where("total_amount >= ?", *filter.MinTotal)
	}
	if filter.PaymentType != nil {
		query = query.Where("payment_type = ?", *filter.PaymentType)
	}

	var receipts []model.Receipt
	if err := query.Order("created_at DESC").Order("id").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&receipts).Error; err != nil {
		return nil, translate(err)
	}
	return receipts, nil
}

func (r *receiptRepository) GetForUser(ctx context.Context, userID, id uuid.UUID) (*model.Receipt, error) {
	var receipt model.Receipt
	if err := conn(ctx, r.db).Preload("Items", itemOrder).
		First(&receipt, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &receipt, nil
}

func (r *receiptRepository) GetPublic(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var receipt model.Receipt
	if err := conn(ctx, r.db).Preload("Items", itemOrder).
		First(&receipt, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &receipt, nil
}

func (r *receiptRepository) UpdateFilePaths(ctx context.Context, id uuid.UUID, textPath, qrPath string) error {
	res := conn(ctx, r.db).Model(&model.Receipt{}).Where("id = ?", id).
		Updates(map[string]interface{}{"text_path": textPath, "qr_path": qrPath})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// itemOrder keeps items in the order they were sold
func itemOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}
