package repository

import (
	"context"
	"fmt"
	"time"

	"receipts/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentTypeRow is the raw aggregate per payment type; Total is a decimal string
type PaymentTypeRow struct {
	PaymentType model.PaymentType
	Count       int
	Total       string
}

// ProductRow is the raw aggregate per product name; TotalValue is a decimal string
type ProductRow struct {
	ProductName   string
	TotalQuantity int
	TotalValue    string
}

type StatisticsRepository interface {
	GetPaymentTotals(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]PaymentTypeRow, error)
	GetTopProducts(ctx context.Context, userID uuid.UUID, start, end time.Time, limit int) ([]ProductRow, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetPaymentTotals(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]PaymentTypeRow, error) {
	var rows []PaymentTypeRow
	if err := conn(ctx, r.db).Table("receipts").
		Select("payment_type, COUNT(*) as count, COALESCE(CAST(SUM(total_amount) AS TEXT), '0') as total").
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end).
		Group("payment_type").
		Order("payment_type").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query payment totals: %w", err)
	}
	return rows, nil
}

func (r *statisticsRepository) GetTopProducts(ctx context.Context, userID uuid.UUID, start, end time.Time, limit int) ([]ProductRow, error) {
	var rows []ProductRow
	if err := conn(ctx, r.db).Table("receipt_items").
		Select("receipt_items.product_name as product_name, SUM(receipt_items.quantity) as total_quantity, CAST(SUM(receipt_items.quantity * receipt_items.unit_price) AS TEXT) as total_value").
		Joins("JOIN receipts ON receipts.id = receipt_items.receipt_id").
		Where("receipts.user_id = ? AND receipts.created_at >= ? AND receipts.created_at <= ?", userID, start, end).
		Group("receipt_items.product_name").
		Order("total_quantity DESC").
		Order("product_name").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rows, nil
}
