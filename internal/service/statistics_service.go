package service

import (
	"context"
	"time"

	"receipts/internal/apperror"
	"receipts/internal/model"
	"receipts/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

type StatisticsService interface {
	GetStatistics(ctx context.Context, userID uuid.UUID, startDate, endDate time.Time) (*model.StatisticsResponse, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

// GetStatistics aggregates the user's receipts created within [startDate, endDate]
func (s *statisticsService) GetStatistics(ctx context.Context, userID uuid.UUID, startDate, endDate time.Time) (*model.StatisticsResponse, error) {
	start, end := startDate.UTC(), endDate.UTC()
	if end.Before(start) {
		return nil, apperror.Validation("end_date must not be before start_date")
	}

	resp := &model.StatisticsResponse{
		TimeRangeStartDate: start,
		TimeRangeEndDate:   end,
		ByPaymentType:      []model.PaymentTypeTotals{},
		TopProducts:        []model.ProductRanking{},
	}

	rows, err := s.repo.GetPaymentTotals(ctx, userID, start, end)
	if err != nil {
		return nil, apperror.Internal("failed to compute statistics", err)
	}
	turnover := decimal.Zero
	for _, row := range rows {
		total := parseAmount(row.Total)
		turnover = turnover.Add(total)
		resp.ReceiptCount += row.Count
		resp.ByPaymentType = append(resp.ByPaymentType, model.PaymentTypeTotals{
			PaymentType: row.PaymentType,
			Count:       row.Count,
			Total:       total.StringFixed(2),
		})
	}
	resp.TotalTurnover = turnover.StringFixed(2)

	products, err := s.repo.GetTopProducts(ctx, userID, start, end, topProductsLimit)
	if err != nil {
		return nil, apperror.Internal("failed to compute statistics", err)
	}
	for _, p := range products {
		resp.TopProducts = append(resp.TopProducts, model.ProductRanking{
			ProductName:   p.ProductName,
			TotalQuantity: p.TotalQuantity,
			TotalValue:    parseAmount(p.TotalValue).StringFixed(2),
		})
	}
	return resp, nil
}

// parseAmount tolerates the driver-specific text forms of SUM over numeric columns
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}
