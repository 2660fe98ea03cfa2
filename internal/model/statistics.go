package model

import (
	"time"
)

// StatisticsResponse aggregates a user's receipt turnover for a time range
type StatisticsResponse struct {
	ReceiptCount       int                 `json:"receipt_count"`
	TotalTurnover      string              `json:"total_turnover"`
	ByPaymentType      []PaymentTypeTotals `json:"by_payment_type"`
	TopProducts        []ProductRanking    `json:"top_products"`
	TimeRangeStartDate time.Time           `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time           `json:"time_range_end_date"`
}

// PaymentTypeTotals is the count and turnover for one payment type
type PaymentTypeTotals struct {
	PaymentType PaymentType `json:"payment_type"`
	Count       int         `json:"count"`
	Total       string      `json:"total"`
}

// ProductRanking represents a ranked product based on accumulated quantities
type ProductRanking struct {
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
	TotalValue    string `json:"total_value"`
}
