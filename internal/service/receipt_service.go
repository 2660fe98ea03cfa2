package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"receipts/internal/apperror"
	"receipts/internal/events"
	"receipts/internal/model"
	"receipts/internal/receipt"
	"receipts/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	msgReceiptNotFound = "Receipt not found"
	MaxListLimit       = 100
)

// DTOs for Request validation
type ProductRequest struct {
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price" swaggertype:"string" example:"9.99"`
	Quantity int             `json:"quantity" example:"3"`
}

type PaymentRequest struct {
	Type   string           `json:"type" binding:"required" example:"cash"`
	Amount *decimal.Decimal `json:"amount" swaggertype:"string" example:"40.00"`
}

type CreateReceiptRequest struct {
	Products []ProductRequest `json:"products" binding:"required,min=1,dive"`
	Payment  PaymentRequest   `json:"payment" binding:"required"`
}

type ProductResponse struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

type PaymentResponse struct {
	Type   model.PaymentType `json:"type"`
	Amount string            `json:"amount"`
}

// ReceiptResponse is returned by create; amounts are fixed two-decimal strings
type ReceiptResponse struct {
	ID        uuid.UUID         `json:"id"`
	Products  []ProductResponse `json:"products"`
	Payment   PaymentResponse   `json:"payment"`
	Total     string            `json:"total"`
	Rest      string            `json:"rest"`
	CreatedAt time.Time         `json:"created_at"`
}

type ReceiptItemResponse struct {
	ProductName string `json:"product_name"`
	UnitPrice   string `json:"unit_price"`
	Quantity    int    `json:"quantity"`
}

// ReceiptListItem is the shape of listed and fetched receipts; PaidAmount equals Total for card
type ReceiptListItem struct {
	ID          uuid.UUID             `json:"id"`
	Products    []ReceiptItemResponse `json:"products"`
	PaymentType model.PaymentType     `json:"payment_type"`
	Total       string                `json:"total"`
	PaidAmount  string                `json:"paid_amount"`
	Rest        string                `json:"rest"`
	CreatedAt   time.Time             `json:"created_at"`
}

// ListReceiptsRequest carries already-parsed query filters
type ListReceiptsRequest struct {
	StartDate   *time.Time
	EndDate     *time.Time
	MinTotal    *decimal.Decimal
	PaymentType string
	Limit       int
	Offset      int
}

type ReceiptService interface {
	Create(ctx context.Context, user *model.User, req CreateReceiptRequest) (*ReceiptResponse, error)
	List(ctx context.Context, user *model.User, req ListReceiptsRequest) ([]ReceiptListItem, error)
	Get(ctx context.Context, user *model.User, id uuid.UUID) (*ReceiptListItem, error)
}

type receiptService struct {
	repo      repository.ReceiptRepository
	tx        repository.TransactionManager
	publisher events.Publisher
	now       func() time.Time
	log       *slog.Logger
}

func NewReceiptService(repo repository.ReceiptRepository, tx repository.TransactionManager, publisher events.Publisher, now func() time.Time, log *slog.Logger) ReceiptService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &receiptService{
		repo:      repo,
		tx:        tx,
		publisher: publisher,
		now:       now,
		log:       log.With("svc", "receipt"),
	}
}

func (s *receiptService) Create(ctx context.Context, user *model.User, req CreateReceiptRequest) (*ReceiptResponse, error) {
	lines := make([]receipt.ProductLine, 0, len(req.Products))
	for _, p := range req.Products {
		lines = append(lines, receipt.ProductLine{Name: p.Name, Price: p.Price, Quantity: p.Quantity})
	}
	payment := receipt.Payment{Type: model.PaymentType(req.Payment.Type), Amount: req.Payment.Amount}

	// nothing is written unless the calculation succeeds
	calc, err := receipt.Calculate(lines, payment)
	if err != nil {
		return nil, err
	}

	rec := &model.Receipt{
		UserID:      user.ID,
		PaymentType: payment.Type,
		TotalAmount: calc.Total,
		CreatedAt:   s.now().UTC(),
		Items:       make([]model.ReceiptItem, 0, len(calc.Lines)),
	}
	if payment.Type == model.PaymentCash {
		rec.PaidAmount = decimal.NewNullDecimal(*payment.Amount)
	}
	for i, line := range calc.Lines {
		rec.Items = append(rec.Items, model.ReceiptItem{
			ProductName: line.Name,
			UnitPrice:   line.Price,
			Quantity:    line.Quantity,
			Position:    i,
		})
	}

	if err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return s.repo.Create(txCtx, rec)
	}); err != nil {
		return nil, apperror.Internal("An unexpected error occurred while creating the receipt.", err)
	}

	s.log.InfoContext(ctx, "receipt created", "receipt_id", rec.ID, "user_id", user.ID, "total", calc.Total.StringFixed(2))
	if err := s.publisher.Publish(ctx, events.ReceiptCreated{
		Type:        events.TypeReceiptCreated,
		ReceiptID:   rec.ID,
		UserID:      user.ID,
		PaymentType: string(rec.PaymentType),
		Total:       rec.TotalAmount.StringFixed(2),
		CreatedAt:   rec.CreatedAt,
	}); err != nil {
		s.log.WarnContext(ctx, "failed to publish receipt event", "receipt_id", rec.ID, "error", err)
	}

	return mapReceiptResponse(rec), nil
}

func (s *receiptService) List(ctx context.Context, user *model.User, req ListReceiptsRequest) ([]ReceiptListItem, error) {
	filter := repository.ReceiptFilter{
		MinTotal: req.MinTotal,
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if req.Limit <= 0 {
		return nil, apperror.Validation("limit must be greater than 0")
	}
	if req.Limit > MaxListLimit {
		filter.Limit = MaxListLimit
	}
	if req.Offset < 0 {
		return nil, apperror.Validation("offset must not be negative")
	}
	if req.PaymentType != "" {
		pt := model.PaymentType(req.PaymentType)
		if !pt.Valid() {
			return nil, apperror.Validation("Invalid payment type, must be 'cash' or 'card'.")
		}
		filter.PaymentType = &pt
	}
	if req.StartDate != nil {
		start := req.StartDate.UTC()
		filter.StartDate = &start
	}
	if req.EndDate != nil {
		end := req.EndDate.UTC()
		filter.EndDate = &end
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, apperror.Validation("end_date must not be before start_date")
	}

	receipts, err := s.repo.List(ctx, user.ID, filter)
	if err != nil {
		return nil, apperror.Internal("An unexpected error occurred while listing receipts.", err)
	}

	items := make([]ReceiptListItem, 0, len(receipts))
	for i := range receipts {
		items = append(items, mapListItem(&receipts[i]))
	}
	return items, nil
}

func (s *receiptService) Get(ctx context.Context, user *model.User, id uuid.UUID) (*ReceiptListItem, error) {
	rec, err := s.repo.GetForUser(ctx, user.ID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(msgReceiptNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("failed to fetch receipt", err)
	}
	item := mapListItem(rec)
	return &item, nil
}

func mapReceiptResponse(rec *model.Receipt) *ReceiptResponse {
	resp := &ReceiptResponse{
		ID:        rec.ID,
		Products:  make([]ProductResponse, 0, len(rec.Items)),
		Payment:   PaymentResponse{Type: rec.PaymentType, Amount: rec.PaidOrTotal().StringFixed(2)},
		Total:     rec.TotalAmount.StringFixed(2),
		Rest:      rec.Rest().StringFixed(2),
		CreatedAt: rec.CreatedAt,
	}
	for _, item := range rec.Items {
		resp.Products = append(resp.Products, ProductResponse{
			Name:     item.ProductName,
			Price:    item.UnitPrice.StringFixed(2),
			Quantity: item.Quantity,
			Total:    item.LineTotal().StringFixed(2),
		})
	}
	return resp
}

func mapListItem(rec *model.Receipt) ReceiptListItem {
	item := ReceiptListItem{
		ID:          rec.ID,
		Products:    make([]ReceiptItemResponse, 0, len(rec.Items)),
		PaymentType: rec.PaymentType,
		Total:       rec.TotalAmount.StringFixed(2),
		PaidAmount:  rec.PaidOrTotal().StringFixed(2),
		Rest:        rec.Rest().StringFixed(2),
		CreatedAt:   rec.CreatedAt,
	}
	for _, it := range rec.Items {
		item.Products = append(item.Products, ReceiptItemResponse{
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			Quantity:    it.Quantity,
		})
	}
	return item
}
