package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"receipts/internal/middleware"
	"receipts/internal/receipt"
	"receipts/internal/service"
	"receipts/pkg/pagination"
	"receipts/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	fileTypeText = "txt"
	fileTypeQR   = "qr"
)

type ReceiptHandler struct {
	receiptService  service.ReceiptService
	artifactService service.ArtifactService
	auth            middleware.UserResolver
}

func NewReceiptHandler(receiptService service.ReceiptService, artifactService service.ArtifactService, auth middleware.UserResolver) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService:  receiptService,
		artifactService: artifactService,
		auth:            auth,
	}
}

func (h *ReceiptHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/receipt")
	{
		group.GET("/public/:id/view", h.ViewPublic)

		authed := group.Group("", middleware.RequireAuth(h.auth))
		authed.POST("/receipt", h.CreateReceipt)
		authed.GET("/receipts", h.ListReceipts)
		authed.GET("/receipts/:id", h.GetReceipt)
	}
}

// CreateReceipt handles POST /receipt/receipt
// @Summary      Create a receipt
// @Description  Computes line totals, total and change, then stores the receipt with its items
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateReceiptRequest  true  "Products and payment"
// @Success      201      {object}  response.Response{data=service.ReceiptResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /receipt/receipt [post]
func (h *ReceiptHandler) CreateReceipt(c *gin.Context) {
	var req service.CreateReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, _ := middleware.CurrentUser(c)
	rec, err := h.receiptService.Create(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Write(c, http.StatusCreated, rec)
}

// ListReceipts handles GET /receipt/receipts
// @Summary      List receipts
// @Description  Lists the caller's receipts, newest first
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        start_date    query     string  false  "Created at or after (RFC3339)"
// @Param        end_date      query     string  false  "Created at or before (RFC3339)"
// @Param        min_total     query     string  false  "Minimum total"
// @Param        payment_type  query     string  false  "cash or card"
// @Param        limit         query     int     false  "Page size (default 10)"
// @Param        offset        query     int     false  "Rows to skip"
// @Success      200           {object}  response.Response{data=[]service.ReceiptListItem}
// @Failure      400           {object}  response.Response
// @Failure      401           {object}  response.Response
// @Failure      422           {object}  response.Response
// @Router       /receipt/receipts [get]
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
	page, err := pagination.Parse(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	req := service.ListReceiptsRequest{
		PaymentType: c.Query("payment_type"),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if req.StartDate, err = timeQuery(c, "start_date"); err != nil {
		respondBindError(c, err)
		return
	}
	if req.EndDate, err = timeQuery(c, "end_date"); err != nil {
		respondBindError(c, err)
		return
	}
	if raw := c.Query("min_total"); raw != "" {
		minTotal, err := decimal.NewFromString(raw)
		if err != nil {
			respondBindError(c, errors.New("min_total must be a decimal number"))
			return
		}
		req.MinTotal = &minTotal
	}

	user, _ := middleware.CurrentUser(c)
	receipts, err := h.receiptService.List(c.Request.Context(), user, req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Write(c, http.StatusOK, receipts)
}

// GetReceipt handles GET /receipt/receipts/:id
// @Summary      Get a receipt
// @Tags         receipts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Receipt ID"
// @Success      200  {object}  response.Response{data=service.ReceiptListItem}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /receipt/receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBindError(c, errors.New("id must be a UUID"))
		return
	}

	user, _ := middleware.CurrentUser(c)
	rec, err := h.receiptService.Get(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Write(c, http.StatusOK, rec)
}

// ViewPublic handles GET /receipt/public/:id/view
// @Summary      View a receipt artifact
// @Description  Serves the text ticket or its QR code inline, generating both on first request. No auth.
// @Tags         receipts
// @Produce      plain
// @Produce      png
// @Param        id           path      string  true   "Receipt ID"
// @Param        file_type    query     string  false  "txt or qr"  default(txt)
// @Param        line_length  query     int     false  "Ticket width"  default(40)
// @Success      200
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /receipt/public/{id}/view [get]
func (h *ReceiptHandler) ViewPublic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBindError(c, errors.New("id must be a UUID"))
		return
	}

	fileType := c.DefaultQuery("file_type", fileTypeText)
	if fileType != fileTypeText && fileType != fileTypeQR {
		response.Fail(c, http.StatusBadRequest, "file_type must be 'txt' or 'qr'")
		return
	}

	lineLength, err := strconv.Atoi(c.DefaultQuery("line_length", strconv.Itoa(receipt.DefaultLineWidth)))
	if err != nil {
		respondBindError(c, errors.New("line_length must be an integer"))
		return
	}
	if lineLength > receipt.MaxLineWidth {
		respondBindError(c, fmt.Errorf("line_length must not exceed %d", receipt.MaxLineWidth))
		return
	}

	arts, err := h.artifactService.Prepare(c.Request.Context(), id, lineLength)
	if err != nil {
		respondError(c, err)
		return
	}

	path, contentType, missing := arts.TextPath, "text/plain; charset=utf-8", "TXT file not found on server"
	if fileType == fileTypeQR {
		path, contentType, missing = arts.QRPath, "image/png", "QR file not found on server"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		response.Fail(c, http.StatusNotFound, missing)
		return
	}

	c.Header("Content-Disposition", "inline")
	c.Data(http.StatusOK, contentType, data)
}

func timeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New(key + " must be an RFC3339 timestamp")
	}
	return &t, nil
}
