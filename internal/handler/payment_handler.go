package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tap-api/internal/dto"
	"github.com/noah-isme/tap-api/internal/service"
	appErrors "github.com/noah-isme/tap-api/pkg/errors"
	"github.com/noah-isme/tap-api/pkg/response"
)

type paymentService interface {
	Create(ctx context.Context, studentID string, req dto.StudentPaymentDto) (*dto.StudentPaymentDto, error)
	Get(ctx context.Context, paymentID string) (*dto.StudentPaymentDto, error)
	List(ctx context.Context, studentID string) ([]dto.StudentPaymentDto, error)
	Export(ctx context.Context, studentID, format string) (*service.Statement, error)
	OpenReceipt(ctx context.Context, paymentID string) (*os.File, error)
}

// PaymentHandler exposes student payment endpoints.
type PaymentHandler struct {
	payments paymentService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments paymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Create godoc
// @Summary Record a payment
// @Description The student id from the path always wins over one in the body
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.StudentPaymentDto true "Payment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students/{id}/payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.StudentPaymentDto
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid payment payload"))
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}

// List godoc
// @Summary List payments of a student
// @Tags Payments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	payments, err := h.payments.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payments)
}

// Export godoc
// @Summary Download payment statement
// @Tags Payments
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	statement, err := h.payments.Export(c.Request.Context(), id, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", statement.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, statement.ContentType, statement.Content)
}

// Get godoc
// @Summary Get payment
// @Tags Payments
// @Produce json
// @Param paymentId path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/payments/{paymentId} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, ok := idParam(c, "paymentId")
	if !ok {
		return
	}
	payment, err := h.payments.Get(c.Request.Context(), paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, payment)
}

// Receipt godoc
// @Summary Download payment receipt
// @Tags Payments
// @Produce application/pdf
// @Param paymentId path string true "Payment ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /students/payments/{paymentId}/receipt [get]
func (h *PaymentHandler) Receipt(c *gin.Context) {
	paymentID, ok := idParam(c, "paymentId")
	if !ok {
		return
	}
	file, err := h.payments.OpenReceipt(c.Request.Context(), paymentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read receipt"))
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, map[string]string{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", "receipt-"+paymentID+".pdf"),
		"Cache-Control":       "no-store",
	})
}
