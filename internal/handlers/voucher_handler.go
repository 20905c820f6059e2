package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/platebite/backend/internal/loyalty"
	"github.com/platebite/backend/internal/services"
)

// VoucherHandler turns recorded redemptions into scannable vouchers.
type VoucherHandler struct {
	vouchers  *services.VoucherService
	validator *services.ValidationHelper
}

func NewVoucherHandler(vouchers *services.VoucherService) *VoucherHandler {
	return &VoucherHandler{
		vouchers:  vouchers,
		validator: services.NewValidationHelper(),
	}
}

// ClaimVoucherRequest carries the scanned voucher code.
type ClaimVoucherRequest struct {
	Code string `json:"code" validate:"required"`
}

// IssueVoucher generates a QR voucher for a redemption
// @Summary Issue redemption voucher
// @Description Generate a single-use QR voucher for a recorded redemption
// @Tags vouchers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Redemption ID"
// @Success 200 {object} object{code=string,qrImage=string}
// @Failure 404 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /loyalty/redemptions/{id}/voucher [get]
func (h *VoucherHandler) IssueVoucher(w http.ResponseWriter, r *http.Request) {
	redemptionID := chi.URLParam(r, "id")

	code, qrImage, err := h.vouchers.IssueVoucher(r.Context(), redemptionID)
	if err != nil {
		if errors.Is(err, loyalty.ErrRedemptionNotFound) {
			services.SendErrorResponse(w, "Redemption not found", http.StatusNotFound, nil)
			return
		}
		services.SendErrorResponse(w, "Failed to issue voucher", http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"code": code, "qrImage": qrImage})
}

// ClaimVoucher redeems a voucher code at point of sale
// @Summary Claim voucher
// @Description Validate and consume a voucher code; each voucher can be claimed once
// @Tags vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ClaimVoucherRequest true "Voucher code"
// @Success 200 {object} services.Voucher
// @Failure 400 {object} services.ErrorResponse
// @Failure 410 {object} services.ErrorResponse
// @Router /loyalty/vouchers/claim [post]
func (h *VoucherHandler) ClaimVoucher(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	var req ClaimVoucherRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	voucher, err := h.vouchers.ClaimVoucher(r.Context(), req.Code)
	if err != nil {
		services.SendErrorResponse(w, "Invalid or expired voucher", http.StatusGone, nil)
		return
	}

	writeJSON(w, http.StatusOK, voucher)
}
