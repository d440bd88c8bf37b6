package handler

import (
	"errors"
	"net/http"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/bizdocs/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ScanFormField is the multipart field carrying the stamped scan
const ScanFormField = "file"

// ScanHandler handles the scanned, stamped copies of invoices
type ScanHandler struct {
	BaseHandler
	scans *billingapp.StampedScanService
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scans *billingapp.StampedScanService) *ScanHandler {
	return &ScanHandler{scans: scans}
}

// Upload godoc
//
//	@Summary		Upload a stamped scan
//	@Description	Stores a PDF, PNG or JPEG scan and links it to the invoice, replacing an earlier scan
//	@Tags			invoices
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		string	true	"Invoice ID"
//	@Param			file	formData	file	true	"Stamped scan"
//	@Success		200		{object}	dto.Response
//	@Failure		400		{object}	dto.Response
//	@Failure		404		{object}	dto.Response
//	@Failure		413		{object}	dto.Response
//	@Router			/invoices/{id}/stamped/scan [post]
func (h *ScanHandler) Upload(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile(ScanFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Request body exceeds maximum allowed size")
			return
		}
		h.ValidationError(c, []dto.FieldDetail{{Field: ScanFormField, Message: "This field is required"}})
		return
	}
	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	result, err := h.scans.Upload(c.Request.Context(), id, billingapp.ScanUpload{
		Filename: header.Filename,
		Body:     file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Link returns a download link for the stamped scan
func (h *ScanHandler) Link(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	link, err := h.scans.Link(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if c.Query("redirect") == "true" {
		c.Redirect(http.StatusFound, link.URL)
		return
	}
	h.Success(c, link)
}

// Remove unlinks and deletes the stamped scan
func (h *ScanHandler) Remove(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.scans.Remove(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
