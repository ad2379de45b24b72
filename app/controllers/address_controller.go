package controllers

import (
	"compress/gzip"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-validator/app/models"
	"github.com/address-validator/app/requests"
	"github.com/address-validator/app/responses"
	"github.com/address-validator/app/services"
	"github.com/address-validator/helpers/utils"
)

const ndjsonContentType = "application/x-ndjson"

// AddressController handles address validation requests
type AddressController struct {
	addressService *services.AddressService
	logger         *zap.Logger
}

// NewAddressController creates AddressController
func NewAddressController(addressService *services.AddressService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		logger:         logger,
	}
}

// ValidateAddress POST /validate-address
func (ac *AddressController) ValidateAddress(c *gin.Context) {
	var req requests.ValidateAddressRequest
	if !ac.bind(c, &req) {
		return
	}

	result, cacheHit := ac.addressService.Validate(c.Request.Context(), *req.Address)
	if cacheHit {
		c.Header("X-Cache", "HIT")
	} else {
		c.Header("X-Cache", "MISS")
	}

	c.JSON(http.StatusOK, result)
}

// BatchValidate POST /validate-address/batch. Clients sending
// "Accept: application/x-ndjson" get one result per line instead of a JSON
// object, gzip-compressed when they accept it.
func (ac *AddressController) BatchValidate(c *gin.Context) {
	var req requests.BatchValidateRequest
	if !ac.bind(c, &req) {
		return
	}

	maxAddresses := ac.addressService.MaxBatchSize()
	if len(req.Addresses) > maxAddresses {
		responses.AbortWithError(c, http.StatusBadRequest, responses.CodeTooManyAddresses,
			"Batch exceeds the maximum number of addresses",
			gin.H{"max": maxAddresses, "received": len(req.Addresses)})
		return
	}

	results, err := ac.addressService.ValidateBatch(c.Request.Context(), req.Addresses)
	if err != nil {
		if errors.Is(err, services.ErrTooManyAddresses) || errors.Is(err, services.ErrEmptyBatch) {
			responses.AbortWithError(c, http.StatusBadRequest, responses.CodeInvalidRequest, err.Error(), nil)
			return
		}
		ac.logger.Warn("Batch validation aborted", zap.Error(err))
		responses.AbortWithError(c, http.StatusInternalServerError, responses.CodeInternalServerError,
			"Unexpected server error", nil)
		return
	}

	batchID := utils.GenerateUUID()
	c.Header("X-Batch-ID", batchID)

	if strings.Contains(c.GetHeader("Accept"), ndjsonContentType) {
		ac.streamNDJSON(c, results)
		return
	}

	c.JSON(http.StatusOK, responses.BatchValidateResponse{
		BatchID: batchID,
		Total:   len(results),
		Results: results,
	})
}

// HealthCheck GET /health, /ready, /live
func (ac *AddressController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthResponse{Status: "ok"})
}

// bind decodes and validates the JSON body, writing the 400 envelope on failure
func (ac *AddressController) bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	issues, ok := requests.Issues(err)
	if !ok {
		ac.logger.Warn("Unexpected bind error", zap.Error(err))
		issues = []requests.FieldIssue{{Path: "", Message: "request body could not be read"}}
	}

	responses.AbortWithError(c, http.StatusBadRequest, responses.CodeInvalidRequest,
		"Request validation failed", issues)
	return false
}

func (ac *AddressController) streamNDJSON(c *gin.Context, results []*models.ValidationResult) {
	gzipEnabled := strings.Contains(c.GetHeader("Accept-Encoding"), "gzip")

	c.Header("Content-Type", ndjsonContentType)
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
	}
	c.Status(http.StatusOK)

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{ResponseWriter: c.Writer, gzWriter: gzWriter}
	}

	nw := utils.NewNDJSONWriter(writer)
	for _, result := range results {
		if err := nw.Write(result); err != nil {
			ac.logger.Warn("NDJSON stream interrupted", zap.Error(err))
			return
		}
	}
}

// gzipResponseWriter routes body writes through gzip
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gzWriter.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	_ = w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}
