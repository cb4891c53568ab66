package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/k4bridge/internal/domain/dto"
	"github.com/guttosm/k4bridge/internal/domain/models"
	"github.com/guttosm/k4bridge/internal/export"
	"github.com/guttosm/k4bridge/internal/ingestion"
	"github.com/guttosm/k4bridge/internal/report"
	"github.com/guttosm/k4bridge/internal/service"
	"github.com/guttosm/k4bridge/internal/session"
)

const uploadField = "file"

// Handler provides HTTP handlers for the conversion endpoints.
//
// Responsibilities:
//   - Validate uploads and run them through the ConversionService
//   - Keep finished conversions in the session store
//   - Render artifacts on demand through the exporter registry
type Handler struct {
	svc       service.ConversionService
	sessions  *session.Store
	exporters *export.Registry
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc: conversion pipeline.
//   - sessions: in-memory store holding converted uploads until they expire.
//   - exporters: output formats available for download.
func NewHandler(svc service.ConversionService, sessions *session.Store, exporters *export.Registry) *Handler {
	return &Handler{svc: svc, sessions: sessions, exporters: exporters}
}

// CreateConversion godoc
// @Summary      Convert a Trading 212 export
// @Description  Uploads a Trading 212 CSV export, extracts the sell trades and computes the K4 totals. The result is kept in memory for SESSION_TTL.
// @Tags         conversions
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Trading 212 CSV export"
// @Success      201   {object}  dto.ConversionResponse  "Created"
// @Failure      400   {object}  dto.ErrorResponse       "Malformed upload"
// @Failure      413   {object}  dto.ErrorResponse       "Upload too large"
// @Failure      415   {object}  dto.ErrorResponse       "Not a CSV file"
// @Failure      422   {object}  dto.ErrorResponse       "No sell transactions"
// @Failure      500   {object}  dto.ErrorResponse       "Internal Error"
// @Router       /api/v1/conversions [post]
func (h *Handler) CreateConversion(c *gin.Context) {
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse("upload too large", err))
			return
		}
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("multipart field \"file\" is required", err))
		return
	}

	if err := validateClientContentType(fh.Header.Get("Content-Type")); err != nil {
		c.JSON(http.StatusUnsupportedMediaType, dto.NewErrorResponse("unsupported file type", err))
		return
	}

	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("cannot open upload", err))
		return
	}
	defer func() { _ = file.Close() }()

	if _, err := validateMagicBytes(file); err != nil {
		c.JSON(http.StatusUnsupportedMediaType, dto.NewErrorResponse("unsupported file type", err))
		return
	}

	conv, err := h.svc.Convert(c.Request.Context(), fh.Filename, file)
	switch {
	case errors.Is(err, ingestion.ErrNoSellTransactions):
		c.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse("No sell transactions found in this CSV file. Please upload a file containing sell trades.", err))
		return
	case errors.Is(err, ingestion.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("file is not a valid Trading 212 CSV export", err))
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("conversion failed", err))
		return
	}

	expiresAt := h.sessions.Put(conv)
	c.Header("Location", conversionPath(conv.ID))
	c.JSON(http.StatusCreated, h.toResponse(conv, expiresAt))
}

// GetConversion godoc
// @Summary      Get a conversion
// @Description  Returns the totals, preview and artifact links of a conversion that has not expired yet.
// @Tags         conversions
// @Produce      json
// @Param        id   path      string  true  "Conversion id"
// @Success      200  {object}  dto.ConversionResponse  "Success"
// @Failure      404  {object}  dto.ErrorResponse       "Unknown or expired"
// @Router       /api/v1/conversions/{id} [get]
func (h *Handler) GetConversion(c *gin.Context) {
	conv, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("conversion not found or expired", nil))
		return
	}
	c.JSON(http.StatusOK, h.toResponse(conv, conv.CreatedAt.Add(h.sessions.TTL())))
}

// DownloadArtifact godoc
// @Summary      Download an artifact
// @Description  Renders the K4 workbook or the trade statement of a conversion in the requested format.
// @Tags         conversions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet,text/csv,application/pdf
// @Param        id      path  string  true  "Conversion id"
// @Param        kind    path  string  true  "Artifact kind"   Enums(k4, statement)
// @Param        format  path  string  true  "Output format"   Enums(xlsx, csv, pdf)
// @Success      200  {file}    file               "Artifact"
// @Failure      400  {object}  dto.ErrorResponse  "Unknown kind or format"
// @Failure      404  {object}  dto.ErrorResponse  "Unknown or expired"
// @Failure      503  {object}  dto.ErrorResponse  "Renderer unavailable"
// @Router       /api/v1/conversions/{id}/artifacts/{kind}/{format} [get]
func (h *Handler) DownloadArtifact(c *gin.Context) {
	conv, ok := h.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("conversion not found or expired", nil))
		return
	}

	kind, err := report.ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid artifact kind", err))
		return
	}
	format, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid artifact format", err))
		return
	}
	exporter, ok := h.exporters.Get(format)
	if !ok {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("format not enabled", fmt.Errorf("no exporter for %s", format)))
		return
	}

	rep, err := report.Build(kind, conv)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid artifact kind", err))
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(c.Request.Context(), &buf, rep); err != nil {
		if errors.Is(err, export.ErrRendererUnavailable) {
			c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse("renderer unavailable", err))
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("export failed", err))
		return
	}

	filename := export.Filename(kind, format, conv.TaxYear)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

// DeleteConversion godoc
// @Summary      Discard a conversion
// @Description  Removes the conversion from memory before it expires.
// @Tags         conversions
// @Param        id   path  string  true  "Conversion id"
// @Success      204  "Deleted"
// @Failure      404  {object}  dto.ErrorResponse  "Unknown or expired"
// @Router       /api/v1/conversions/{id} [delete]
func (h *Handler) DeleteConversion(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("conversion not found or expired", nil))
		return
	}
	c.Status(http.StatusNoContent)
}

func conversionPath(id string) string {
	return "/api/v1/conversions/" + id
}

func (h *Handler) toResponse(conv *models.Conversion, expiresAt time.Time) dto.ConversionResponse {
	t := conv.Totals
	resp := dto.ConversionResponse{
		ID:                  conv.ID,
		SourceFilename:      conv.SourceFilename,
		TaxYear:             conv.TaxYear,
		CreatedAt:           conv.CreatedAt,
		ExpiresAt:           expiresAt.UTC(),
		TransactionCount:    t.TransactionCount,
		UniqueSecurityCount: t.UniqueSecurityCount,
		Totals: dto.TotalsResponse{
			Gains:                t.Gains.StringFixed(2),
			Losses:               t.Losses.StringFixed(2),
			Net:                  t.Net.StringFixed(2),
			TotalProceeds:        t.TotalProceeds.StringFixed(2),
			TotalAcquisitionCost: t.TotalAcquisitionCost.StringFixed(2),
			EstimatedTax:         t.EstimatedTax().StringFixed(2),
		},
	}

	for _, p := range report.Preview(conv) {
		if p.Separator {
			resp.Preview = append(resp.Preview, dto.PreviewRowResponse{Separator: true, Label: p.Label()})
			continue
		}
		resp.Preview = append(resp.Preview, dto.PreviewRowResponse{
			Date:       p.Date,
			Instrument: p.Instrument,
			ISIN:       p.ISIN,
			Quantity:   p.Quantity,
			TotalSEK:   p.TotalSEK,
			ProfitLoss: p.ProfitLoss,
		})
	}

	for _, kind := range report.Kinds {
		for _, f := range h.exporters.Formats() {
			resp.Artifacts = append(resp.Artifacts, dto.ArtifactLink{
				Kind:     string(kind),
				Format:   string(f),
				Filename: export.Filename(kind, f, conv.TaxYear),
				URL:      fmt.Sprintf("%s/artifacts/%s/%s", conversionPath(conv.ID), kind, f),
			})
		}
	}

	return resp
}
