package api

import "github.com/gin-gonic/gin"

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (depends on the conversion log database, when enabled).
type HealthHandler struct {
	dbPing       func() error // nil when the conversion log is disabled
	pdfAvailable func() bool
}

// NewHealthHandler constructs a HealthHandler.
//
// Parameters:
//   - dbPing: checks the conversion log database; nil skips the check.
//   - pdfAvailable: reports whether the PDF renderer can run; nil reports false.
func NewHealthHandler(dbPing func() error, pdfAvailable func() bool) *HealthHandler {
	return &HealthHandler{dbPing: dbPing, pdfAvailable: pdfAvailable}
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: 200 when the database answers (or is not used), 503 otherwise.
//     The body also reports whether PDF downloads are available; a missing
//     renderer does not make the service unready.
func (h *HealthHandler) Register(r *gin.Engine) {
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready if the conversion log database is reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]interface{}
	// @Failure      503  {object}  map[string]interface{}
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		pdf := h.pdfAvailable != nil && h.pdfAvailable()
		if h.dbPing != nil && h.dbPing() != nil {
			c.JSON(503, gin.H{"status": "degraded", "pdf": pdf})
			return
		}
		c.JSON(200, gin.H{"status": "ready", "pdf": pdf})
	})
}
