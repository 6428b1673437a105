package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/pipeline-backend/ingest"
	"github.com/semanticallynull/pipeline-backend/internal/middleware"
	"github.com/semanticallynull/pipeline-backend/upstream"
)

type ingestResponse struct {
	Status           string `json:"status"`
	RecordsProcessed int    `json:"records_processed"`
	Error            string `json:"error,omitempty"`
}

// ingestHandler triggers one synchronous ingestion run. records_processed is
// reported even on failure so callers can see how far the run got.
func (a *API) ingestHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	processed, err := a.ing.Run(c.Request.Context())
	if err != nil {
		logger.ErrorContext(c, "ingestion run failed", "records_processed", processed, "error", err)

		// A run that stored nothing because the source was down is the
		// source's fault; a run that aborted midway is reported as ours.
		status := http.StatusInternalServerError
		if !errors.Is(err, ingest.ErrIngestionFailed) &&
			(errors.Is(err, upstream.ErrUnavailable) || errors.Is(err, upstream.ErrMalformed)) {
			status = http.StatusBadGateway
		}
		c.JSON(status, ingestResponse{
			Status:           "error",
			RecordsProcessed: processed,
			Error:            err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, ingestResponse{
		Status:           "success",
		RecordsProcessed: processed,
	})
}
