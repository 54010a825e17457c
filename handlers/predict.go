package handlers

import (
	"encoding/csv"
	"math"
	"net/http"

	"exoplanet-finder-api/middleware"
	"exoplanet-finder-api/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PredictHandler struct {
	full    *services.PredictionService
	reduced *services.PredictionService
}

func NewPredictHandler(full, reduced *services.PredictionService) *PredictHandler {
	return &PredictHandler{full: full, reduced: reduced}
}

// Pointer fields so "required" catches absent keys without rejecting zeros.
type PredictRequest struct {
	Period   *float64 `json:"period" binding:"required"`
	Duration *float64 `json:"duration" binding:"required"`
	Depth    *float64 `json:"depth" binding:"required"`
	Prad     *float64 `json:"prad" binding:"required"`
	Steff    *float64 `json:"steff" binding:"required"`
	Srad     *float64 `json:"srad" binding:"required"`
	Mag      *float64 `json:"mag" binding:"required"`
}

type PredictReducedRequest struct {
	Period   *float64 `json:"period" binding:"required"`
	Duration *float64 `json:"duration" binding:"required"`
	Depth    *float64 `json:"depth" binding:"required"`
	Mag      *float64 `json:"mag" binding:"required"`
}

// Predict labels one full-schema candidate.
func (h *PredictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]float64{
		"period": *req.Period, "duration": *req.Duration, "depth": *req.Depth,
		"prad": *req.Prad, "steff": *req.Steff, "srad": *req.Srad, "mag": *req.Mag,
	}

	res, err := h.full.PredictOne(c.Request.Context(), fields, middleware.UserID(c))
	if err != nil {
		h.pipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction":  res.Prediction,
		"probability": res.Probability,
		"shap_values": res.Attributions,
	})
}

// PredictReduced labels one reduced-schema candidate. Its response also
// carries the display label and a rounded probability.
func (h *PredictHandler) PredictReduced(c *gin.Context) {
	var req PredictReducedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]float64{
		"period": *req.Period, "duration": *req.Duration, "depth": *req.Depth, "mag": *req.Mag,
	}

	res, err := h.reduced.PredictOne(c.Request.Context(), fields, middleware.UserID(c))
	if err != nil {
		h.pipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prediction":       res.Prediction,
		"prediction_label": res.Label,
		"probability":      math.Round(res.Probability*1000) / 1000,
		"shap_values":      res.Attributions,
	})
}

// BulkPredict labels an uploaded CSV of full-schema candidates and streams
// back the table with a disposition column appended.
func (h *PredictHandler) BulkPredict(c *gin.Context) {
	h.bulkPredict(c, h.full, "predictions.csv")
}

func (h *PredictHandler) BulkPredictReduced(c *gin.Context) {
	h.bulkPredict(c, h.reduced, "predictions_noob.csv")
}

func (h *PredictHandler) bulkPredict(c *gin.Context, svc *services.PredictionService, filename string) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file not found"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse CSV"})
		return
	}
	if len(records) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "CSV must have a header row and at least one data row"})
		return
	}

	header, rows := records[0], records[1:]
	res, err := svc.PredictBatch(c.Request.Context(), header, rows, middleware.UserID(c))
	if err != nil {
		h.pipelineError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(append(header, "disposition")); err != nil {
		log.Error().Err(err).Msg("csv header write failed")
		return
	}
	for i, row := range rows {
		if err := w.Write(append(row, res.Dispositions[i])); err != nil {
			log.Error().Err(err).Int("row", i).Msg("csv row write failed")
			return
		}
	}
	w.Flush()
}

func (h *PredictHandler) pipelineError(c *gin.Context, err error) {
	if services.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Error().Err(err).Str("path", c.FullPath()).Msg("prediction pipeline failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
}
