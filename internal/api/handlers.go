package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"remarket/server/internal/chat"
	"remarket/server/internal/database"
	"remarket/server/internal/ml"
	"remarket/server/internal/models"
	"remarket/server/internal/tools"
	"remarket/server/internal/valuation"
)

type Handler struct {
	db              *database.Database
	predictor       *ml.Predictor
	toolbox         *tools.Toolbox
	chat            *chat.Service
	defaultDiscount float64
	logger          *logrus.Logger
}

// CompareRequest is the body of the compare tool endpoint.
type CompareRequest struct {
	IDs []int64 `json:"ids" binding:"required"`
}

func NewHandler(db *database.Database, predictor *ml.Predictor, toolbox *tools.Toolbox, chatService *chat.Service, defaultDiscount float64, logger *logrus.Logger) *Handler {
	return &Handler{
		db:              db,
		predictor:       predictor,
		toolbox:         toolbox,
		chat:            chatService,
		defaultDiscount: defaultDiscount,
		logger:          logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	code := http.StatusOK

	if err := h.db.Ping(); err != nil {
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	} else {
		status["database"] = "ok"
	}

	if err := h.predictor.Ready(); err != nil {
		status["model"] = "unavailable"
	} else {
		status["model"] = "ok"
	}

	status["ollama"] = h.chat.Health().Status

	c.JSON(code, status)
}

func (h *Handler) GetProperties(c *gin.Context) {
	var filter models.PropertyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	page, err := h.db.ListProperties(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	property, err := h.db.GetProperty(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get property"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) GetSimilar(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "3"))
	if err != nil || limit < 1 || limit > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 10"})
		return
	}

	property, err := h.db.GetProperty(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find similar properties"})
		return
	}
	if property == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		return
	}

	result, err := h.toolbox.FindSimilar(id, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to find similar properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find similar properties"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetOpportunities(c *gin.Context) {
	minDiscount := h.defaultDiscount
	if raw := c.Query("min_discount"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_discount must be a positive number"})
			return
		}
		minDiscount = v
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	opportunities, err := h.db.GetOpportunities(minDiscount, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get opportunities")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get opportunities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"opportunities": opportunities,
		"min_discount":  minDiscount,
		"count":         len(opportunities),
	})
}

func (h *Handler) PredictQuery(c *gin.Context) {
	var attrs models.ListingAttributes
	if err := c.ShouldBindQuery(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}
	h.predict(c, attrs)
}

func (h *Handler) PredictBody(c *gin.Context) {
	var attrs models.ListingAttributes
	if err := c.ShouldBindJSON(&attrs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.predict(c, attrs)
}

func (h *Handler) predict(c *gin.Context, attrs models.ListingAttributes) {
	if attrs.SurfaceArea <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "surface_area must be positive"})
		return
	}

	pred, err := h.predictor.Predict(attrs)
	if err != nil {
		if errors.Is(err, ml.ErrModelUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Prediction model is not available"})
			return
		}
		h.logger.WithError(err).Error("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		return
	}

	resp := gin.H{
		"predicted_price": pred.PredictedPrice,
		"confidence":      pred.Confidence,
	}
	if pred.Warning != "" {
		resp["warning"] = pred.Warning
	}
	if attrs.Price != nil {
		if v := valuation.Classify(*attrs.Price, float64(pred.PredictedPrice)); v != nil {
			resp["valuation"] = v.Label
			resp["valuation_percentage"] = v.Percent
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) MortgageTool(c *gin.Context) {
	var params tools.MortgageParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	c.JSON(http.StatusOK, tools.CalculateMortgage(params))
}

func (h *Handler) ROITool(c *gin.Context) {
	var params tools.ROIParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	c.JSON(http.StatusOK, tools.CalculateROI(params))
}

func (h *Handler) CompareTool(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids is required"})
		return
	}

	result, err := h.toolbox.Compare(req.IDs)
	if err != nil {
		h.logger.WithError(err).Error("Comparison failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Comparison failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Chat(c *gin.Context) {
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	c.JSON(http.StatusOK, h.chat.HandleMessage(req))
}

func (h *Handler) ChatHealth(c *gin.Context) {
	health := h.chat.Health()
	code := http.StatusOK
	if health.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, health)
}

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.db.GetMarketStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get market stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get market stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminSearch(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	properties, err := h.db.AdminSearchProperties(q, limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to search properties")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"properties": properties, "count": len(properties)})
}

func (h *Handler) AdminUpdate(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	var update models.PropertyUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.db.UpdateProperty(id, update); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to update property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		return
	}

	property, err := h.db.GetProperty(id)
	if err != nil || property == nil {
		c.JSON(http.StatusOK, gin.H{"status": "updated"})
		return
	}

	c.JSON(http.StatusOK, property)
}

func (h *Handler) AdminDelete(c *gin.Context) {
	id, ok := h.propertyID(c)
	if !ok {
		return
	}

	if err := h.db.DeleteProperty(id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
			return
		}
		h.logger.WithError(err).Error("Failed to delete property")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete property"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// propertyID parses the :id path parameter, answering 400 itself when the
// value is not a positive integer.
func (h *Handler) propertyID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid property id"})
		return 0, false
	}
	return id, true
}
