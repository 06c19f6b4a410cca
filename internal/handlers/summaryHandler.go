package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mangashelf/mangashelf/internal/utils"
	"github.com/mangashelf/mangashelf/models"
)

type SummaryHandler struct {
	summarizer ReviewSummarizer
	logger     *zap.Logger
}

func NewSummaryHandler(summarizer ReviewSummarizer, logger *zap.Logger) *SummaryHandler {
	return &SummaryHandler{
		summarizer: summarizer,
		logger:     logger,
	}
}

func (h *SummaryHandler) Summarize(c *gin.Context) {
	var req models.SummarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ProcessGenericBadRequest(c)
		return
	}
	if req.Reviews == nil {
		req.Reviews = []string{}
	}

	result, err := h.summarizer.SummarizeReviews(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("summary request failed",
			zap.String("title", req.MangaTitle),
			zap.Int("reviews", len(req.Reviews)),
			zap.Error(err))
		utils.ProcessGenericBadGateway(c, SummaryUnavailableMessage)
		return
	}

	c.JSON(http.StatusOK, result)
}
