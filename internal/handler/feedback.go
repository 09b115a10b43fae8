package handler

import (
	"errors"
	"net/http"
	"strings"

	"grocerysearch/internal/model"
	"grocerysearch/internal/service"

	"github.com/gin-gonic/gin"
)

// feedbackActions lists the user actions a search result can receive, in display order
var feedbackActions = []string{"click", "add_to_cart", "view_details"}

func isFeedbackAction(action string) bool {
	for _, a := range feedbackActions {
		if a == action {
			return true
		}
	}
	return false
}

// FeedbackHandler attaches user actions to logged searches
type FeedbackHandler struct {
	searchService *service.SearchService
}

// NewFeedbackHandler creates a feedback handler
func NewFeedbackHandler(searchService *service.SearchService) *FeedbackHandler {
	return &FeedbackHandler{searchService: searchService}
}

// Submit handles POST /api/v1/feedback.
// Requires search logging; otherwise answers 501.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !isFeedbackAction(req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid action " + req.Action + ", expected one of " + strings.Join(feedbackActions, ", "),
		})
		return
	}

	switch err := h.searchService.LogFeedback(c.Request.Context(), req.SearchID, req.ProductID, req.Action); {
	case errors.Is(err, service.ErrUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback: " + err.Error()})
	default:
		c.JSON(http.StatusOK, model.FeedbackResponse{Success: true, Message: "Feedback recorded"})
	}
}
