package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playrivals/playrivals-backend/internal/service"
)

type MatchHandler struct {
	matchService *service.MatchService
}

func NewMatchHandler(matchService *service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// GetMatch returns one matchmaking match.
func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.matchService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}
