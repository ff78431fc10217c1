package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playrivals/playrivals-backend/internal/service"
)

type TournamentHandler struct {
	tournamentService *service.TournamentService
	bracketService    *service.BracketService
	matchService      *service.TournamentMatchService
}

func NewTournamentHandler(
	tournamentService *service.TournamentService,
	bracketService *service.BracketService,
	matchService *service.TournamentMatchService,
) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		bracketService:    bracketService,
		matchService:      matchService,
	}
}

// CreateTournament opens a new tournament, organized by the caller.
func (h *TournamentHandler) CreateTournament(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var params service.CreateTournamentParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tournament, err := h.tournamentService.Create(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tournament)
}

// ListTournaments returns a page of tournaments.
func (h *TournamentHandler) ListTournaments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	tournaments, err := h.tournamentService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tournaments": tournaments,
		"total":       len(tournaments),
	})
}

// GetTournament returns one tournament, bracket included once seeded.
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	tournament, err := h.tournamentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournament)
}

// JoinTournament registers the caller.
func (h *TournamentHandler) JoinTournament(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.tournamentService.Join(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "joined"})
}

// SeedBracket generates the bracket and starts the tournament.
func (h *TournamentHandler) SeedBracket(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.bracketService.Seed(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	tournament, err := h.tournamentService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tournament)
}

// ListTournamentMatches returns the playable matches of a tournament.
func (h *TournamentHandler) ListTournamentMatches(c *gin.Context) {
	matches, err := h.matchService.ListByTournament(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
		"total":   len(matches),
	})
}

// ReportMatch files a result for a tournament match.
func (h *TournamentHandler) ReportMatch(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var params service.ReportMatchParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	match, err := h.matchService.Report(c.Request.Context(),
		userID, c.Param("id"), c.Param("matchId"), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

type verifyMatchRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// VerifyMatch settles a reported match, organizer only.
func (h *TournamentHandler) VerifyMatch(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var req verifyMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	match, err := h.matchService.Verify(c.Request.Context(),
		userID, c.Param("id"), c.Param("matchId"), *req.Approved)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}
