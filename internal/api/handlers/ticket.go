package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playrivals/playrivals-backend/internal/service"
)

type TicketHandler struct {
	ticketService *service.TicketService
}

func NewTicketHandler(ticketService *service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// SubmitTicket creates a matchmaking ticket for the caller.
func (h *TicketHandler) SubmitTicket(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var params service.SubmitTicketParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ticket, err := h.ticketService.Submit(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// CancelTicket cancels the caller's active ticket.
func (h *TicketHandler) CancelTicket(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.ticketService.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetTicket returns one ticket.
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.ticketService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}
