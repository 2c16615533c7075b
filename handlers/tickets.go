package handlers

import (
	"errors"
	"net/http"

	"campus-facilities-api/services"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// CreateTicket forwards a repair request to the ticketing provider after
// keyword routing and priority assignment.
func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req services.TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.tickets.CreateTicket(c.Request.Context(), req)
	if err != nil {
		status, msg := ticketErrorStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetTicketStatus looks up a ticket's current state at the provider.
func (h *TicketHandler) GetTicketStatus(c *gin.Context) {
	status, err := h.tickets.GetTicketStatus(c.Request.Context(), c.Param("number"))
	if err != nil {
		code, msg := ticketErrorStatus(err)
		c.JSON(code, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetTickets lists a student's tickets by name and/or roll number.
func (h *TicketHandler) GetTickets(c *gin.Context) {
	summaries, err := h.tickets.GetTicketsByStudent(
		c.Request.Context(),
		c.Query("student_name"),
		c.Query("roll_number"),
	)
	if err != nil {
		code, msg := ticketErrorStatus(err)
		c.JSON(code, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, ListResponse{Data: summaries})
}

// ticketErrorStatus keeps not-found distinct from provider failures: 404 for
// an unknown ticket, 502 for a provider error or transport failure, 400 for
// input rejected before any outbound call.
func ticketErrorStatus(err error) (int, string) {
	var validationErr *services.ValidationError
	var remoteErr *services.RemoteServiceError

	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "ticket not found"
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway, "ticketing provider request failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
