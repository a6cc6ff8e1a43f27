package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"

	"gatepass/services/checkin"
	"gatepass/services/ticket"
	"gatepass/utils"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// TicketHandler serves registration, ticket listing and QR issuance.
type TicketHandler struct {
	Tickets ticket.TicketService
	CheckIn checkin.CheckInService
}

// NewTicketHandler creates a TicketHandler.
func NewTicketHandler(tickets ticket.TicketService, checkInSvc checkin.CheckInService) *TicketHandler {
	return &TicketHandler{Tickets: tickets, CheckIn: checkInSvc}
}

// RegisterForEventHandler registers the caller for the event attached to
// a listing.
func (h *TicketHandler) RegisterForEventHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")
	listingID := c.Param("listingID")

	var req ticket.RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	view, err := h.Tickets.RegisterForEvent(userID, listingID, req)
	if err != nil {
		switch {
		case errors.Is(err, ticket.ErrUserNotVerified):
			c.JSON(http.StatusForbidden, gin.H{"error": "User verification required to register for events"})
		case errors.Is(err, ticket.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User profile not found"})
		case errors.Is(err, ticket.ErrNoEventForListing):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This listing does not have check-in enabled"})
		case errors.Is(err, ticket.ErrAlreadyRegistered):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Already registered for this event"})
		case errors.Is(err, ticket.ErrEventAtCapacity):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Event is at capacity"})
		case errors.Is(err, ticket.ErrDeviceOwnedByOther):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Device registered to another user"})
		default:
			logger.Error("Failed to register for event", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register for event"})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetMyTicketsHandler lists the caller's active tickets.
func (h *TicketHandler) GetMyTicketsHandler(c *gin.Context) {
	userID := c.GetString("userID")

	views, err := h.Tickets.GetMyTickets(userID)
	if err != nil {
		utils.GetLogger().Error("Failed to list tickets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tickets"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GenerateQRHandler issues a fresh rotating token for a ticket and
// renders it as a QR PNG. Tokens are short-lived; clients re-request on
// the event's rotation interval.
func (h *TicketHandler) GenerateQRHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")
	ticketID := c.Param("ticketID")

	issued, err := h.CheckIn.IssueToken(ticketID, userID)
	if err != nil {
		switch checkin.CodeOf(err) {
		case checkin.CodeRateLimitExceeded:
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "QR generation rate limit exceeded. Please wait."})
		case checkin.CodeInvalidToken:
			c.JSON(http.StatusNotFound, gin.H{"error": "Ticket not found"})
		case checkin.CodeTicketCancelled:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket is not active"})
		case checkin.CodeAlreadyCheckedIn:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Ticket already used"})
		case checkin.CodeUserNotVerified:
			c.JSON(http.StatusBadRequest, gin.H{"error": "User verification required"})
		default:
			logger.Error("Failed to issue QR token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		}
		return
	}

	png, err := qrcode.Encode(issued.Token, qrcode.Medium, 256)
	if err != nil {
		logger.Error("Failed to render QR code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"qr_code_base64": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		"expires_at":     issued.ExpiresAt,
		"valid_seconds":  issued.ValidSeconds,
	})
}
