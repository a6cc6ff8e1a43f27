package handlers

import (
	"errors"
	"net/http"

	"gatepass/middleware"
	"gatepass/services/checkin"
	"gatepass/services/ticket"
	"gatepass/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckInHandler serves the staff scanner and host reporting endpoints.
type CheckInHandler struct {
	CheckIn checkin.CheckInService
	Tickets ticket.TicketService
}

// NewCheckInHandler creates a CheckInHandler.
func NewCheckInHandler(checkInSvc checkin.CheckInService, tickets ticket.TicketService) *CheckInHandler {
	return &CheckInHandler{CheckIn: checkInSvc, Tickets: tickets}
}

type checkInRequest struct {
	QRToken           string   `json:"qrToken" binding:"required"`
	DeviceFingerprint string   `json:"deviceFingerprint"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
}

// CheckInAttendeeHandler validates a scanned token and checks in the
// attendee. Every attempt is audited regardless of outcome; the scanner
// always receives a terminal success/reason response, never a stack
// trace.
func (h *CheckInHandler) CheckInAttendeeHandler(c *gin.Context) {
	scannerUserID := c.GetString("userID")

	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	result := h.CheckIn.ValidateAndCheckIn(checkin.ScanRequest{
		RawToken:          req.QRToken,
		ScannerUserID:     scannerUserID,
		DeviceFingerprint: req.DeviceFingerprint,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		IPAddress:         middleware.GetClientIP(c),
		UserAgent:         c.GetHeader("User-Agent"),
	})

	status := http.StatusOK
	if result.Code == checkin.CodeScannerRateLimitExceeded {
		status = http.StatusTooManyRequests
	}
	c.JSON(status, result)
}

// GetEventAttendeesHandler returns the checked-in roster. Host only.
func (h *CheckInHandler) GetEventAttendeesHandler(c *gin.Context) {
	hostID := c.GetString("userID")
	eventID := c.Param("eventID")

	report, err := h.Tickets.GetAttendees(hostID, eventID)
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetCheckInStatsHandler returns scan statistics and recent activity.
// Host only.
func (h *CheckInHandler) GetCheckInStatsHandler(c *gin.Context) {
	hostID := c.GetString("userID")
	eventID := c.Param("eventID")

	report, err := h.Tickets.GetStats(hostID, eventID)
	if err != nil {
		h.reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *CheckInHandler) reportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ticket.ErrEventNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, ticket.ErrNotAuthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this event"})
	default:
		utils.GetLogger().Error("Failed to build event report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event report"})
	}
}
