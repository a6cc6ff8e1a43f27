package handlers

import (
	"errors"
	"net/http"

	"gatepass/services/ticket"
	"gatepass/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DeviceHandler serves device registration and management endpoints.
type DeviceHandler struct {
	Tickets ticket.TicketService
}

// NewDeviceHandler creates a DeviceHandler.
func NewDeviceHandler(tickets ticket.TicketService) *DeviceHandler {
	return &DeviceHandler{Tickets: tickets}
}

type registerDeviceRequest struct {
	DeviceName      string            `json:"deviceName"`
	DeviceType      string            `json:"deviceType"`
	PushToken       string            `json:"pushToken"`
	Characteristics map[string]string `json:"characteristics" binding:"required"`
}

// RegisterDeviceHandler enrolls a device for the caller.
func (h *DeviceHandler) RegisterDeviceHandler(c *gin.Context) {
	userID := c.GetString("userID")

	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	device, err := h.Tickets.RegisterDevice(userID, req.DeviceName, req.DeviceType, req.PushToken, req.Characteristics)
	if err != nil {
		if errors.Is(err, ticket.ErrDeviceOwnedByOther) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Device registered to another user"})
			return
		}
		utils.GetLogger().Error("Failed to register device", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	c.JSON(http.StatusOK, device)
}

// GetMyDevicesHandler lists the caller's active devices.
func (h *DeviceHandler) GetMyDevicesHandler(c *gin.Context) {
	userID := c.GetString("userID")

	devices, err := h.Tickets.GetMyDevices(userID)
	if err != nil {
		utils.GetLogger().Error("Failed to list devices", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve devices"})
		return
	}
	c.JSON(http.StatusOK, devices)
}

// RemoveDeviceHandler soft-deactivates one of the caller's devices.
func (h *DeviceHandler) RemoveDeviceHandler(c *gin.Context) {
	userID := c.GetString("userID")
	deviceID := c.Param("deviceID")

	if err := h.Tickets.RemoveDevice(userID, deviceID); err != nil {
		utils.GetLogger().Error("Failed to remove device", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Device removed successfully"})
}
