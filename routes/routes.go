package routes

import (
	"net/http"
	"time"

	userRepo "gatepass/database/repository/user"
	"gatepass/handlers"
	"gatepass/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle carries every handler the router needs.
type HandlerBundle struct {
	UserRepo userRepo.UserRepository

	Auth    *handlers.AuthHandler
	Ticket  *handlers.TicketHandler
	Device  *handlers.DeviceHandler
	CheckIn *handlers.CheckInHandler
}

// RegisterAuthRoutes registers account and session endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", hb.Auth.RegisterHandler)
		api.POST("/login", hb.Auth.LoginHandler)

		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/logout", hb.Auth.LogoutHandler)
	}
}

// RegisterTicketRoutes registers event registration, ticket listing and
// QR issuance endpoints.
func RegisterTicketRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/tickets")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/register/:listingID", hb.Ticket.RegisterForEventHandler)
		api.GET("/mine", hb.Ticket.GetMyTicketsHandler)
		api.GET("/:ticketID/qr", hb.Ticket.GenerateQRHandler)
	}
}

// RegisterDeviceRoutes registers device enrollment endpoints.
func RegisterDeviceRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/devices")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/register", hb.Device.RegisterDeviceHandler)
		api.GET("/mine", hb.Device.GetMyDevicesHandler)
		api.DELETE("/:deviceID", hb.Device.RemoveDeviceHandler)
	}
}

// RegisterCheckInRoutes registers the scanner and host reporting
// endpoints. All of them require a host account.
func RegisterCheckInRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/checkin")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.Use(middleware.RequireHostMiddleware(hb.UserRepo))
		api.POST("/scan", hb.CheckIn.CheckInAttendeeHandler)
		api.GET("/events/:eventID/attendees", hb.CheckIn.GetEventAttendeesHandler)
		api.GET("/events/:eventID/stats", hb.CheckIn.GetCheckInStatsHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Gatepass"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAuthRoutes(r, hb)
	RegisterTicketRoutes(r, hb)
	RegisterDeviceRoutes(r, hb)
	RegisterCheckInRoutes(r, hb)
	RegisterHealthRoute(r)
}
