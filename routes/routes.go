package routes

import (
	"net/http"
	"time"

	"hotel-pms/controllers"
	"hotel-pms/middleware"
	"hotel-pms/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Controllers bundles every handler set the router mounts.
type Controllers struct {
	Auth         *controllers.AuthController
	Hotels       *controllers.HotelController
	Guests       *controllers.GuestController
	Reservations *controllers.ReservationController
	Rooms        *controllers.RoomController
	RoomFilter   *controllers.RoomFilterController
	Folios       *controllers.FolioController
	Operations   *controllers.OperationsController
	Automation   *controllers.AutomationController
	Users        *controllers.UserController
}

type Options struct {
	CORSOrigins []string
	UploadsDir  string
	// Auth guards every non-public route.
	Auth gin.HandlerFunc
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter mounts the REST surface used by the staff portals and the
// guest tablet.
func SetupRouter(ctrl Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	if opts.UploadsDir != "" {
		r.Static("/uploads", opts.UploadsDir)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authed := opts.Auth
	managers := middleware.RequireRole(models.RoleSystemAdmin, models.RoleOperationalManager)
	admins := middleware.RequireRole(models.RoleSystemAdmin)

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", ctrl.Auth.Login)
		authRoutes.GET("/me", authed, ctrl.Auth.Me)
	}

	// Tablet side of the room filter is public.
	roomFilter := api.Group("/room-filter")
	{
		roomFilter.GET("/criteria", ctrl.RoomFilter.Criteria)
		roomFilter.POST("/select", ctrl.RoomFilter.Select)
		roomFilter.POST("/update-criteria", authed, ctrl.RoomFilter.UpdateCriteria)
		roomFilter.GET("/guest-selections", authed, ctrl.RoomFilter.GuestSelections)
		roomFilter.DELETE("/guest-selections", authed, ctrl.RoomFilter.ClearSelections)
	}

	hotels := api.Group("/hotels", authed)
	{
		hotels.GET("", ctrl.Hotels.List)
		hotels.POST("", ctrl.Hotels.Create)
		hotels.GET("/:id", ctrl.Hotels.Get)
		hotels.PUT("/:id", ctrl.Hotels.Update)
		hotels.DELETE("/:id", ctrl.Hotels.Delete)
	}

	guests := api.Group("/v1/guests", authed)
	{
		guests.GET("", ctrl.Guests.List)
		guests.POST("/create", ctrl.Guests.Create)
		// static segments before /:id
		guests.GET("/export", ctrl.Guests.Export)
		guests.GET("/qr/:token", ctrl.Guests.GetByQRToken)
		guests.GET("/:id", ctrl.Guests.Get)
		guests.PUT("/:id", ctrl.Guests.Update)
		guests.GET("/:id/qr", ctrl.Guests.QRCode)
	}

	reservations := api.Group("/reservations", authed)
	{
		reservations.GET("/reservations", ctrl.Reservations.List)
		reservations.POST("/create", ctrl.Reservations.Create)
		reservations.GET("/:id", ctrl.Reservations.Get)
		reservations.PUT("/:id/status", ctrl.Reservations.UpdateStatus)
		reservations.POST("/:id/check-in", ctrl.Reservations.CheckIn)
		reservations.POST("/:id/check-out", ctrl.Reservations.CheckOut)
		reservations.POST("/:id/cancel", ctrl.Reservations.Cancel)
	}

	rooms := api.Group("/rooms", authed)
	{
		rooms.GET("/getAll", ctrl.Rooms.List)
		rooms.GET("/get/available", ctrl.Rooms.Available)
		rooms.GET("/type/:type", ctrl.Rooms.ByType)
		rooms.GET("/hotel/:id", ctrl.Rooms.ByHotel)
		rooms.GET("/status", ctrl.Rooms.DayStatus)
		rooms.GET("/availability", ctrl.Rooms.Availability)
		rooms.POST("", ctrl.Rooms.Create)
		rooms.PUT("/:id", ctrl.Rooms.Update)
		rooms.DELETE("/:id", ctrl.Rooms.Delete)
	}

	folios := api.Group("/folios", authed)
	{
		folios.GET("/reservation/:reservationId", ctrl.Folios.ByReservation)
		folios.GET("/:id", ctrl.Folios.Get)
		folios.GET("/:id/invoice", ctrl.Folios.Invoice)
		folios.POST("/:id/line-items", ctrl.Folios.PostLineItem)
		folios.POST("/:id/line-items/:itemId/void", ctrl.Folios.VoidLineItem)
		folios.POST("/:id/settle", ctrl.Folios.Settle)
		folios.POST("/:id/close", ctrl.Folios.Close)
	}

	requests := api.Group("/service-requests", authed)
	{
		requests.GET("", ctrl.Operations.ListServiceRequests)
		requests.POST("", ctrl.Operations.CreateServiceRequest)
		requests.PUT("/:id/status", ctrl.Operations.UpdateServiceRequestStatus)
		requests.PUT("/:id/assign", ctrl.Operations.AssignServiceRequest)
	}

	housekeeping := api.Group("/housekeeping", authed)
	{
		housekeeping.GET("/tasks", ctrl.Operations.ListTasks)
		housekeeping.POST("/tasks", ctrl.Operations.CreateTask)
		housekeeping.PUT("/tasks/:id/status", ctrl.Operations.UpdateTaskStatus)
	}

	fraud := api.Group("/fraud-alerts", authed, managers)
	{
		fraud.GET("", ctrl.Operations.ListFraudAlerts)
		fraud.PUT("/:id/status", ctrl.Operations.UpdateFraudAlertStatus)
	}

	automation := api.Group("/automation", authed, managers)
	{
		automation.GET("/config", ctrl.Automation.GetConfig)
		automation.PUT("/config", ctrl.Automation.UpdateConfig)
		automation.POST("/trigger/:job", ctrl.Automation.Trigger)
		automation.GET("/runs", ctrl.Automation.Runs)
		automation.GET("/schedule", ctrl.Automation.Schedule)
	}

	for _, resource := range []string{"system-admins", "operational-managers", "service-managers", "receptionists"} {
		role, _ := models.RoleForResource(resource)
		users := api.Group("/"+resource, authed, admins)
		users.GET("", ctrl.Users.List(role))
		users.POST("", ctrl.Users.Create(role))
		users.GET("/:id", ctrl.Users.Get(role))
		users.PUT("/:id", ctrl.Users.Update(role))
		users.DELETE("/:id", ctrl.Users.Delete(role))
	}

	return r
}
