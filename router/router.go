package router

import (
	"errors"
	"net/http"

	"github.com/bokettoo/Riad-al-Hout-backend/controllers"
	"github.com/bokettoo/Riad-al-Hout-backend/kds"
	"github.com/bokettoo/Riad-al-Hout-backend/middlewares"
	"github.com/bokettoo/Riad-al-Hout-backend/models"
	"github.com/bokettoo/Riad-al-Hout-backend/services"
	"github.com/bokettoo/Riad-al-Hout-backend/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	DB           *gorm.DB
	Tokens       *utils.TokenManager
	Revoked      utils.TokenBlacklist
	Hub          *kds.Hub
	CORSOrigins  []string
	LoginLimiter *middlewares.RateLimiter
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigins))

	reconciler := services.NewRevenueReconciler()
	userSvc := services.NewUserService(deps.DB)
	menuSvc := services.NewMenuService(deps.DB)
	reservationSvc := services.NewReservationService(deps.DB, reconciler)
	orderSvc := services.NewOrderService(deps.DB, reconciler)
	reportSvc := services.NewReportService(deps.DB)

	healthCtrl := controllers.NewHealthController(deps.DB)
	userCtrl := controllers.NewUserController(userSvc, deps.Tokens, deps.Revoked)
	menuCtrl := controllers.NewMenuController(menuSvc, deps.Hub)
	reservationCtrl := controllers.NewReservationController(reservationSvc, deps.Hub)
	orderCtrl := controllers.NewOrderController(orderSvc, deps.Hub)
	adminCtrl := controllers.NewAdminController(reportSvc)
	liveCtrl := controllers.NewLiveController(deps.Hub)

	auth := middlewares.AuthMiddleware(deps.Tokens, userSvc, deps.Revoked)
	adminOnly := middlewares.RequireRole(models.RoleAdmin)

	login := deps.LoginLimiter
	if login == nil {
		login = middlewares.NewRateLimiter(10)
	}

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	api.GET("/health", healthCtrl.Health)
	api.POST("/token", login.RateLimit(), userCtrl.Login)
	api.POST("/auth/refresh-token", userCtrl.RefreshToken)
	api.GET("/menu", menuCtrl.GetAllMenus)
	api.GET("/menu/:id", menuCtrl.GetMenuByID)
	api.POST("/reservations", reservationCtrl.CreateReservation)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	authed := api.Group("/", auth)
	{
		authed.GET("/users/me", userCtrl.GetProfile)
		authed.POST("/auth/logout", userCtrl.Logout)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := api.Group("/", auth, adminOnly)
	{
		admin.POST("/users", userCtrl.CreateUser)

		admin.POST("/menu", menuCtrl.CreateMenu)
		admin.PUT("/menu/:id", menuCtrl.UpdateMenu)
		admin.DELETE("/menu/:id", menuCtrl.DeleteMenu)

		admin.GET("/reservations", reservationCtrl.GetAllReservations)
		admin.GET("/reservations/today", reservationCtrl.GetTodayReservations)
		admin.GET("/reservations/:id", reservationCtrl.GetReservationByID)
		admin.PUT("/reservations/:id", reservationCtrl.UpdateReservation)
		admin.PATCH("/reservations/:id/status", reservationCtrl.UpdateReservationStatus)
		admin.DELETE("/reservations/:id", reservationCtrl.DeleteReservation)
		admin.GET("/reservations/:id/qrcode", reservationCtrl.GetReservationQRCode)

		admin.POST("/orders", orderCtrl.CreateOrder)
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.GET("/orders/:id", orderCtrl.GetOrderByID)
		admin.PUT("/orders/:id", orderCtrl.UpdateOrder)
		admin.DELETE("/orders/:id", orderCtrl.DeleteOrder)

		admin.GET("/reports/revenue", adminCtrl.GetRevenueReport)
		admin.GET("/reports/revenue.pdf", adminCtrl.GetRevenueReportPDF)
		admin.GET("/reports/most-sold-items", adminCtrl.GetMostSoldItems)

		admin.GET("/live", liveCtrl.LiveFeed)
	}

	r.NoRoute(func(c *gin.Context) {
		utils.RespondError(c, http.StatusNotFound, errNotFound)
	})
	return r
}

var errNotFound = errors.New("not found")
