package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chainbank-backend/internal/auth"
	"chainbank-backend/internal/config"
	"chainbank-backend/internal/handlers"
	"chainbank-backend/internal/middleware"
	"chainbank-backend/internal/ws"
)

// Deps carries everything the router needs; construction happens in main so
// the wiring stays explicit.
type Deps struct {
	Config *config.Config
	BasicH *handlers.BasicHandler
	BankH  *handlers.BankHandler
	UserH  *handlers.UserHandler
	AuthMW *middleware.AuthMiddleware
	Hub    *ws.Hub
}

// Setup builds the gin engine with all routes and middleware attached.
func Setup(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics())

	// ============ Basic ============
	r.GET("/", deps.BasicH.Root)
	r.GET("/healthz", deps.BasicH.Health)

	// ============ Prometheus Metrics ============
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============ WebSocket transaction feed ============
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.HandleUpgrade(c.Writer, c.Request)
		})
	}

	// ============ Auth ============
	r.POST("/token", deps.UserH.Login)
	r.POST("/register", deps.UserH.Register)

	// ============ Bank gateway ============
	r.POST("/deposit", deps.BankH.Deposit)
	r.POST("/withdraw", deps.BankH.Withdraw)
	r.POST("/transfer", deps.BankH.Transfer)
	r.POST("/balance", deps.BankH.Balance)
	r.POST("/contract-balance", deps.BankH.ContractBalance)
	r.GET("/transactions", deps.BankH.Transactions)

	// ============ User management ============
	users := r.Group("/users")
	users.Use(deps.AuthMW.RequireAuth())
	{
		users.POST("/", deps.AuthMW.RequirePermission(auth.ActionCreateUsers), deps.UserH.CreateUser)
		users.GET("/", deps.AuthMW.RequirePermission(auth.ActionListUsers), deps.UserH.ListUsers)
		users.GET("/me", deps.UserH.Me)
		users.PUT("/me", deps.UserH.UpdateMe)
		users.DELETE("/me", deps.UserH.DeleteMe)
		users.PUT("/:id/activate", deps.AuthMW.RequirePermission(auth.ActionActivateUsers), deps.UserH.Activate)
		users.PUT("/:id/deactivate", deps.AuthMW.RequirePermission(auth.ActionDeactivateUsers), deps.UserH.Deactivate)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Endpoint not found",
			"path":    c.Request.URL.Path,
		})
	})

	return r
}
