package routes

import (
	"net/http"

	"lppm-form-api/controllers"
	"lppm-form-api/middleware"
	"lppm-form-api/monitor"

	"github.com/gin-gonic/gin"
)

// Dependencies are the controllers and settings the router needs.
type Dependencies struct {
	Auth        *controllers.AuthController
	Submissions *controllers.SubmissionController
	Admin       *controllers.AdminController
	JWTSecret   string
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	monitor.RegisterMonitorRoutes(router)

	api := router.Group("/api")
	{
		// Public routes
		api.POST("/admin-login", deps.Auth.Login)
		api.POST("/submit/:formType", deps.Submissions.Submit)
		api.POST("/forms/:formType", deps.Submissions.Submit)
		api.GET("/:relation", deps.Admin.TableGuard("relation"), deps.Admin.PublicList)

		// Admin routes. The table guard runs first so an unknown table is a 400
		// whether or not a token was sent.
		auth := middleware.AuthMiddleware(deps.JWTSecret)
		admin := api.Group("/admin")
		{
			admin.GET("/all-tables", auth, deps.Admin.AllTables)

			table := admin.Group("/:table", deps.Admin.TableGuard("table"), auth)
			{
				table.GET("", deps.Admin.List)
				table.GET("/count", deps.Admin.Count)
				table.POST("/:id/status", deps.Admin.UpdateStatus)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})
}
