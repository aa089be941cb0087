package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires all endpoints onto the gin engine.
func registerRoutes(engine *gin.Engine, deps Deps) {
	authHandler := newAuthHandler(deps.Verifier, deps.Signer, deps.Logger)
	studentHandler := newStudentHandler(deps.Students, deps.Metrics, deps.Logger)

	api := engine.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.login)
			authGroup.GET("/test", requireAuth(deps.Validator), authHandler.test)
		}

		students := api.Group("/students")
		{
			students.GET("", studentHandler.list)
			students.GET("/:id", studentHandler.get)
			students.GET("/search/name", studentHandler.searchByName)
			students.GET("/search/school", studentHandler.searchBySchool)
			students.POST("", studentHandler.create)
			students.PUT("/:id", studentHandler.update)
			students.DELETE("/:id", studentHandler.delete)
		}
	}

	if deps.Health != nil {
		engine.GET("/health", deps.Health.Handle)
	}

	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	engine.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}
