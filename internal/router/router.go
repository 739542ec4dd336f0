package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/taskdeck/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Todo    *apiHandler.TodoHandler
	Health  *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/auth/signup", handlers.Auth.SignUp)
	r.POST("/auth/login", handlers.Auth.SignIn)
	r.POST("/auth/logout", authMiddleware(handlers.Auth.SignOut))
	r.POST("/auth/refresh", authMiddleware(handlers.Auth.Refresh))

	// Protected routes
	r.GET("/me", authMiddleware(handlers.Profile.Get))
	r.PUT("/me", authMiddleware(handlers.Profile.Update))

	r.GET("/todos", authMiddleware(handlers.Todo.List))
	r.POST("/todos", authMiddleware(handlers.Todo.Create))
	r.PATCH("/todos/{id}", authMiddleware(handlers.Todo.Update))
	// The static segment takes priority over {id}, so clearing completed
	// todos never collides with deleting a single one.
	r.DELETE("/todos/completed", authMiddleware(handlers.Todo.DeleteCompleted))
	r.DELETE("/todos/{id}", authMiddleware(handlers.Todo.Delete))

	return r
}
