package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/tickdone/backend/api/handler"
)

type Handlers struct {
	Auth    *apiHandler.AuthHandler
	Profile *apiHandler.ProfileHandler
	Todo    *apiHandler.TodoHandler
	Health  *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, authMiddleware, corsMiddleware Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Auth routes
	r.POST("/api/v1/auth/login", corsMiddleware(handlers.Auth.Login))
	r.POST("/api/v1/auth/refresh", corsMiddleware(handlers.Auth.Refresh))

	protected := func(h fasthttp.RequestHandler) fasthttp.RequestHandler {
		return corsMiddleware(authMiddleware(h))
	}

	r.GET("/api/v1/profile", protected(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", protected(handlers.Profile.UpdateProfile))

	r.PUT("/api/v1/devices", protected(handlers.Profile.RegisterDevice))
	r.DELETE("/api/v1/devices", protected(handlers.Profile.UnregisterDevice))

	r.GET("/api/v1/todos", protected(handlers.Todo.GetTodos))
	r.POST("/api/v1/todos", protected(handlers.Todo.CreateTodo))
	r.PUT("/api/v1/todos/{id}", protected(handlers.Todo.UpdateTodo))
	r.PATCH("/api/v1/todos/{id}", protected(handlers.Todo.UpdateTodo))
	r.DELETE("/api/v1/todos/{id}", protected(handlers.Todo.DeleteTodo))

	r.OPTIONS("/{path:*}", corsMiddleware(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusNoContent)
	}))

	return r
}
