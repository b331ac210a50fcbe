package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/taskstore/api/handler"
)

type Handlers struct {
	Task   *apiHandler.TaskHandler
	Health *apiHandler.HealthHandler
}

// New wires the task routes. Any verb a known path does not serve, OPTIONS
// included, answers 405.
func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	dispatch := authMiddleware(handlers.Task.Dispatch)

	r.GET("/tasks", authMiddleware(handlers.Task.ListTasks))
	r.POST("/tasks", dispatch)
	r.GET("/tasks/{taskId}", dispatch)
	r.PUT("/tasks/{taskId}", dispatch)
	r.DELETE("/tasks/{taskId}", dispatch)
	r.GET("/tasks/{taskId}/{deadline}", dispatch)
	r.DELETE("/tasks/{taskId}/{deadline}", authMiddleware(handlers.Task.DeleteTaskRow))

	r.HandleOPTIONS = false
	r.HandleMethodNotAllowed = true
	r.MethodNotAllowed = handlers.Task.MethodNotAllowed

	return r
}
