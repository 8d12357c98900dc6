package api

import (
	"eventdesk/cmd/middleware"
	"eventdesk/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/wb-go/wbf/ginext"
)

type Routers struct {
	Service service.Service
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())
	apiGroup := app.Group("/v1")

	apiGroup.GET("/home", r.Service.Home)

	apiGroup.GET("/eventos", r.Service.ListEvents)
	apiGroup.POST("/eventos/busca", r.Service.SearchKeystroke)
	apiGroup.GET("/eventos/grupos", r.Service.EventGroups)
	apiGroup.GET("/eventos/estatisticas", r.Service.EventStats)
	apiGroup.GET("/eventos/tipos", r.Service.EventTypes)
	apiGroup.POST("/eventos", r.Service.CreateEvent)
	apiGroup.POST("/eventos/:id/cancelar", r.Service.CancelEvent)
	apiGroup.POST("/eventos/:id/restaurar", r.Service.RestoreEvent)
	apiGroup.DELETE("/eventos/:id", r.Service.PurgeEvent)

	apiGroup.POST("/inscricoes", r.Service.Subscribe)

	apiGroup.GET("/usuarios", r.Service.ListUsers)
	apiGroup.POST("/usuarios", r.Service.CreateUser)
	apiGroup.PUT("/usuarios/:id", r.Service.UpdateUser)
	apiGroup.DELETE("/usuarios/:id", r.Service.DeleteUser)
	apiGroup.POST("/auth/login", r.Service.Login)

	apiGroup.GET("/notificacoes", r.Service.Inbox)
	apiGroup.POST("/notificacoes/:id/lida", r.Service.MarkNotificationRead)
	apiGroup.POST("/notificacoes/lidas", r.Service.MarkAllNotificationsRead)
	apiGroup.DELETE("/notificacoes/:id", r.Service.DeleteNotification)
	apiGroup.DELETE("/notificacoes", r.Service.ClearInbox)

	return app
}
