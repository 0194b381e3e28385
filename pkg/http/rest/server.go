package rest

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cloudgroundcontrol/voice-channel/pkg/ledger"
	"github.com/cloudgroundcontrol/voice-channel/pkg/recording"
)

// NewServer wires the controllers onto an echo instance. Orphan routes are
// only attached when a ledger is configured.
func NewServer(service recording.Service, channels ChannelBackend, orphans ledger.Ledger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Attach middlewares
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "(${host}) ${time_rfc3339} ${level}: ${method} ${uri} ${status} ${error}\n",
	}))

	// Attach handlers
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome to CGC")
	})
	e.GET("/health-check", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Recording handlers
	rc := NewRecordingController(service)
	e.POST("/recordings/start", rc.StartRecording)
	e.POST("/recordings/stop", rc.StopRecording)
	e.GET("/recordings/status", rc.RecordingStatus)

	// Channel and timeline handlers
	cc := NewChannelController(channels)
	e.GET("/channels", cc.ListChannels)
	e.POST("/channels", cc.CreateChannel)
	e.GET("/channels/:channel/timeline", cc.Timeline)
	e.GET("/channels/:channel/members", cc.ListMembers)
	e.POST("/channels/:channel/notes", cc.CreateTextNote)
	e.POST("/channels/:channel/todos", cc.CreateTodo)
	e.POST("/items/:item/toggle", cc.ToggleTodo)
	e.PUT("/items/:item/emoji", cc.UpdateEmoji)
	e.DELETE("/items/:item", cc.DeleteItem)

	if orphans != nil {
		oc := NewOrphanController(orphans)
		e.GET("/orphans", oc.ListOrphans)
		e.POST("/orphans/:id/resolve", oc.ResolveOrphan)
	}

	return e
}
