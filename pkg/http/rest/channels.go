package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cloudgroundcontrol/voice-channel/pkg/backend"
)

// ChannelBackend is the part of the backend client the channel routes use.
type ChannelBackend interface {
	GetChannels(ctx context.Context) ([]backend.Channel, error)
	CreateChannel(ctx context.Context, req backend.ChannelRequest) (*backend.Channel, error)
	GetChannelMembers(ctx context.Context, channel string) ([]backend.ChannelMember, error)
	GetTimeline(ctx context.Context, channel string, q backend.TimelineQuery) ([]backend.TimelineItem, error)
	CreateTextNote(ctx context.Context, channel string, content string, emoji string) (string, error)
	CreateTodo(ctx context.Context, req backend.TodoRequest) (string, error)
	ToggleTodo(ctx context.Context, item string) (bool, error)
	UpdateStatusEmoji(ctx context.Context, item string, emoji string) (string, error)
	DeleteTimelineItem(ctx context.Context, item string) error
}

type channelController struct {
	backend ChannelBackend
}

func NewChannelController(b ChannelBackend) channelController {
	return channelController{b}
}

type CreateChannelRequest struct {
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	IsPrivate   bool   `json:"is_private"`
	Admin       string `json:"admin"`
}

type TextNoteRequest struct {
	Content     string `json:"content"`
	StatusEmoji string `json:"status_emoji"`
}

type EmojiRequest struct {
	Emoji string `json:"emoji"`
}

type createdResponse struct {
	ID string `json:"id"`
}

func (cc *channelController) ListChannels(c echo.Context) error {
	channels, err := cc.backend.GetChannels(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if channels == nil {
		channels = []backend.Channel{}
	}
	return c.JSON(http.StatusOK, channels)
}

func (cc *channelController) CreateChannel(c echo.Context) error {
	data := new(CreateChannelRequest)
	if err := c.Bind(data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ch, err := cc.backend.CreateChannel(c.Request().Context(), backend.ChannelRequest{
		Name:        data.Name,
		Emoji:       data.Emoji,
		Description: data.Description,
		IsPrivate:   data.IsPrivate,
		Admin:       data.Admin,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, ch)
}

func (cc *channelController) ListMembers(c echo.Context) error {
	members, err := cc.backend.GetChannelMembers(c.Request().Context(), c.Param("channel"))
	if err != nil {
		return httpError(err)
	}
	if members == nil {
		members = []backend.ChannelMember{}
	}
	return c.JSON(http.StatusOK, members)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (cc *channelController) Timeline(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	items, err := cc.backend.GetTimeline(c.Request().Context(), c.Param("channel"), backend.TimelineQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []backend.TimelineItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (cc *channelController) CreateTextNote(c echo.Context) error {
	data := new(TextNoteRequest)
	if err := c.Bind(data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if data.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, ErrEmptyFields.Error())
	}
	id, err := cc.backend.CreateTextNote(c.Request().Context(), c.Param("channel"), data.Content, data.StatusEmoji)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, createdResponse{id})
}

func (cc *channelController) CreateTodo(c echo.Context) error {
	data := new(backend.TodoRequest)
	if err := c.Bind(data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	data.Channel = c.Param("channel")
	if data.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, ErrEmptyFields.Error())
	}
	id, err := cc.backend.CreateTodo(c.Request().Context(), *data)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, createdResponse{id})
}

func (cc *channelController) ToggleTodo(c echo.Context) error {
	completed, err := cc.backend.ToggleTodo(c.Request().Context(), c.Param("item"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"is_completed": completed})
}

func (cc *channelController) UpdateEmoji(c echo.Context) error {
	data := new(EmojiRequest)
	if err := c.Bind(data); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	emoji, err := cc.backend.UpdateStatusEmoji(c.Request().Context(), c.Param("item"), data.Emoji)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status_emoji": emoji})
}

func (cc *channelController) DeleteItem(c echo.Context) error {
	if err := cc.backend.DeleteTimelineItem(c.Request().Context(), c.Param("item")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
