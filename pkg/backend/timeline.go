package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/gommon/log"

	"github.com/cloudgroundcontrol/voice-channel/pkg/upload"
)

type ItemType string

const (
	ItemVoiceNote ItemType = "Voice Note"
	ItemTextNote  ItemType = "Text Note"
	ItemTodo      ItemType = "Todo"
)

var ErrUnknownItemType = errors.New("unknown timeline item type")

type ItemMeta struct {
	ID          string `json:"name"`
	Channel     string `json:"channel,omitempty"`
	Owner       string `json:"owner"`
	OwnerName   string `json:"owner_name,omitempty"`
	OwnerImage  string `json:"owner_image,omitempty"`
	StatusEmoji string `json:"status_emoji,omitempty"`
	CreatedAt   string `json:"creation"`
}

// TimelineItem is one of VoiceNote, TextNote or Todo.
type TimelineItem interface {
	Type() ItemType
	Meta() ItemMeta
}

type VoiceNote struct {
	ItemMeta
	VoiceFile       string  `json:"voice_file"`
	DurationSeconds float64 `json:"voice_duration"`
}

type TextNote struct {
	ItemMeta
	Content string `json:"content"`
}

type Todo struct {
	ItemMeta
	Title        string `json:"todo_title"`
	AssignedUser string `json:"assigned_user,omitempty"`
	AssignedName string `json:"assigned_name,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	Completed    Flag   `json:"is_completed"`
}

func (VoiceNote) Type() ItemType { return ItemVoiceNote }

func (TextNote) Type() ItemType { return ItemTextNote }

func (Todo) Type() ItemType { return ItemTodo }

func (v VoiceNote) Meta() ItemMeta { return v.ItemMeta }

func (n TextNote) Meta() ItemMeta { return n.ItemMeta }

func (t Todo) Meta() ItemMeta { return t.ItemMeta }

func (v VoiceNote) MarshalJSON() ([]byte, error) {
	type alias VoiceNote
	return json.Marshal(struct {
		ItemType ItemType `json:"item_type"`
		alias
	}{ItemVoiceNote, alias(v)})
}

func (n TextNote) MarshalJSON() ([]byte, error) {
	type alias TextNote
	return json.Marshal(struct {
		ItemType ItemType `json:"item_type"`
		alias
	}{ItemTextNote, alias(n)})
}

func (t Todo) MarshalJSON() ([]byte, error) {
	type alias Todo
	return json.Marshal(struct {
		ItemType ItemType `json:"item_type"`
		alias
	}{ItemTodo, alias(t)})
}

func decodeTimelineItem(raw json.RawMessage) (TimelineItem, error) {
	var head struct {
		ItemType ItemType `json:"item_type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	switch head.ItemType {
	case ItemVoiceNote:
		var v VoiceNote
		err := json.Unmarshal(raw, &v)
		return v, err
	case ItemTextNote:
		var n TextNote
		err := json.Unmarshal(raw, &n)
		return n, err
	case ItemTodo:
		var t Todo
		err := json.Unmarshal(raw, &t)
		return t, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, head.ItemType)
	}
}

type TimelineQuery struct {
	Limit  int
	Offset int
}

const defaultTimelineLimit = 50

// GetTimeline returns the newest items of a channel first.
func (c *Client) GetTimeline(ctx context.Context, channel string, q TimelineQuery) ([]TimelineItem, error) {
	if channel == "" {
		return nil, fmt.Errorf("%w: channel", ErrMissingArgument)
	}
	if q.Limit <= 0 {
		q.Limit = defaultTimelineLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	var rows []json.RawMessage
	err := c.call(ctx, http.MethodGet, "get_timeline", map[string]interface{}{
		"channel": channel,
		"limit":   q.Limit,
		"offset":  q.Offset,
	}, &rows)
	if err != nil {
		return nil, err
	}

	items := make([]TimelineItem, 0, len(rows))
	for _, raw := range rows {
		item, err := decodeTimelineItem(raw)
		if errors.Is(err, ErrUnknownItemType) {
			log.Warnf("skipping timeline item | channel: %v, error: %v", channel, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get_timeline: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

type created struct {
	Name string `json:"name"`
}

func (c *Client) create(ctx context.Context, name string, params map[string]interface{}) (string, error) {
	var out created
	if err := c.call(ctx, http.MethodPost, name, params, &out); err != nil {
		return "", err
	}
	if out.Name == "" {
		return "", fmt.Errorf("%s: no record name in response", name)
	}
	return out.Name, nil
}

func withEmoji(params map[string]interface{}, emoji string) map[string]interface{} {
	if emoji != "" {
		params["status_emoji"] = emoji
	}
	return params
}

// CreateVoiceNote attaches an uploaded file to a channel timeline.
func (c *Client) CreateVoiceNote(ctx context.Context, req upload.VoiceNoteRequest) (string, error) {
	if req.Channel == "" || req.RemoteURL == "" {
		return "", fmt.Errorf("%w: channel and voice file", ErrMissingArgument)
	}
	return c.create(ctx, "create_voice_note", withEmoji(map[string]interface{}{
		"channel":        req.Channel,
		"voice_file":     req.RemoteURL,
		"voice_duration": req.DurationSeconds,
	}, req.StatusEmoji))
}

func (c *Client) CreateTextNote(ctx context.Context, channel string, content string, emoji string) (string, error) {
	if channel == "" || content == "" {
		return "", fmt.Errorf("%w: channel and content", ErrMissingArgument)
	}
	return c.create(ctx, "create_text_note", withEmoji(map[string]interface{}{
		"channel": channel,
		"content": content,
	}, emoji))
}

type TodoRequest struct {
	Channel      string `json:"channel"`
	Title        string `json:"title"`
	AssignedUser string `json:"assigned_user"`
	DueDate      string `json:"due_date"`
	StatusEmoji  string `json:"status_emoji"`
}

func (c *Client) CreateTodo(ctx context.Context, req TodoRequest) (string, error) {
	if req.Channel == "" || req.Title == "" {
		return "", fmt.Errorf("%w: channel and title", ErrMissingArgument)
	}
	params := map[string]interface{}{
		"channel":    req.Channel,
		"todo_title": req.Title,
	}
	if req.AssignedUser != "" {
		params["assigned_user"] = req.AssignedUser
	}
	if req.DueDate != "" {
		params["due_date"] = req.DueDate
	}
	return c.create(ctx, "create_todo", withEmoji(params, req.StatusEmoji))
}

// ToggleTodo flips the completion of a todo and returns the new value.
func (c *Client) ToggleTodo(ctx context.Context, item string) (bool, error) {
	if item == "" {
		return false, fmt.Errorf("%w: item", ErrMissingArgument)
	}
	var out struct {
		Completed Flag `json:"is_completed"`
	}
	err := c.call(ctx, http.MethodPost, "toggle_todo", map[string]interface{}{"item_name": item}, &out)
	return bool(out.Completed), err
}

func (c *Client) UpdateStatusEmoji(ctx context.Context, item string, emoji string) (string, error) {
	if item == "" {
		return "", fmt.Errorf("%w: item", ErrMissingArgument)
	}
	var out struct {
		StatusEmoji string `json:"status_emoji"`
	}
	err := c.call(ctx, http.MethodPost, "update_status_emoji", map[string]interface{}{
		"item_name": item,
		"emoji":     emoji,
	}, &out)
	return out.StatusEmoji, err
}

func (c *Client) DeleteTimelineItem(ctx context.Context, item string) error {
	if item == "" {
		return fmt.Errorf("%w: item", ErrMissingArgument)
	}
	return c.call(ctx, http.MethodPost, "delete_timeline_item", map[string]interface{}{"item_name": item}, nil)
}
