package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

type Channel struct {
	ID          string `json:"name"`
	DisplayName string `json:"channel_name"`
	Emoji       string `json:"emoji"`
	IsPrivate   Flag   `json:"is_private"`
	Description string `json:"description"`
	IsAdmin     Flag   `json:"is_admin"`
}

type ChannelMember struct {
	User        string `json:"user"`
	DisplayName string `json:"full_name"`
	Image       string `json:"user_image"`
	IsAdmin     Flag   `json:"is_admin"`
}

// ChannelRequest creates a channel with Admin as its first member.
type ChannelRequest struct {
	Name        string
	Emoji       string
	Description string
	IsPrivate   bool
	Admin       string
}

const (
	defaultChannelEmoji = "#"
	channelResourcePath = "/api/resource/Voice%20Channel"
)

func (c *Client) GetChannels(ctx context.Context) ([]Channel, error) {
	var channels []Channel
	if err := c.call(ctx, http.MethodGet, "get_channels", nil, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}

func (c *Client) GetChannelMembers(ctx context.Context, channel string) ([]ChannelMember, error) {
	if channel == "" {
		return nil, fmt.Errorf("%w: channel", ErrMissingArgument)
	}
	var members []ChannelMember
	err := c.call(ctx, http.MethodGet, "get_channel_members", map[string]interface{}{
		"channel": channel,
	}, &members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

type channelMemberRow struct {
	User    string `json:"user"`
	IsAdmin int    `json:"is_admin"`
}

type channelDoc struct {
	ChannelName string             `json:"channel_name"`
	Emoji       string             `json:"emoji"`
	Description string             `json:"description,omitempty"`
	IsPrivate   int                `json:"is_private"`
	Members     []channelMemberRow `json:"members,omitempty"`
}

func (c *Client) CreateChannel(ctx context.Context, req ChannelRequest) (*Channel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrEmptyChannelName
	}
	emoji := req.Emoji
	if emoji == "" {
		emoji = defaultChannelEmoji
	}

	doc := channelDoc{
		ChannelName: name,
		Emoji:       emoji,
		Description: req.Description,
		IsPrivate:   flagInt(req.IsPrivate),
	}
	if req.Admin != "" {
		doc.Members = []channelMemberRow{{User: req.Admin, IsAdmin: 1}}
	}

	var out struct {
		Data Channel `json:"data"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(doc).
		SetResult(&out).
		Post(channelResourcePath)
	if err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	if resp.IsError() {
		return nil, parseError(resp.StatusCode(), resp.Body())
	}
	ch := out.Data
	ch.IsAdmin = Flag(req.Admin != "")
	return &ch, nil
}
