// Package client implements a client for pushing notifications to a Telegram channel.
package client

import (
	"bytes"
	"context"
	"fmt"

	"github.com/danilovkiri/dk-go-snapreward/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const telegramAPIURL = "https://api.telegram.org"

// Notifier announces events to an external messaging channel, best-effort.
type Notifier interface {
	SendMessage(ctx context.Context, text string)
	SendPhoto(ctx context.Context, caption string, photo []byte, filename string)
}

// Client defines attributes of a struct available to its methods.
type Client struct {
	client    *resty.Client
	botConfig *config.BotConfig
	apiURL    string
	log       *zerolog.Logger
}

// InitClient initializes a resty client for the Telegram Bot API.
func InitClient(botConfig *config.BotConfig, log *zerolog.Logger) *Client {
	telegramClient := resty.New()
	if botConfig.BotToken == "" || botConfig.ChannelID == "" {
		log.Warn().Msg("bot token or channel ID is not set, notifications are disabled")
	} else {
		log.Info().Msg("telegram notification client initialized")
	}
	return &Client{client: telegramClient, botConfig: botConfig, apiURL: telegramAPIURL, log: log}
}

// SendMessage posts a text message to the configured channel, one attempt,
// failures are logged and never surfaced to the caller.
func (c *Client) SendMessage(ctx context.Context, text string) {
	if c.botConfig.BotToken == "" || c.botConfig.ChannelID == "" {
		return
	}
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"chat_id": c.botConfig.ChannelID, "text": text}).
		Post(c.apiURL + "/bot" + c.botConfig.BotToken + "/sendMessage")
	if err != nil {
		c.log.Error().Err(err).Msg("telegram sendMessage failed")
		return
	}
	if response.IsError() {
		c.log.Error().Msg(fmt.Sprintf("telegram sendMessage failed with status %v", response.StatusCode()))
	}
}

// SendPhoto posts a photo with a caption to the configured channel, one attempt,
// failures are logged and never surfaced to the caller.
func (c *Client) SendPhoto(ctx context.Context, caption string, photo []byte, filename string) {
	if c.botConfig.BotToken == "" || c.botConfig.ChannelID == "" {
		return
	}
	response, err := c.client.R().
		SetContext(ctx).
		SetFileReader("photo", filename, bytes.NewReader(photo)).
		SetFormData(map[string]string{"chat_id": c.botConfig.ChannelID, "caption": caption}).
		Post(c.apiURL + "/bot" + c.botConfig.BotToken + "/sendPhoto")
	if err != nil {
		c.log.Error().Err(err).Msg("telegram sendPhoto failed")
		return
	}
	if response.IsError() {
		c.log.Error().Msg(fmt.Sprintf("telegram sendPhoto failed with status %v", response.StatusCode()))
	}
}
