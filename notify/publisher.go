// Package notify delivers best-effort notifications to the live game
// server (Redis pub/sub), the chat bot HTTP API and Discord-style webhooks.
// Delivery failures are logged and never returned.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/config"
	"go.uber.org/zap"
)

// Publisher sends notifications. It is safe for concurrent use.
type Publisher struct {
	ps     cache.PubSub
	client *http.Client
	bot    config.BanchoConfig
	logger *zap.Logger
}

// New creates a Publisher. Outbound HTTP calls are bounded by
// bot.HTTPTimeout (5s when unset).
func New(ps cache.PubSub, bot config.BanchoConfig, logger *zap.Logger) *Publisher {
	timeout := bot.HTTPTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Publisher{
		ps:     ps,
		client: &http.Client{Timeout: timeout},
		bot:    bot,
		logger: logger,
	}
}

func (p *Publisher) publish(ctx context.Context, channel string, payload interface{}) {
	var msg string
	switch v := payload.(type) {
	case string:
		msg = v
	case int64:
		msg = strconv.FormatInt(v, 10)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			p.logger.Warn("notify marshal failed", zap.String("channel", channel), zap.Error(err))
			return
		}
		msg = string(b)
	}
	if err := p.ps.Publish(ctx, channel, msg); err != nil {
		p.logger.Warn("notify publish failed", zap.String("channel", channel), zap.Error(err))
	}
}

// DisconnectUser asks Bancho to kick the user with reason shown to them.
func (p *Publisher) DisconnectUser(ctx context.Context, userID int64, reason string) {
	p.publish(ctx, ChanDisconnect, disconnectMsg{UserID: userID, Reason: reason})
}

// BanStatusChanged tells Bancho to reload the user's standing.
func (p *Publisher) BanStatusChanged(ctx context.Context, userID int64) {
	p.publish(ctx, ChanBan, userID)
}

// RefreshPrivileges tells Bancho to reload the user's privilege mask.
func (p *Publisher) RefreshPrivileges(ctx context.Context, userID int64) {
	p.publish(ctx, ChanRefreshPrivs, userIDMsg{UserID: userID})
}

// ChangeUsername tells Bancho the user was renamed.
func (p *Publisher) ChangeUsername(ctx context.Context, userID int64, username string) {
	p.publish(ctx, ChanChangeUsername, changeUsernameMsg{UserID: userID, NewUsername: username})
}

// ChangePassword tells Bancho to drop the user's cached password.
func (p *Publisher) ChangePassword(ctx context.Context, userID int64) {
	p.publish(ctx, ChanChangePassword, userIDMsg{UserID: userID})
}

// ClanCacheInvalidate drops the cached clan of one member.
func (p *Publisher) ClanCacheInvalidate(ctx context.Context, userID int64) {
	p.publish(ctx, ChanClanCache, userID)
}

// RefreshBeatmapCache tells the score server to reload a beatmap by md5.
func (p *Publisher) RefreshBeatmapCache(ctx context.Context, md5 string) {
	p.publish(ctx, ChanBeatmapUpdate, md5)
}

// SendChat makes the bot send msg to a channel ("#announce") or a user.
// Nothing is sent when no bot URL is configured.
func (p *Publisher) SendChat(ctx context.Context, to, msg string) {
	if p.bot.BotURL == "" {
		return
	}
	q := url.Values{}
	q.Set("k", p.bot.BotAPIKey)
	q.Set("to", to)
	q.Set("msg", msg)
	target := strings.TrimRight(p.bot.BotURL, "/") + "/api/v1/fokabotMessage?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		p.logger.Warn("chat request build failed", zap.Error(err))
		return
	}
	if err := p.do(req); err != nil {
		p.logger.Warn("chat message failed", zap.String("to", to), zap.Error(err))
	}
}

// Announce sends msg to the configured announcement channel.
func (p *Publisher) Announce(ctx context.Context, msg string) {
	p.SendChat(ctx, p.bot.AnnounceChannel, msg)
}

// EmbedAuthor is the author line of a webhook embed.
type EmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// EmbedFooter is the footer of a webhook embed.
type EmbedFooter struct {
	Text string `json:"text,omitempty"`
}

// EmbedImage is the image of a webhook embed.
type EmbedImage struct {
	URL string `json:"url,omitempty"`
}

// Embed is one webhook embed.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Description string       `json:"description,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Color       int          `json:"color,omitempty"`
}

type webhookBody struct {
	Embeds []Embed `json:"embeds"`
}

// PostWebhook posts embed to hookURL. An empty hookURL is a no-op.
func (p *Publisher) PostWebhook(ctx context.Context, hookURL string, embed Embed) {
	if hookURL == "" {
		return
	}
	body, err := json.Marshal(webhookBody{Embeds: []Embed{embed}})
	if err != nil {
		p.logger.Warn("webhook marshal failed", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hookURL, bytes.NewReader(body))
	if err != nil {
		p.logger.Warn("webhook request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if err := p.do(req); err != nil {
		p.logger.Warn("webhook post failed", zap.String("title", embed.Title), zap.Error(err))
	}
}

func (p *Publisher) do(req *http.Request) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
