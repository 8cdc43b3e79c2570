// Package moderation implements staff actions against accounts, beatmaps,
// clans, badges and privilege groups. Every action commits its SQL first,
// then sends best-effort notifications, then writes the audit log. A
// committed mutation is never rolled back because a later step failed.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kasuganosora/osupanel/audit"
	"github.com/kasuganosora/osupanel/config"
	"github.com/kasuganosora/osupanel/leaderboard"
	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/notify"
	"github.com/kasuganosora/osupanel/store"
	"go.uber.org/zap"
)

// ErrSelfEscalation is returned by EditAccount when staff try to raise
// their own privilege mask. Handlers treat it as a silent no-op.
var ErrSelfEscalation = errors.New("moderation: self escalation")

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

const adminHookColor = 0xE74C3C

// Config holds the settings moderation actions depend on.
type Config struct {
	SystemID      int64
	DonorBadgeID  int64
	FreezeDays    int
	BaseURL       string
	AvatarURL     string
	RankedWebhook string
	AdminWebhook  string
	Via           string
}

// ConfigFrom extracts the moderation settings from the process config.
func ConfigFrom(c *config.Config) Config {
	return Config{
		SystemID:      c.Bancho.BotUserID,
		DonorBadgeID:  c.Panel.DonorBadgeID,
		FreezeDays:    c.Panel.FreezeDays,
		BaseURL:       c.Server.BaseURL,
		AvatarURL:     c.Server.AvatarURL,
		RankedWebhook: c.Webhook.RankedURL,
		AdminWebhook:  c.Webhook.AdminURL,
		Via:           c.Panel.Via,
	}
}

// Service runs moderation actions.
type Service struct {
	store  *store.Store
	notify *notify.Publisher
	audit  *audit.Service
	board  *leaderboard.Board
	cfg    Config
	now    func() time.Time
	logger *zap.Logger
}

// New creates a Service.
func New(s *store.Store, n *notify.Publisher, a *audit.Service, b *leaderboard.Board, cfg Config, logger *zap.Logger) *Service {
	if cfg.FreezeDays <= 0 {
		cfg.FreezeDays = 5
	}
	return &Service{
		store:  s,
		notify: n,
		audit:  a,
		board:  b,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// record writes the RAP log entry for an action.
func (svc *Service) record(actorID int64, text string, meta map[string]interface{}) {
	svc.audit.Log(audit.Entry{ActorID: actorID, Text: text, Meta: meta})
}

// recordBan appends the ban log entry for a ban-class action and posts it
// to the admin webhook.
func (svc *Service) recordBan(ctx context.Context, actorID int64, target *model.User, summary, detail string) {
	svc.audit.LogBan(ctx, audit.BanEntry{ActorID: actorID, TargetID: target.ID, Summary: summary, Detail: detail})

	desc := describe(target)
	if detail != "" {
		desc += "\n" + detail
	}
	svc.notify.PostWebhook(ctx, svc.cfg.AdminWebhook, notify.Embed{
		Title: fmt.Sprintf("%s: %s", summary, target.Username),
		Author: &notify.EmbedAuthor{
			Name:    svc.actorName(ctx, actorID),
			URL:     svc.profileURL(actorID),
			IconURL: svc.avatarURL(actorID),
		},
		Description: desc,
		Footer:      &notify.EmbedFooter{Text: "via " + svc.cfg.Via},
		Color:       adminHookColor,
	})
}

// actorName resolves the display name of the acting account.
func (svc *Service) actorName(ctx context.Context, actorID int64) string {
	u, err := svc.store.GetUser(ctx, actorID)
	if err != nil {
		return "Unknown"
	}
	return u.Username
}

func (svc *Service) profileURL(userID int64) string {
	return svc.cfg.BaseURL + "/u/" + strconv.FormatInt(userID, 10)
}

func (svc *Service) avatarURL(userID int64) string {
	return svc.cfg.AvatarURL + "/" + strconv.FormatInt(userID, 10)
}

func describe(u *model.User) string {
	return fmt.Sprintf("%s (%d)", u.Username, u.ID)
}

// recalculateFirstPlaces recomputes every first place in held. Failures are
// logged per key.
func (svc *Service) recalculateFirstPlaces(ctx context.Context, held []model.FirstPlace) {
	for _, fp := range held {
		if _, err := svc.store.RecalculateFirstPlace(ctx, fp.BeatmapMD5, fp.Mode, fp.Variant); err != nil {
			svc.logger.Error("first place recalculation failed",
				zap.String("beatmap_md5", fp.BeatmapMD5), zap.Int8("mode", int8(fp.Mode)),
				zap.Int8("variant", int8(fp.Variant)), zap.Error(err))
		}
	}
}

// heldFirstPlaces snapshots the first places of a user before they are
// invalidated. A failed read is logged and yields nothing to recompute.
func (svc *Service) heldFirstPlaces(ctx context.Context, userID int64) []model.FirstPlace {
	held, err := svc.store.FirstPlacesHeldBy(ctx, userID)
	if err != nil {
		svc.logger.Error("first place lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil
	}
	return held
}
