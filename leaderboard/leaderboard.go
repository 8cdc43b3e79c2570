// Package leaderboard maintains the Redis sorted-set leaderboards that
// Bancho and the score server read.
package leaderboard

import (
	"context"
	"strconv"
	"strings"

	"github.com/kasuganosora/osupanel/cache"
	"github.com/kasuganosora/osupanel/model"
	"go.uber.org/zap"
)

var variantPrefix = map[model.Variant]string{
	model.VariantVanilla:   "ripple:leaderboard",
	model.VariantRelax:     "ripple:leaderboard_relax",
	model.VariantAutopilot: "ripple:leaderboard_ap",
}

// Key returns the leaderboard key for a variant and mode. A non-empty
// country selects the per-country board.
func Key(variant model.Variant, mode model.GameMode, country string) string {
	k := variantPrefix[variant] + ":" + mode.String()
	if country != "" {
		k += ":" + strings.ToLower(country)
	}
	return k
}

// Keys lists every board a user of the given country can appear on,
// limited to variants when any are given.
func Keys(country string, variants ...model.Variant) []string {
	if len(variants) == 0 {
		variants = model.Variants
	}
	keys := make([]string, 0, len(variants)*len(model.GameModes)*2)
	for _, v := range variants {
		for _, m := range model.GameModes {
			keys = append(keys, Key(v, m, ""))
			if country != "" {
				keys = append(keys, Key(v, m, country))
			}
		}
	}
	return keys
}

// Entry is one leaderboard row.
type Entry struct {
	Rank   int     `json:"rank"`
	UserID int64   `json:"user_id"`
	PP     float64 `json:"pp"`
}

// Board reads and prunes leaderboards.
type Board struct {
	cache  cache.Cache
	logger *zap.Logger
}

// New creates a Board.
func New(c cache.Cache, logger *zap.Logger) *Board {
	return &Board{cache: c, logger: logger}
}

// RemoveUser removes userID from every global board and every board of
// country, or only from the boards of variants when any are given.
// Failures are logged and the remaining boards are still pruned.
func (b *Board) RemoveUser(ctx context.Context, userID int64, country string, variants ...model.Variant) {
	member := strconv.FormatInt(userID, 10)
	for _, key := range Keys(country, variants...) {
		if err := b.cache.ZRem(ctx, key, member); err != nil {
			b.logger.Warn("leaderboard removal failed",
				zap.String("key", key), zap.Int64("user_id", userID), zap.Error(err))
		}
	}
}

// Restore puts userID back on the global and country boards of every
// variant and mode it has pp in. Failures are logged.
func (b *Board) Restore(ctx context.Context, userID int64, country string, stats []model.UserStats) {
	member := strconv.FormatInt(userID, 10)
	for _, st := range stats {
		if st.PP <= 0 {
			continue
		}
		keys := []string{Key(st.Variant, st.Mode, "")}
		if country != "" {
			keys = append(keys, Key(st.Variant, st.Mode, country))
		}
		for _, key := range keys {
			if err := b.cache.ZAdd(ctx, key, float64(st.PP), member); err != nil {
				b.logger.Warn("leaderboard restore failed",
					zap.String("key", key), zap.Int64("user_id", userID), zap.Error(err))
			}
		}
	}
}

// Top returns the first n entries of a board.
func (b *Board) Top(ctx context.Context, variant model.Variant, mode model.GameMode, country string, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	key := Key(variant, mode, country)
	members, err := b.cache.ZRevRange(ctx, key, 0, int64(n-1))
	if err != nil {
		if cache.IsNotFound(err) {
			return []Entry{}, nil
		}
		return nil, err
	}
	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		pp, err := b.cache.ZScore(ctx, key, m)
		if err != nil && !cache.IsNotFound(err) {
			return nil, err
		}
		entries = append(entries, Entry{Rank: len(entries) + 1, UserID: id, PP: pp})
	}
	return entries, nil
}
