package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/kasuganosora/osupanel/model"
	"github.com/kasuganosora/osupanel/notify"
)

var statusColor = map[model.RankedStatus]int{
	model.StatusUnranked: 0x95a5a6,
	model.StatusRanked:   0x3498db,
	model.StatusLoved:    0xe91e63,
}

// songTitle strips the difficulty name from a beatmap song name.
func songTitle(songName string) string {
	if i := strings.LastIndex(songName, " ["); i > 0 && strings.HasSuffix(songName, "]") {
		return songName[:i]
	}
	return songName
}

// RankBeatmap sets the ranked status of a single difficulty.
func (svc *Service) RankBeatmap(ctx context.Context, actorID, beatmapID int64, status model.RankedStatus) error {
	if status.Title() == "" {
		return invalid("status", "must be unranked, ranked or loved")
	}
	bm, err := svc.store.GetBeatmap(ctx, beatmapID)
	if err != nil {
		return err
	}
	if err := svc.store.SetBeatmapStatus(ctx, []int64{bm.BeatmapID}, status, actorID, svc.now().Unix()); err != nil {
		return err
	}
	svc.announceStatus(ctx, actorID, bm.BeatmapsetID, bm.SongName, status,
		fmt.Sprintf("%s/b/%d", svc.cfg.BaseURL, bm.BeatmapID))
	svc.record(actorID, fmt.Sprintf("has %s beatmap %s (%d)", status.Title(), bm.SongName, bm.BeatmapID),
		map[string]interface{}{"beatmap_id": bm.BeatmapID, "status": status})
	svc.notify.RefreshBeatmapCache(ctx, bm.BeatmapMD5)
	return nil
}

// RankBeatmapSet sets the ranked status of every difficulty of a set.
func (svc *Service) RankBeatmapSet(ctx context.Context, actorID, setID int64, status model.RankedStatus) error {
	if status.Title() == "" {
		return invalid("status", "must be unranked, ranked or loved")
	}
	bms, err := svc.store.BeatmapsInSet(ctx, setID)
	if err != nil {
		return err
	}
	ids := make([]int64, len(bms))
	for i, bm := range bms {
		ids[i] = bm.BeatmapID
	}
	if err := svc.store.SetBeatmapStatus(ctx, ids, status, actorID, svc.now().Unix()); err != nil {
		return err
	}

	song := songTitle(bms[0].SongName)
	svc.announceStatus(ctx, actorID, setID, song, status, fmt.Sprintf("%s/s/%d", svc.cfg.BaseURL, setID))
	svc.record(actorID, fmt.Sprintf("has %s beatmap set %s (%d)", status.Title(), song, setID),
		map[string]interface{}{"beatmapset_id": setID, "beatmap_ids": ids, "status": status})
	for _, bm := range bms {
		svc.notify.RefreshBeatmapCache(ctx, bm.BeatmapMD5)
	}
	return nil
}

// announceStatus posts the status change to the ranked webhook and the
// in-game announcement channel.
func (svc *Service) announceStatus(ctx context.Context, actorID, setID int64, song string, status model.RankedStatus, link string) {
	actor := svc.actorName(ctx, actorID)
	title := status.Title()
	svc.notify.PostWebhook(ctx, svc.cfg.RankedWebhook, notify.Embed{
		Title: fmt.Sprintf("New %s map!", title),
		Author: &notify.EmbedAuthor{
			Name:    actor,
			URL:     svc.profileURL(actorID),
			IconURL: svc.avatarURL(actorID),
		},
		Description: fmt.Sprintf("%s\n%s", song, link),
		Footer:      &notify.EmbedFooter{Text: "via " + svc.cfg.Via},
		Image:       &notify.EmbedImage{URL: fmt.Sprintf("https://assets.ppy.sh/beatmaps/%d/covers/cover.jpg", setID)},
		Color:       statusColor[status],
	})
	svc.notify.Announce(ctx, fmt.Sprintf("[%s %s] is now %s!", link, song, title))
}

// RemoveRankRequest deletes a pending rank request.
func (svc *Service) RemoveRankRequest(ctx context.Context, actorID, requestID int64) error {
	if err := svc.store.DeleteRankRequest(ctx, requestID); err != nil {
		return err
	}
	svc.record(actorID, fmt.Sprintf("has removed rank request %d", requestID),
		map[string]interface{}{"request_id": requestID})
	return nil
}
