package discord

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"roster-bot/queues"
	"roster-bot/render"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// BoardPublisher keeps the posted roster board in sync with committed
// changes and announces auto-promotions in the roster thread.
type BoardPublisher struct {
	api             API
	buildsChannelID string

	mu       sync.Mutex
	rendered map[string]uint64 // message id -> last rendered version
}

func NewBoardPublisher(api API, buildsChannelID string) *BoardPublisher {
	return &BoardPublisher{api: api, buildsChannelID: buildsChannelID, rendered: make(map[string]uint64)}
}

var _ queues.Publisher = (*BoardPublisher)(nil)

func (b *BoardPublisher) PublishRosterChanged(ctx context.Context, ev *queues.RosterChanged) error {
	r := ev.Roster
	if !ev.Changed || !r.Active || r.ChannelID == "" {
		return nil
	}
	var errs []error
	edited := r.MessageID != "" && b.claimVersion(r.MessageID, r.Version)
	if edited {
		if _, err := b.api.ChannelMessageEditEmbed(r.ChannelID, r.MessageID, render.Board(r, b.buildsChannelID)); err != nil {
			errs = append(errs, fmt.Errorf("edit board: %w", err))
		}
	}
	for _, p := range ev.Promotions {
		_, err := b.api.ChannelMessageSendComplex(r.ChannelID, &discordgo.MessageSend{
			Content:         render.Promotion(p.ParticipantID, p.Slot),
			AllowedMentions: &discordgo.MessageAllowedMentions{Users: []string{p.ParticipantID}},
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("announce promotion of %s: %w", p.ParticipantID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	if !edited && len(ev.Promotions) == 0 {
		return nil
	}
	log.Debug().Str("messageId", r.MessageID).Uint64("version", r.Version).Int("promotions", len(ev.Promotions)).Msg("discord: board updated")
	return nil
}

// claimVersion reports whether version is newer than what messageID shows and
// records it. Events can arrive out of order when handlers race.
func (b *BoardPublisher) claimVersion(messageID string, version uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if last, ok := b.rendered[messageID]; ok && version <= last {
		log.Debug().Str("messageId", messageID).Uint64("version", version).Uint64("rendered", last).Msg("discord: skipping stale board update")
		return false
	}
	b.rendered[messageID] = version
	return true
}

// MarkRendered records a board that was posted or edited outside the
// publisher.
func (b *BoardPublisher) MarkRendered(messageID string, version uint64) {
	b.claimVersion(messageID, version)
}
