package discord

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"roster-bot/allocator"
	"roster-bot/ledger"
	"roster-bot/queues"
	"roster-bot/render"
	"roster-bot/settings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Gateway handles messages received over the gateway connection: roster
// claims inside the roster thread and prefix commands everywhere else.
type Gateway struct {
	api      API
	ctrl     *allocator.Controller
	ledger   ledger.Ledger
	settings settings.Store
	now      func() time.Time
}

func NewGateway(api API, ctrl *allocator.Controller, l ledger.Ledger, s settings.Store) *Gateway {
	return &Gateway{api: api, ctrl: ctrl, ledger: l, settings: s, now: time.Now}
}

// Intents the gateway session must request.
const Intents = discordgo.IntentGuilds | discordgo.IntentGuildMessages | discordgo.IntentMessageContent

// OnMessageCreate is registered with Session.AddHandler.
func (g *Gateway) OnMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	g.HandleMessage(context.Background(), m.Message)
}

func (g *Gateway) HandleMessage(ctx context.Context, m *discordgo.Message) {
	if m == nil || m.Author == nil || m.Author.Bot {
		return
	}
	// the roster thread is reserved for claims; commands go elsewhere
	if g.ctrl.Engine().InThread(m.ChannelID) {
		g.handleRosterText(ctx, m)
		return
	}
	g.handlePrefixCommand(ctx, m)
}

func (g *Gateway) handleRosterText(ctx context.Context, m *discordgo.Message) {
	h := g.ctrl.Handle(ctx, &queues.RosterRequest{
		RequestID:     m.ID,
		Action:        queues.ActionText,
		ParticipantID: m.Author.ID,
		RawText:       m.Content,
		ThreadID:      m.ChannelID,
	})
	res := h.Result
	switch res.Outcome {
	case allocator.OutcomeNoMatch:
		return
	case allocator.OutcomeAssigned:
		g.react(m, reactAssigned)
	case allocator.OutcomeQueued:
		g.react(m, reactQueued)
	case allocator.OutcomeAlreadyHeld, allocator.OutcomeAlreadyQueued:
		g.react(m, reactNoop)
	case allocator.OutcomeSlotTaken:
		g.reply(m, render.SlotTaken(string(res.Slot), string(res.Holder)))
	case allocator.OutcomeNoCapacity:
		g.reply(m, render.NoCapacity(res.Reserved, res.Snapshot.Claimed(), res.Snapshot.Total))
	default:
		// reset raced with the message; nothing to tell the user
		log.Debug().Str("outcome", string(res.Outcome)).Str("messageId", m.ID).Msg("discord: roster text not applied")
	}
	if h.NotifyErr != nil {
		g.reply(m, render.BoardUpdateFailed)
	}
}

func (g *Gateway) react(m *discordgo.Message, emoji string) {
	if err := g.api.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		log.Error().Err(err).Str("messageId", m.ID).Str("emoji", emoji).Msg("discord: failed to react")
	}
}

func (g *Gateway) reply(m *discordgo.Message, content string) {
	g.send(m, &discordgo.MessageSend{Content: content})
}

func (g *Gateway) replyEmbed(m *discordgo.Message, embed *discordgo.MessageEmbed) {
	g.send(m, &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}})
}

func (g *Gateway) send(m *discordgo.Message, data *discordgo.MessageSend) {
	data.Reference = m.Reference()
	if _, err := g.api.ChannelMessageSendComplex(m.ChannelID, data); err != nil {
		log.Error().Err(err).Str("channelId", m.ChannelID).Str("messageId", m.ID).Msg("discord: failed to reply")
	}
}

func (g *Gateway) isAdmin(m *discordgo.Message) bool {
	perms, err := g.api.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		log.Warn().Err(err).Str("userId", m.Author.ID).Msg("discord: permission lookup failed")
		return false
	}
	return isAdmin(perms)
}

func (g *Gateway) handlePrefixCommand(ctx context.Context, m *discordgo.Message) {
	prefix, err := g.settings.Prefix(ctx)
	if err != nil {
		log.Error().Err(err).Msg("discord: failed to load prefix")
		prefix = settings.DefaultPrefix
	}
	if !strings.HasPrefix(m.Content, prefix) {
		return
	}
	args := strings.Fields(m.Content[len(prefix):])
	if len(args) == 0 {
		return
	}
	cmd := strings.ToLower(args[0])
	log.Debug().Str("command", cmd).Str("userId", m.Author.ID).Msg("discord: prefix command")

	switch cmd {
	case "utc", "time":
		g.replyEmbed(m, render.UTCTime(g.now()))
	case "bank", "bal", "balance":
		g.bankCommand(ctx, m, prefix, args[1:])
	case "prefix":
		g.prefixCommand(ctx, m, prefix, args[1:])
	case "help", "commands":
		g.replyEmbed(m, render.PrefixHelp(prefix))
	}
}

func (g *Gateway) bankCommand(ctx context.Context, m *discordgo.Message, prefix string, args []string) {
	sub := ""
	if len(args) > 0 {
		sub = strings.ToLower(args[0])
	}
	if isMention(sub) {
		sub = "balance"
	}
	now := g.now()

	switch sub {
	case "", "balance", "bal":
		target := m.Author.ID
		if len(m.Mentions) > 0 {
			target = m.Mentions[0].ID
		}
		bal, err := g.ledger.Balance(ctx, target)
		if err != nil {
			g.reply(m, render.LedgerError(err))
			return
		}
		g.replyEmbed(m, render.Balance(target, bal, now))

	case "deposit", "dep", "withdraw", "with":
		if !g.isAdmin(m) {
			g.reply(m, render.NotAdmin)
			return
		}
		withdraw := sub == "withdraw" || sub == "with"
		amount, ok := amountArg(args[1:])
		if len(m.Mentions) == 0 || !ok {
			verb := "deposit"
			if withdraw {
				verb = "withdraw"
			}
			g.reply(m, "❌ Usage: `"+prefix+"bank "+verb+" @user <amount>`")
			return
		}
		target := m.Mentions[0].ID
		if withdraw {
			bal, err := g.ledger.Withdraw(ctx, target, amount)
			if err != nil {
				g.reply(m, render.LedgerError(err))
				return
			}
			g.replyEmbed(m, render.Withdrawal(target, amount, bal, now))
			return
		}
		bal, err := g.ledger.Deposit(ctx, target, amount)
		if err != nil {
			g.reply(m, render.LedgerError(err))
			return
		}
		g.replyEmbed(m, render.Deposit(target, amount, bal, now))

	case "active", "list":
		accounts, err := g.ledger.ActiveUsers(ctx)
		if err != nil {
			g.reply(m, render.LedgerError(err))
			return
		}
		if len(accounts) == 0 {
			g.reply(m, render.NoActiveUsers)
			return
		}
		g.replyEmbed(m, render.ActiveUsers(accounts, now))

	case "clear":
		if !g.isAdmin(m) {
			g.reply(m, render.NotAdmin)
			return
		}
		if len(m.Mentions) == 0 {
			g.reply(m, "❌ Usage: `"+prefix+"bank clear @user`")
			return
		}
		target := m.Mentions[0].ID
		cleared, err := g.ledger.ClearUser(ctx, target)
		if err != nil {
			g.reply(m, render.LedgerError(err))
			return
		}
		g.replyEmbed(m, render.Cleared(target, cleared, now))

	case "clearall":
		if !g.isAdmin(m) {
			g.reply(m, render.NotAdmin)
			return
		}
		n, err := g.ledger.ClearAll(ctx)
		if err != nil {
			g.reply(m, render.LedgerError(err))
			return
		}
		g.replyEmbed(m, render.ClearedAll(n, now))

	default:
		g.reply(m, "❌ Invalid subcommand. Available: `balance`, `deposit`, `withdraw`, `active`, `clear`, `clearall`")
	}
}

func (g *Gateway) prefixCommand(ctx context.Context, m *discordgo.Message, current string, args []string) {
	if !g.isAdmin(m) {
		g.reply(m, "❌ You need Administrator permission to change the prefix.")
		return
	}
	if len(args) == 0 {
		g.reply(m, "📝 Current prefix: `"+current+"`\nUsage: `"+current+"prefix <new_prefix>`")
		return
	}
	next := args[0]
	if err := g.settings.SetPrefix(ctx, next); err != nil {
		if errors.Is(err, settings.ErrInvalidPrefix) {
			g.reply(m, "❌ Prefix must be 3 characters or less.")
			return
		}
		log.Error().Err(err).Str("prefix", next).Msg("discord: failed to store prefix")
		g.reply(m, "❌ Failed to change prefix.")
		return
	}
	log.Info().Str("from", current).Str("to", next).Str("userId", m.Author.ID).Msg("discord: prefix changed")
	g.reply(m, "✅ Prefix changed from `"+current+"` to `"+next+"`")
}

func isMention(s string) bool {
	return strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">")
}

// amountArg returns the first positive integer among args, skipping mentions.
func amountArg(args []string) (int64, bool) {
	for _, a := range args {
		if isMention(a) {
			continue
		}
		n, err := strconv.ParseInt(a, 10, 64)
		if err != nil || n <= 0 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
