package discord

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"roster-bot/allocator"
	"roster-bot/ledger"
	"roster-bot/queues"
	"roster-bot/render"
	"roster-bot/settings"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// InteractionsConfig carries the settings the interactions endpoint needs.
type InteractionsConfig struct {
	PublicKey       ed25519.PublicKey
	MentionRoleID   string
	BuildsChannelID string
}

// Interactions serves POST /interactions.
type Interactions struct {
	api      API
	ctrl     *allocator.Controller
	board    *BoardPublisher
	ledger   ledger.Ledger
	settings settings.Store
	cfg      InteractionsConfig
	now      func() time.Time
	// async runs work that outlives a deferred response.
	async func(func())
	// creating is held from the create request until the roster is committed
	// or abandoned, so at most one thread is opened per roster.
	creating atomic.Bool
}

func NewInteractions(api API, ctrl *allocator.Controller, board *BoardPublisher, l ledger.Ledger, s settings.Store, cfg InteractionsConfig) *Interactions {
	return &Interactions{
		api:      api,
		ctrl:     ctrl,
		board:    board,
		ledger:   l,
		settings: s,
		cfg:      cfg,
		now:      time.Now,
		async:    func(f func()) { go f() },
	}
}

func (h *Interactions) Register(r gin.IRoutes) {
	r.POST("/interactions", h.Handle)
}

func errorResponse(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"error": msg})
}

func (h *Interactions) Handle(c *gin.Context) {
	if !discordgo.VerifyInteraction(c.Request, h.cfg.PublicKey) {
		log.Warn().Str("remote", c.ClientIP()).Msg("discord: rejected interaction with bad signature")
		errorResponse(c, http.StatusUnauthorized, "invalid request signature")
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "unreadable body")
		return
	}
	var i discordgo.Interaction
	if err := json.Unmarshal(body, &i); err != nil {
		log.Warn().Err(err).Msg("discord: malformed interaction")
		errorResponse(c, http.StatusBadRequest, "malformed interaction")
		return
	}

	switch i.Type {
	case discordgo.InteractionPing:
		c.JSON(http.StatusOK, &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong})
	case discordgo.InteractionApplicationCommand:
		h.command(c, &i)
	case discordgo.InteractionMessageComponent:
		h.component(c, &i)
	default:
		log.Warn().Int("type", int(i.Type)).Msg("discord: unknown interaction type")
		errorResponse(c, http.StatusBadRequest, "unknown interaction type")
	}
}

func message(content string, ephemeral bool) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{Type: discordgo.InteractionResponseChannelMessageWithSource, Data: data}
}

func embedMessage(e *discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{e}},
	}
}

func deferredEphemeral() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}
}

func interactionUser(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func interactionAdmin(i *discordgo.Interaction) bool {
	return i.Member != nil && isAdmin(i.Member.Permissions)
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) str(name string) string {
	if opt, ok := o[name]; ok {
		if s, ok := opt.Value.(string); ok {
			return s
		}
	}
	return ""
}

func (o options) integer(name string) int64 {
	if opt, ok := o[name]; ok {
		switch v := opt.Value.(type) {
		case float64:
			return int64(v)
		case json.Number:
			n, _ := v.Int64()
			return n
		}
	}
	return 0
}

func (h *Interactions) command(c *gin.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	log.Info().Str("command", data.Name).Str("userId", interactionUser(i)).Msg("discord: slash command")

	var sub string
	var opts options
	if len(data.Options) > 0 && data.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		sub = data.Options[0].Name
		opts = optionMap(data.Options[0].Options)
	} else {
		opts = optionMap(data.Options)
	}

	switch data.Name {
	case "utc":
		c.JSON(http.StatusOK, embedMessage(render.UTCTime(h.now())))
	case "help":
		content, components := render.HelpOverview()
		c.JSON(http.StatusOK, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: content, Components: components},
		})
	case "ffroa":
		h.ffroa(c, i, sub, opts)
	case "ctaregear":
		h.regear(c, i, render.RegearCTA, opts.str("title"))
	case "ffregear":
		h.regear(c, i, render.RegearFF, opts.str("title"))
	case "bank":
		c.JSON(http.StatusOK, h.bank(c.Request.Context(), i, sub, opts))
	default:
		log.Warn().Str("command", data.Name).Msg("discord: unknown command")
		errorResponse(c, http.StatusBadRequest, "unknown command")
	}
}

func (h *Interactions) component(c *gin.Context, i *discordgo.Interaction) {
	id := i.MessageComponentData().CustomID
	prefix, err := h.settings.Prefix(c.Request.Context())
	if err != nil {
		prefix = settings.DefaultPrefix
	}
	switch id {
	case render.HelpUserButton:
		c.JSON(http.StatusOK, message(render.UserHelp(prefix), true))
	case render.HelpAdminButton:
		c.JSON(http.StatusOK, message(render.AdminHelp(prefix), true))
	default:
		log.Warn().Str("customId", id).Msg("discord: unknown component")
		errorResponse(c, http.StatusBadRequest, "unknown component")
	}
}

func (h *Interactions) editResponse(i *discordgo.Interaction, content string) {
	if _, err := h.api.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Error().Err(err).Str("interactionId", i.ID).Msg("discord: failed to edit deferred response")
	}
}

func (h *Interactions) ffroa(c *gin.Context, i *discordgo.Interaction, sub string, opts options) {
	ctx := c.Request.Context()
	switch sub {
	case "create":
		if h.ctrl.Engine().Active() || !h.creating.CompareAndSwap(false, true) {
			c.JSON(http.StatusOK, message(render.AlreadyActive, true))
			return
		}
		req := &queues.RosterRequest{
			RequestID:     i.ID,
			Action:        queues.ActionCreate,
			ParticipantID: interactionUser(i),
			Slot:          opts.str("role"),
			Title:         opts.str("title"),
			Location:      opts.str("location"),
			Tier:          int(opts.integer("tier")),
		}
		c.JSON(http.StatusOK, deferredEphemeral())
		h.async(func() { h.createRoster(context.Background(), i, req) })

	case "adduser", "removeuser", "reset":
		if !interactionAdmin(i) {
			c.JSON(http.StatusOK, message(render.NotAdmin, true))
			return
		}
		req := &queues.RosterRequest{RequestID: i.ID, ParticipantID: interactionUser(i), Slot: opts.str("role")}
		switch sub {
		case "adduser":
			req.Action = queues.ActionAddUser
			req.TargetParticipantID = opts.str("user")
		case "removeuser":
			req.Action = queues.ActionRemoveUser
		default:
			req.Action = queues.ActionReset
		}
		c.JSON(http.StatusOK, message(h.adminReply(h.ctrl.Handle(ctx, req), req), true))

	default:
		errorResponse(c, http.StatusBadRequest, "unknown subcommand")
	}
}

func (h *Interactions) adminReply(hd *allocator.Handled, req *queues.RosterRequest) string {
	switch {
	case errors.Is(hd.Err, allocator.ErrNotActive):
		return render.NotActive
	case errors.Is(hd.Err, allocator.ErrSlotTaken):
		return render.SlotFilled(req.Slot)
	case errors.Is(hd.Err, allocator.ErrSlotAlreadyEmpty):
		return render.SlotAlreadyEmpty(req.Slot)
	case hd.Err != nil:
		return "❌ " + hd.Err.Error()
	case hd.NotifyErr != nil:
		return render.BoardUpdateFailed
	}
	switch req.Action {
	case queues.ActionAddUser:
		return render.AdminAdded(req.TargetParticipantID, req.Slot)
	case queues.ActionRemoveUser:
		return render.AdminRemoved(req.Slot)
	}
	return render.RosterReset
}

// createRoster opens the thread first so a failed thread leaves no roster
// behind, then commits the roster and posts its board.
func (h *Interactions) createRoster(ctx context.Context, i *discordgo.Interaction, req *queues.RosterRequest) {
	thread, err := startThread(h.api, i.ChannelID, req.Title)
	if err != nil {
		h.creating.Store(false)
		log.Error().Err(err).Str("channelId", i.ChannelID).Msg("discord: failed to create roster thread")
		h.editResponse(i, render.ThreadFailed)
		return
	}
	req.ThreadID = thread.ID

	hd := h.ctrl.Handle(ctx, req)
	h.creating.Store(false)
	if hd.Err != nil {
		reply := "❌ " + hd.Err.Error()
		if errors.Is(hd.Err, allocator.ErrAlreadyActive) {
			reply = render.AlreadyActive
		}
		h.editResponse(i, reply)
		return
	}

	engine := h.ctrl.Engine()
	snap := engine.Snapshot()
	msg, err := h.api.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
		Content: render.RoleMention(h.cfg.MentionRoleID),
		Embeds:  []*discordgo.MessageEmbed{render.Board(allocator.WireSnapshot(snap), h.cfg.BuildsChannelID)},
	})
	if err != nil {
		log.Error().Err(err).Str("threadId", thread.ID).Msg("discord: failed to post roster board")
		h.editResponse(i, render.BoardUpdateFailed)
		return
	}
	if err := engine.SetBoardMessage(thread.ID, msg.ID); err != nil {
		// reset before the board landed
		log.Warn().Err(err).Str("threadId", thread.ID).Msg("discord: roster closed before board was recorded")
		h.editResponse(i, render.RosterCreated(req.Title))
		return
	}
	h.board.MarkRendered(msg.ID, snap.Version)

	// claims that landed while the board was being posted; their promotions
	// were announced by their own events, only the board is behind
	if latest := engine.Snapshot(); latest.Version != snap.Version {
		if err := h.board.PublishRosterChanged(ctx, &queues.RosterChanged{Changed: true, Roster: allocator.WireSnapshot(latest)}); err != nil {
			log.Error().Err(err).Str("threadId", thread.ID).Msg("discord: failed to refresh roster board")
		}
	}
	log.Info().Str("threadId", thread.ID).Str("messageId", msg.ID).Msg("discord: roster board posted")
	h.editResponse(i, render.RosterCreated(req.Title))
}

func (h *Interactions) regear(c *gin.Context, i *discordgo.Interaction, kind render.RegearKind, title string) {
	c.JSON(http.StatusOK, deferredEphemeral())
	h.async(func() {
		thread, err := startThread(h.api, i.ChannelID, title)
		if err == nil {
			_, err = h.api.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
				Content: render.RoleMention(h.cfg.MentionRoleID),
				Embeds:  []*discordgo.MessageEmbed{render.RegearThread(kind)},
			})
		}
		if err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Msg("discord: failed to create regear thread")
			h.editResponse(i, render.RegearFailed(kind))
			return
		}
		h.editResponse(i, render.RegearCreated(kind, title))
	})
}

func (h *Interactions) bank(ctx context.Context, i *discordgo.Interaction, sub string, opts options) *discordgo.InteractionResponse {
	now := h.now()
	switch sub {
	case "balance":
		target := opts.str("user")
		if target == "" {
			target = interactionUser(i)
		}
		bal, err := h.ledger.Balance(ctx, target)
		if err != nil {
			return message(render.LedgerError(err), true)
		}
		return embedMessage(render.Balance(target, bal, now))
	case "active":
		accounts, err := h.ledger.ActiveUsers(ctx)
		if err != nil {
			return message(render.LedgerError(err), true)
		}
		if len(accounts) == 0 {
			return message(render.NoActiveUsers, false)
		}
		return embedMessage(render.ActiveUsers(accounts, now))
	}

	if !interactionAdmin(i) {
		return message(render.NotAdmin, true)
	}
	target, amount := opts.str("user"), opts.integer("amount")
	switch sub {
	case "deposit":
		bal, err := h.ledger.Deposit(ctx, target, amount)
		if err != nil {
			return message(render.LedgerError(err), true)
		}
		return embedMessage(render.Deposit(target, amount, bal, now))
	case "withdraw":
		bal, err := h.ledger.Withdraw(ctx, target, amount)
		if err != nil {
			return message(render.LedgerError(err), true)
		}
		return embedMessage(render.Withdrawal(target, amount, bal, now))
	case "clear":
		cleared, err := h.ledger.ClearUser(ctx, target)
		if err != nil {
			return message(render.LedgerError(err), true)
		}
		return embedMessage(render.Cleared(target, cleared, now))
	case "clearall":
		n, err := h.ledger.ClearAll(ctx)
		if err != nil {
			return message(render.LedgerError(err), true)
		}
		return embedMessage(render.ClearedAll(n, now))
	}
	return message("❌ Unknown bank subcommand.", true)
}
