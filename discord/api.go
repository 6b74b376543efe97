// Package discord is the chat transport: gateway messages, HTTP
// interactions, slash command registration and the roster board.
package discord

import "github.com/bwmarrin/discordgo"

// API is the subset of *discordgo.Session the transport calls.
type API interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	ThreadStartComplex(channelID string, data *discordgo.ThreadStart, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

var _ API = (*discordgo.Session)(nil)

const (
	reactAssigned = "✅"
	reactQueued   = "🔄"
	reactNoop     = "ℹ️"
)

func isAdmin(perms int64) bool {
	return perms&discordgo.PermissionAdministrator != 0
}

// threadArchiveMinutes is the auto-archive window of created threads.
const threadArchiveMinutes = 1440

func startThread(api API, channelID, name string) (*discordgo.Channel, error) {
	return api.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: threadArchiveMinutes,
		Type:                discordgo.ChannelTypeGuildPublicThread,
	})
}
