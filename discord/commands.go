package discord

import (
	"fmt"
	"strings"

	"roster-bot/allocator"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// CommandRegistrar is implemented by *discordgo.Session.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

func slotChoices(schema allocator.Schema) []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, d := range schema.Slots() {
		name := strings.ToUpper(string(d.ID))
		if d.Label != "" && d.Label != name {
			name = fmt.Sprintf("%s (%s)", name, d.Label)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: string(d.ID)})
	}
	return choices
}

func floatPtr(f float64) *float64 { return &f }

// Commands returns the application command definitions.
func Commands(schema allocator.Schema) []*discordgo.ApplicationCommand {
	role := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "role",
			Description: desc,
			Required:    true,
			Choices:     slotChoices(schema),
		}
	}
	user := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: desc, Required: true}
	}
	amount := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: desc, Required: true, MinValue: floatPtr(1)}
	}
	title := &discordgo.ApplicationCommandOption{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Title for the regear thread", Required: true}

	return []*discordgo.ApplicationCommand{
		{Name: "utc", Description: "Display current UTC time (Albion Online in-game time)"},
		{Name: "help", Description: "Show available bot commands and information"},
		{
			Name:        "ffroa",
			Description: "Manage FFROA role callout",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "create",
					Description: "Create a new FFROA role callout (only once until reset)",
					Options: []*discordgo.ApplicationCommandOption{
						role("Your role for the raid"),
						{Type: discordgo.ApplicationCommandOptionString, Name: "title", Description: "Title for the FFROA thread", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "location", Description: "Location for the raid (e.g., Brecilien, Caerleon)", Required: true},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "tier",
							Description: fmt.Sprintf("Gear tier requirement (%d-%d)", allocator.MinTier, allocator.MaxTier),
							Required:    true,
							MinValue:    floatPtr(allocator.MinTier),
							MaxValue:    allocator.MaxTier,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "adduser",
					Description: "Add a user to a role slot",
					Options:     []*discordgo.ApplicationCommandOption{user("The user to add"), role("The role slot to assign")},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removeuser",
					Description: "Remove a user from a role slot",
					Options:     []*discordgo.ApplicationCommandOption{role("The role slot to clear")},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "reset", Description: "Reset the FFROA callout (allows creating a new one)"},
			},
		},
		{Name: "ctaregear", Description: "Create a CTA regear thread", Options: []*discordgo.ApplicationCommandOption{title}},
		{Name: "ffregear", Description: "Create an FF regear thread", Options: []*discordgo.ApplicationCommandOption{title}},
		{
			Name:        "bank",
			Description: "Bank economy system",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "deposit", Description: "Deposit money to a user (Admin only)",
					Options: []*discordgo.ApplicationCommandOption{user("The user to deposit money to"), amount("Amount to deposit")}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "withdraw", Description: "Withdraw money from a user (Admin only)",
					Options: []*discordgo.ApplicationCommandOption{user("The user to withdraw money from"), amount("Amount to withdraw")}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "balance", Description: "Check a user's balance",
					Options: []*discordgo.ApplicationCommandOption{{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to check (defaults to you)"}}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "active", Description: "List all users with money in the bank"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "clear", Description: "Clear a user's balance (Admin only)",
					Options: []*discordgo.ApplicationCommandOption{user("The user to clear")}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "clearall", Description: "Clear all balances (Admin only)"},
			},
		},
	}
}

// RegisterCommands replaces the application's global commands, or the
// guild's when guildID is set.
func RegisterCommands(r CommandRegistrar, appID, guildID string, schema allocator.Schema) error {
	cmds, err := r.ApplicationCommandBulkOverwrite(appID, guildID, Commands(schema))
	if err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	log.Info().Int("count", len(cmds)).Str("guildId", guildID).Msg("discord: application commands registered")
	return nil
}
