package render

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const (
	HelpUserButton  = "help_user_commands"
	HelpAdminButton = "help_admin_commands"

	helpFooter = "South PH - Albion Online Guild Bot"
)

// HelpOverview is the /help reply: a short intro plus two buttons.
func HelpOverview() (string, []discordgo.MessageComponent) {
	content := "📖 **South PH Bot - Command Help**\n\n" +
		"Welcome! Choose which commands you'd like to see:\n" +
		"• **User Commands** - Available to all members\n" +
		"• **Admin Commands** - Requires administrator permissions\n\n" +
		"_Click the buttons below to view commands_"
	row := discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{CustomID: HelpUserButton, Label: "👤 User Commands", Style: discordgo.PrimaryButton},
		discordgo.Button{CustomID: HelpAdminButton, Label: "🛡️ Admin Commands", Style: discordgo.SecondaryButton},
	}}
	return content, []discordgo.MessageComponent{row}
}

func UserHelp(prefix string) string {
	return "👤 **User Commands** - Available to All Members\n\n" +
		"**General Commands:**\n" +
		fmt.Sprintf("• `/help` or `%shelp` - Show this help menu\n", prefix) +
		fmt.Sprintf("• `/utc` or `%sutc` - Display current UTC time (Albion Online in-game time)\n\n", prefix) +
		"**Bank Commands:**\n" +
		fmt.Sprintf("• `/bank balance [@user]` or `%sbal [@user]` - Check your balance or another user's balance\n", prefix) +
		fmt.Sprintf("• `/bank active` or `%sbank active` - View all active bank users\n\n", prefix) +
		"**Regear & Event Commands:**\n" +
		"• `/ctaregear [title]` - Create a CTA (Call to Action) regear thread\n" +
		"• `/ffregear [title]` - Create a FF (Faction Warfare) regear thread\n\n" +
		"**FFROA Thread:**\n" +
		"• `x <role>` - Claim a role (e.g. `x tank`, `x sc`, `x mp2`)\n" +
		"• `x fill` - Join the FILL queue and get the next open role\n\n" +
		"_Need admin commands? Click the Admin Commands button!_"
}

func AdminHelp(prefix string) string {
	return "🛡️ **Admin Commands** - Requires Administrator Permissions\n\n" +
		"**Prefix Management:**\n" +
		fmt.Sprintf("• `%sprefix <new>` - Change the bot's text command prefix\n\n", prefix) +
		"**Bank Management:**\n" +
		fmt.Sprintf("• `/bank deposit @user <amount>` or `%sbank deposit @user <amount>` - Add silver to a user's account\n", prefix) +
		fmt.Sprintf("• `/bank withdraw @user <amount>` or `%sbank withdraw @user <amount>` - Remove silver from a user's account\n", prefix) +
		fmt.Sprintf("• `/bank clear @user` or `%sbank clear @user` - Clear a specific user's balance\n", prefix) +
		fmt.Sprintf("• `/bank clearall` or `%sbank clearall` - Clear all user balances (use with caution!)\n\n", prefix) +
		"**FF ROA Management:**\n" +
		"• `/ffroa create` - Create a new FF ROA callout\n" +
		"• `/ffroa reset` - Reset the current FF ROA callout\n" +
		"• `/ffroa adduser` - Add a user to a role in the FF ROA\n" +
		"• `/ffroa removeuser` - Remove a user from a role in the FF ROA\n\n" +
		"_These commands require administrator permissions to use._"
}

// PrefixHelp is the reply to the text help command.
func PrefixHelp(prefix string) *discordgo.MessageEmbed {
	p := prefix
	return &discordgo.MessageEmbed{
		Title: "📖 South PH Bot - Command Help",
		Color: ColorBlurple,
		Description: fmt.Sprintf("**Current Prefix:** `%s`\n\n", p) +
			"**👤 User Commands** (Available to All Members):\n" +
			fmt.Sprintf("• `%shelp` - Show this help message\n", p) +
			fmt.Sprintf("• `%sutc` or `%stime` - Display UTC time\n", p, p) +
			fmt.Sprintf("• `%sbal [@user]` - Check balance\n", p) +
			fmt.Sprintf("• `%sbank active` - List all bank users\n\n", p) +
			"**🛡️ Admin Commands** (Requires Admin Permissions):\n" +
			fmt.Sprintf("• `%sprefix <new>` - Change prefix\n", p) +
			fmt.Sprintf("• `%sbank deposit @user <amount>` - Deposit silver\n", p) +
			fmt.Sprintf("• `%sbank withdraw @user <amount>` - Withdraw silver\n", p) +
			fmt.Sprintf("• `%sbank clear @user` - Clear user balance\n", p) +
			fmt.Sprintf("• `%sbank clearall` - Clear all balances\n\n", p) +
			"*Slash commands (/) are also available! Use `/help` for an interactive menu.*",
		Footer: &discordgo.MessageEmbedFooter{Text: helpFooter},
	}
}
