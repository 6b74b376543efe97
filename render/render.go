// Package render turns roster snapshots and ledger values into Discord
// messages. Nothing here performs I/O.
package render

import (
	"fmt"
	"strings"
	"time"

	"roster-bot/queues"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorBlurple  = 0x5865F2
	ColorGreen    = 0x2ECC71
	ColorRed      = 0xE74C3C
	ColorOrange   = 0xF39C12
	ColorDarkOrng = 0xE67E22
	ColorDarkRed  = 0xC0392B

	BoardTitle = "🛡️ FFROA Role Call"
)

// Board renders the roster embed. buildsChannelID may be empty.
func Board(s queues.RosterSnapshot, buildsChannelID string) *discordgo.MessageEmbed {
	var b strings.Builder
	if s.Title != "" {
		fmt.Fprintf(&b, "**%s**\n", s.Title)
	}
	b.WriteString("**__X UP ROLE!__**\n")
	fmt.Fprintf(&b, "**Location:** %s\n**Gear:** T%d Sets\n", s.Location, s.Tier)
	fmt.Fprintf(&b, "**Status:** %d/%d", s.Claimed(), s.Total)
	if s.Queued > 0 {
		fmt.Fprintf(&b, " (%d FILL)", s.Queued)
	}
	b.WriteString("\n\n")

	for i, v := range s.Slots {
		fmt.Fprintf(&b, "**%d. %s %s**", i+1, v.Emoji, v.Label)
		if v.Occupant != "" {
			fmt.Fprintf(&b, "   ➡️ %s", Mention(v.Occupant))
		}
		b.WriteString("\n")
	}
	if len(s.Fill) > 0 {
		mentions := make([]string, len(s.Fill))
		for i, p := range s.Fill {
			mentions[i] = Mention(p)
		}
		fmt.Fprintf(&b, "\n**🔄 FILL (%d):** %s\n", len(s.Fill), strings.Join(mentions, ", "))
	}
	if buildsChannelID != "" {
		fmt.Fprintf(&b, "\n**Builds Thread:** <#%s>", buildsChannelID)
	}

	return &discordgo.MessageEmbed{
		Title:       BoardTitle,
		Color:       ColorBlurple,
		Description: strings.TrimRight(b.String(), "\n"),
	}
}

func Mention(userID string) string { return "<@" + userID + ">" }

func RoleMention(roleID string) string {
	if roleID == "" {
		return ""
	}
	return "<@&" + roleID + ">"
}

// SlotName is how a slot is named in chat replies.
func SlotName(slot string) string { return strings.ToUpper(slot) }

// UTCTime renders the current in-game (UTC) clock.
func UTCTime(now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Color:       ColorBlurple,
		Description: fmt.Sprintf("⏰ UTC Time Now: **%s**", now.UTC().Format("15:04:05")),
	}
}

type RegearKind string

const (
	RegearCTA RegearKind = "cta"
	RegearFF  RegearKind = "ff"
)

// RegearThread is the first message of a regear thread.
func RegearThread(kind RegearKind) *discordgo.MessageEmbed {
	if kind == RegearCTA {
		return &discordgo.MessageEmbed{
			Title:       "⚔️ CTA REGEAR",
			Color:       ColorRed,
			Description: "**SEND REGEAR HERE**\n**INCLUDE OC BREAK**",
		}
	}
	return &discordgo.MessageEmbed{
		Title:       "🛡️ FF REGEAR",
		Color:       ColorBlurple,
		Description: "**SEND FF REGEAR HERE**",
	}
}

func RegearCreated(kind RegearKind, title string) string {
	return fmt.Sprintf("✅ %s regear thread created: **%s**", strings.ToUpper(string(kind)), title)
}

func RegearFailed(kind RegearKind) string {
	return fmt.Sprintf("❌ Failed to create %s regear thread.", strings.ToUpper(string(kind)))
}

func Promotion(participant, slot string) string {
	return fmt.Sprintf("✅ %s has been automatically assigned to **%s**!", Mention(participant), SlotName(slot))
}

func SlotTaken(slot, holder string) string {
	return fmt.Sprintf("❌ %s slot is already taken by %s!", SlotName(slot), Mention(holder))
}

func NoCapacity(reserved, claimed, total int) string {
	return fmt.Sprintf("❌ No slots available! %d slot(s) are reserved for FILL players. Current status: %d/%d", reserved, claimed, total)
}

const (
	BoardUpdateFailed = "❌ Failed to update the FFROA board."
	NotAdmin          = "❌ You need Administrator permission to use this command."
	AlreadyActive     = "❌ An FFROA callout is already active! Use `/ffroa reset` to clear it first."
	NotActive         = "❌ No active FFROA callout! Use `/ffroa create [role]` first."
	RosterReset       = "✅ FFROA callout has been reset! You can now create a new one with `/ffroa create [role]`."
	ThreadFailed      = "❌ Failed to create FFROA thread."
)

func RosterCreated(title string) string {
	return fmt.Sprintf("✅ FFROA thread created: **%s**", title)
}

func AdminAdded(participant, slot string) string {
	return fmt.Sprintf("✅ %s added to **%s**", Mention(participant), SlotName(slot))
}

func AdminRemoved(slot string) string {
	return fmt.Sprintf("✅ Removed user from **%s**", SlotName(slot))
}

func SlotFilled(slot string) string {
	return fmt.Sprintf("❌ The %s slot is already filled!", SlotName(slot))
}

func SlotAlreadyEmpty(slot string) string {
	return fmt.Sprintf("❌ The %s slot is already empty!", SlotName(slot))
}
