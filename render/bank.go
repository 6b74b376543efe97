package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"roster-bot/ledger"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const Currency = "💰"

var printer = message.NewPrinter(language.English)

// Amount formats n with the currency sign and thousands separators.
func Amount(n int64) string {
	return Currency + printer.Sprintf("%d", n)
}

func timestamp(now time.Time) string { return now.UTC().Format(time.RFC3339) }

func Balance(user string, balance int64, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💰 Bank Balance",
		Color:       ColorBlurple,
		Description: fmt.Sprintf("**User:** %s\n**Balance:** %s", Mention(user), Amount(balance)),
		Timestamp:   timestamp(now),
	}
}

func Deposit(user string, amount, balance int64, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💰 Deposit Successful",
		Color:       ColorGreen,
		Description: fmt.Sprintf("**User:** %s\n**Deposited:** %s\n**New Balance:** %s", Mention(user), Amount(amount), Amount(balance)),
		Timestamp:   timestamp(now),
	}
}

func Withdrawal(user string, amount, balance int64, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "💸 Withdrawal Successful",
		Color:       ColorRed,
		Description: fmt.Sprintf("**User:** %s\n**Withdrawn:** %s\n**New Balance:** %s", Mention(user), Amount(amount), Amount(balance)),
		Timestamp:   timestamp(now),
	}
}

const NoActiveUsers = "📊 No users currently have money in the bank."

// ActiveUsers returns nil for an empty list; callers reply with NoActiveUsers.
func ActiveUsers(accounts []ledger.Account, now time.Time) *discordgo.MessageEmbed {
	if len(accounts) == 0 {
		return nil
	}
	lines := make([]string, len(accounts))
	for i, a := range accounts {
		lines[i] = fmt.Sprintf("%s — %s", Mention(a.UserID), Amount(a.Balance))
	}
	return &discordgo.MessageEmbed{
		Title:       "📊 Active Bank Users",
		Color:       ColorOrange,
		Description: strings.Join(lines, "\n"),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Total users: %d · Total: %s", len(accounts), Amount(ledger.Total(accounts)))},
		Timestamp:   timestamp(now),
	}
}

func Cleared(user string, amount int64, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🗑️ Balance Cleared",
		Color:       ColorDarkOrng,
		Description: fmt.Sprintf("**User:** %s\n**Cleared Amount:** %s\n**New Balance:** %s", Mention(user), Amount(amount), Amount(0)),
		Timestamp:   timestamp(now),
	}
}

func ClearedAll(users int, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🗑️ All Balances Cleared",
		Color:       ColorDarkRed,
		Description: fmt.Sprintf("**Cleared Users:** %d\n**All balances have been reset to %s**", users, Amount(0)),
		Timestamp:   timestamp(now),
	}
}

// LedgerError is the user-facing text for a ledger failure.
func LedgerError(err error) string {
	var insufficient *ledger.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		return "❌ Insufficient funds. Balance: " + Amount(insufficient.Balance)
	case errors.Is(err, ledger.ErrInvalidAmount):
		return "❌ Amount must be positive"
	case errors.Is(err, ledger.ErrNoBalance):
		return "❌ User has no balance to clear"
	}
	return "❌ Bank operation failed."
}
