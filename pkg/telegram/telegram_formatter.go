package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-stock-ledger/internal/entity"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MaxMessageLength leaves headroom under the 4096 character Telegram limit.
const MaxMessageLength = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes the characters legacy Telegram Markdown treats as markup.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatMoney renders amount in the given ISO currency, e.g. "$99,983.32".
// Unknown currencies fall back to the plain amount followed by the code.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// FormatTradeMessage formats an executed trade for Telegram.
func FormatTradeMessage(event *entity.TradeEvent, currency string) string {
	icon, verb := "🟢", "Bought"
	if event.Type == entity.OrderTypeSell {
		icon, verb = "🔴", "Sold"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s *%s %d %s*\n", icon, verb, event.Quantity, EscapeMarkdown(event.Symbol)))
	b.WriteString(fmt.Sprintf("👤 *Account:* %s\n", EscapeMarkdown(event.Username)))
	b.WriteString(fmt.Sprintf("💵 *Price:* %s\n", FormatMoney(event.Price, currency)))
	b.WriteString(fmt.Sprintf("🧾 *Total:* %s\n", FormatMoney(event.Total, currency)))
	b.WriteString(fmt.Sprintf("🏦 *Balance:* %s\n", FormatMoney(event.Balance, currency)))
	if !event.ExecutedAt.IsZero() {
		b.WriteString(fmt.Sprintf("🕒 %s\n", event.ExecutedAt.UTC().Format(time.RFC3339)))
	}
	b.WriteString(fmt.Sprintf("🔖 `%s`", event.Reference))
	return b.String()
}

// FormatAuditAlertMessage formats a ledger audit violation for Telegram.
func FormatAuditAlertMessage(alert *entity.AuditAlert) string {
	var b strings.Builder
	b.WriteString("⚠️ *Ledger audit alert*\n")
	b.WriteString(fmt.Sprintf("🔎 *Check:* %s\n", EscapeMarkdown(alert.Check)))
	b.WriteString(fmt.Sprintf("🔢 *Rows:* %d\n", alert.Count))
	if alert.Detail != "" {
		b.WriteString(fmt.Sprintf("📝 %s\n", EscapeMarkdown(alert.Detail)))
	}
	if !alert.DetectedAt.IsZero() {
		b.WriteString(fmt.Sprintf("🕒 %s", alert.DetectedAt.UTC().Format(time.RFC3339)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// SplitMessage breaks text into parts of at most maxLen bytes, cutting on
// line boundaries where possible.
func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > maxLen {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			parts = append(parts, line[:maxLen])
			line = line[maxLen:]
		}
		if current.Len()+len(line) > maxLen {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
