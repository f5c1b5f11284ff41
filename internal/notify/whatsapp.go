// Package notify holds pure formatting of storefront data for outbound
// channels: the WhatsApp order deep link and the currency strings it embeds.
package notify

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/maputoimporthub/storefront/internal/domain"
)

// WhatsAppNumber is the store's order line, international format without the
// leading plus.
const WhatsAppNumber = "258843210987"

var printer = message.NewPrinter(language.English)

// FormatMZN renders an amount with thousands separators, e.g. "12,500 MZN".
func FormatMZN(amount int64) string {
	return printer.Sprintf("%d MZN", amount)
}

func FormatUSD(usd string) string {
	return usd + " USD"
}

// CustomerInfo is the optional customer block appended to an order message.
type CustomerInfo struct {
	Name    string
	Phone   string
	Address string
}

// OrderMessage builds the WhatsApp order text. Newlines are pre-encoded as
// %0A so the string drops straight into a wa.me text parameter.
func OrderMessage(items []domain.OrderItem, customer *CustomerInfo) string {
	var b strings.Builder
	b.WriteString("Olá! Gostaria de fazer um pedido:%0A%0A")

	var total int64
	for _, item := range items {
		b.WriteString(item.ProductName)
		b.WriteString(": ")
		b.WriteString(printer.Sprintf("%d", item.Quantity))
		b.WriteString(" unidades%0A")
		total += item.TotalMZN
	}

	b.WriteString("%0ATotal: ")
	b.WriteString(FormatMZN(total))
	b.WriteString(" (")
	b.WriteString(FormatUSD(domain.MZNToUSD(total)))
	b.WriteString(")")

	if customer != nil {
		b.WriteString("%0A%0ANome: ")
		b.WriteString(customer.Name)
		b.WriteString("%0ATelefone: ")
		b.WriteString(customer.Phone)
		if customer.Address != "" {
			b.WriteString("%0AEndereço: ")
			b.WriteString(customer.Address)
		}
	}

	return b.String()
}

// URL builds the wa.me deep link for a message produced by OrderMessage.
// An empty phone falls back to the store's number.
func URL(msg, phone string) string {
	if phone == "" {
		phone = WhatsAppNumber
	}
	return "https://wa.me/" + phone + "?text=" + msg
}
