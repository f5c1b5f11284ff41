package notify

import (
	"strings"
	"testing"

	"github.com/maputoimporthub/storefront/internal/domain"
)

func TestFormatMZN(t *testing.T) {
	cases := []struct {
		amount int64
		want   string
	}{
		{500, "500 MZN"},
		{12500, "12,500 MZN"},
		{1250000, "1,250,000 MZN"},
	}
	for _, c := range cases {
		if got := FormatMZN(c.amount); got != c.want {
			t.Errorf("FormatMZN(%d) = %q, want %q", c.amount, got, c.want)
		}
	}
}

func TestOrderMessage(t *testing.T) {
	items := []domain.OrderItem{
		{ProductName: "Cimento Portland 50kg", Quantity: 10, TotalMZN: 6400},
		{ProductName: "Chapa de Zinco 3m", Quantity: 5, TotalMZN: 4250},
	}

	msg := OrderMessage(items, nil)

	if !strings.HasPrefix(msg, "Olá! Gostaria de fazer um pedido:%0A%0A") {
		t.Errorf("message missing greeting prefix: %q", msg)
	}
	if !strings.Contains(msg, "Cimento Portland 50kg: 10 unidades%0A") {
		t.Errorf("message missing first item line: %q", msg)
	}
	if !strings.Contains(msg, "Chapa de Zinco 3m: 5 unidades%0A") {
		t.Errorf("message missing second item line: %q", msg)
	}
	if !strings.Contains(msg, "%0ATotal: 10,650 MZN (166.41 USD)") {
		t.Errorf("message missing total line: %q", msg)
	}
	if strings.Contains(msg, "Nome:") {
		t.Errorf("message without customer should have no customer block: %q", msg)
	}
}

func TestOrderMessageWithCustomer(t *testing.T) {
	items := []domain.OrderItem{
		{ProductName: "Gerador 5kVA", Quantity: 1, TotalMZN: 64000},
	}
	customer := &CustomerInfo{
		Name:    "Ana Machel",
		Phone:   "+258841112233",
		Address: "Av. Julius Nyerere 123, Maputo",
	}

	msg := OrderMessage(items, customer)

	if !strings.Contains(msg, "%0A%0ANome: Ana Machel") {
		t.Errorf("missing customer name: %q", msg)
	}
	if !strings.Contains(msg, "%0ATelefone: +258841112233") {
		t.Errorf("missing customer phone: %q", msg)
	}
	if !strings.Contains(msg, "%0AEndereço: Av. Julius Nyerere 123, Maputo") {
		t.Errorf("missing customer address: %q", msg)
	}
}

func TestURL(t *testing.T) {
	msg := "Olá!%0ATotal: 500 MZN"

	got := URL(msg, "")
	want := "https://wa.me/258843210987?text=" + msg
	if got != want {
		t.Errorf("URL with default number = %q, want %q", got, want)
	}

	got = URL(msg, "258840000000")
	if !strings.HasPrefix(got, "https://wa.me/258840000000?text=") {
		t.Errorf("URL with explicit number = %q", got)
	}
}
