package reports

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/maputoimporthub/storefront/internal/domain"
)

// salesCSVHeader is the export contract: string fields double-quoted,
// numeric fields bare, one row per order.
const salesCSVHeader = "Order ID,Customer Name,Email,Phone,Total MZN,Total USD,Date,Status"

// WriteSalesCSV renders the export by hand: the contract quotes every string
// field unconditionally, which encoding/csv will not do (it quotes only when
// a field needs it).
func WriteSalesCSV(w io.Writer, orders []domain.Order) error {
	if _, err := io.WriteString(w, salesCSVHeader+"\n"); err != nil {
		return err
	}
	for _, o := range orders {
		row := fmt.Sprintf("%s,%s,%s,%s,%d,%s,%s,%s\n",
			o.ID,
			quote(o.CustomerName),
			quote(o.CustomerEmail),
			quote(o.CustomerPhone),
			o.TotalMZN,
			o.TotalUSD,
			quote(o.CreatedAt.Format(time.RFC3339)),
			quote(string(o.Status)),
		)
		if _, err := io.WriteString(w, row); err != nil {
			return err
		}
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
