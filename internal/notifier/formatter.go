package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockBoard/internal/model"
)

// FormatRunSummary formats a fetch run into a Telegram message.
func FormatRunSummary(rep *model.RunReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockBoard</b> | %s\n\n", rep.StartedAt.Format("2006-01-02 15:04")))

	if rep.Err != nil {
		b.WriteString(fmt.Sprintf("❌ Run failed: %s\n", html.EscapeString(rep.Err.Error())))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("FX: 1 USD = %.4f EUR (%s)\n\n", rep.Rate.Value, html.EscapeString(rep.Rate.Source)))

	ok := rep.Succeeded()
	b.WriteString(fmt.Sprintf("✅ <b>%d updated</b>\n", len(ok)))
	for _, res := range rep.Results {
		if !res.OK() {
			continue
		}
		price := "n/a"
		if res.Record.PriceEUR != nil {
			price = fmt.Sprintf("%.2f €", *res.Record.PriceEUR)
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(res.Symbol), price))
	}

	if failed := rep.Failed(); len(failed) > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ <b>%d failed</b>\n", len(failed)))
		for _, res := range failed {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(res.Symbol), html.EscapeString(errString(res.Err))))
		}
	}
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return "no record"
	}
	return err.Error()
}
