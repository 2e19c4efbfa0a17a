package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/finsim/internal/model"
)

// FormatAmount formats amount in the conventions of currency. Unknown
// currencies fall back to the plain amount followed by the code.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(model.CurrencyPlaces) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Renderer renders computed tables to text.
type Renderer struct {
	Color    bool
	Currency string
	Indent   int

	bold, red *color.Color
}

// NewRenderer returns a renderer formatting amounts in currency.
func NewRenderer(currency string, enableColor bool) *Renderer {
	return &Renderer{
		Color:    enableColor,
		Currency: currency,
		Indent:   2,
		bold:     color.New(color.Bold),
		red:      color.New(color.FgRed),
	}
}

// Render writes every column of res, one line per row in output order.
func (r *Renderer) Render(w io.Writer, res *Result) error {
	color.NoColor = !r.Color

	for i, c := range res.Table().Columns() {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.renderColumn(w, c, res); err != nil {
			return err
		}
	}
	return nil
}

type renderedLine struct {
	label, amount string
	negative      bool
}

func (r *Renderer) renderColumn(w io.Writer, c *Column, res *Result) error {
	lines := make([]renderedLine, 0, len(c.Lines()))
	labelWidth, amountWidth := utf8.RuneCountInString(c.Title()), 0
	for _, row := range c.Lines() {
		var l renderedLine
		if row != nil {
			l.label = strings.Repeat(" ", r.Indent*row.Level()) + row.Title()
			if row.Show() {
				v := res.Value(row)
				l.amount = FormatAmount(v, r.Currency)
				l.negative = v.IsNegative()
			}
		}
		labelWidth = max(labelWidth, utf8.RuneCountInString(l.label))
		amountWidth = max(amountWidth, utf8.RuneCountInString(l.amount))
		lines = append(lines, l)
	}

	if _, err := r.bold.Fprintln(w, c.Title()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("=", labelWidth+amountWidth+2)); err != nil {
		return err
	}
	for _, l := range lines {
		if l.label == "" && l.amount == "" {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
			continue
		}
		if err := r.renderLine(w, l, labelWidth, amountWidth); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderLine(w io.Writer, l renderedLine, labelWidth, amountWidth int) error {
	if l.amount == "" {
		_, err := fmt.Fprintln(w, l.label)
		return err
	}
	pad := labelWidth - utf8.RuneCountInString(l.label) + 2 + amountWidth - utf8.RuneCountInString(l.amount)
	if _, err := fmt.Fprint(w, l.label, strings.Repeat(" ", pad)); err != nil {
		return err
	}
	if l.negative {
		_, err := r.red.Fprintln(w, l.amount)
		return err
	}
	_, err := fmt.Fprintln(w, l.amount)
	return err
}
