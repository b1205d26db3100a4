package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BuildProductSnapshot собирает каноническое текстовое описание товара —
// ровно тот текст, который отправляется текстовому эмбеддеру.
// Функция детерминирована: одинаковый товар всегда даёт одинаковую строку.
// Отсутствующие необязательные поля трактуются как пустые строки.
func BuildProductSnapshot(p *Product) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Product: %s\n", p.Name)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)
	fmt.Fprintf(&b, "Category: %s\n", p.Category)

	if len(p.Variants) > 0 {
		b.WriteString("Variants:\n")
		for _, v := range p.Variants {
			fmt.Fprintf(&b, "- %s: %s (stock: %d)\n", v.Title, FormatPrice(v.PriceCents), v.Stock)
		}
	} else {
		fmt.Fprintf(&b, "Price: %s (stock: %d)\n", FormatPrice(p.PriceCents), p.Stock)
	}

	if n := len(p.Images); n > 0 {
		fmt.Fprintf(&b, "%d image(s) available", n)
	} else {
		b.WriteString("no images available")
	}

	return b.String()
}

// FormatPrice переводит цену из копеек в строку вида "599.99".
func FormatPrice(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}
