package domain

import "time"

// Статусы товара в каталоге
const (
	ProductStatusActive   = "active"
	ProductStatusArchived = "archived"
	ProductStatusDraft    = "draft"
)

// Product описывает товар каталога вместе с вариантами и изображениями
type Product struct {
	ID          int64
	OwnerID     int64
	Name        string
	Description string
	Category    string
	PriceCents  int64 // Цена хранится в копейках
	Stock       int32 // Базовый остаток, используется при отсутствии вариантов
	Status      string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	Variants    []Variant
	Images      []string // URL или ключи объектов, в порядке position
}

// Variant описывает вариант товара (размер, цвет и т.п.)
type Variant struct {
	ID          int64
	Title       string
	PriceCents  int64
	Stock       int32
	IsAvailable bool
}

// TotalStock возвращает суммарный остаток: сумму остатков вариантов,
// либо базовый остаток, если вариантов нет.
func (p *Product) TotalStock() int32 {
	if len(p.Variants) == 0 {
		return p.Stock
	}

	var total int32
	for _, v := range p.Variants {
		total += v.Stock
	}

	return total
}

func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
