package pgdb

import (
	"context"
	"errors"

	"github.com/storeline-tech/go-backend/internal/domain"
	"github.com/storeline-tech/go-backend/internal/usecase"
	"github.com/storeline-tech/go-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// CatalogRepo читает товарный каталог из PostgreSQL. Пайплайны эмбеддингов
// работают только на чтение: запись в каталог идёт через другой сервис.
type CatalogRepo struct {
	pool *pgxpool.Pool
}

func NewCatalogRepo(pool *pgxpool.Pool) *CatalogRepo {
	return &CatalogRepo{pool: pool}
}

// CountActiveProducts возвращает число активных товаров владельца.
func (c *CatalogRepo) CountActiveProducts(ctx context.Context, ownerID int64) (int64, error) {
	query := `
		SELECT COUNT(*) FROM products
		WHERE owner_id = $1 AND status = $2;
	`

	var total int64
	if err := c.pool.QueryRow(ctx, query, ownerID, domain.ProductStatusActive).Scan(&total); err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return total, nil
}

// GetActiveProducts возвращает страницу активных товаров владельца вместе с
// вариантами и изображениями. Порядок стабилен между вызовами: свежие товары
// идут первыми, ID разрешает ничьи.
func (c *CatalogRepo) GetActiveProducts(ctx context.Context, ownerID int64, offset, limit int) ([]domain.Product, error) {
	query := `
		SELECT id, owner_id, name, description, category, price_cents, stock, status, created_at, updated_at
		FROM products
		WHERE owner_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC
		OFFSET $3 LIMIT $4;
	`

	rows, err := c.pool.Query(ctx, query, ownerID, domain.ProductStatusActive, offset, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	refs := make([]*domain.Product, len(products))
	for i := range products {
		refs[i] = &products[i]
	}
	if err := c.attachVariantsAndImages(ctx, refs); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return products, nil
}

// GetProduct возвращает один товар владельца с вариантами и изображениями.
// Товар другого владельца или несуществующий ID дают e.ErrProductNotFound.
func (c *CatalogRepo) GetProduct(ctx context.Context, ownerID, productID int64) (*domain.Product, error) {
	query := `
		SELECT id, owner_id, name, description, category, price_cents, stock, status, created_at, updated_at
		FROM products
		WHERE id = $1 AND owner_id = $2;
	`

	var p domain.Product
	err := c.pool.QueryRow(ctx, query, productID, ownerID).Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Category,
		&p.PriceCents, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.attachVariantsAndImages(ctx, []*domain.Product{&p}); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &p, nil
}

// GetProductsInfo возвращает витринные данные товаров по списку ID.
// Отсутствующие ID молча пропускаются: вызывающая сторона сама решает,
// что делать с осиротевшими векторами.
func (c *CatalogRepo) GetProductsInfo(ctx context.Context, ownerID int64, ids []int64) ([]usecase.ProductInfo, error) {
	if len(ids) == 0 {
		return []usecase.ProductInfo{}, nil
	}

	query := `
		SELECT p.id, p.name, p.description, p.category, p.price_cents, p.stock,
		       COALESCE(array_agg(pi.url ORDER BY pi.position) FILTER (WHERE pi.url IS NOT NULL), '{}')
		FROM products p
		LEFT JOIN product_images pi ON pi.product_id = p.id
		WHERE p.owner_id = $1 AND p.id = ANY($2)
		GROUP BY p.id;
	`

	rows, err := c.pool.Query(ctx, query, ownerID, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	infos := make([]usecase.ProductInfo, 0, len(ids))
	for rows.Next() {
		var info usecase.ProductInfo
		if err := rows.Scan(
			&info.ID, &info.Name, &info.Description, &info.Category,
			&info.PriceCents, &info.Stock, &info.Images,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return infos, nil
}

// attachVariantsAndImages дозагружает варианты и изображения одним запросом
// на таблицу, чтобы не плодить N+1 на страницах в сотни товаров.
func (c *CatalogRepo) attachVariantsAndImages(ctx context.Context, products []*domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	variantsQuery := `
		SELECT id, product_id, title, price_cents, stock, is_available
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, id;
	`

	rows, err := c.pool.Query(ctx, variantsQuery, ids)
	if err != nil {
		return err
	}

	for rows.Next() {
		var v domain.Variant
		var productID int64
		if err := rows.Scan(&v.ID, &productID, &v.Title, &v.PriceCents, &v.Stock, &v.IsAvailable); err != nil {
			rows.Close()
			return err
		}
		if p, ok := byID[productID]; ok {
			p.Variants = append(p.Variants, v)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	imagesQuery := `
		SELECT product_id, url
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY product_id, position;
	`

	rows, err = c.pool.Query(ctx, imagesQuery, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var productID int64
		var url string
		if err := rows.Scan(&productID, &url); err != nil {
			return err
		}
		if p, ok := byID[productID]; ok {
			p.Images = append(p.Images, url)
		}
	}

	return rows.Err()
}

func scanProducts(rows pgx.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Category,
			&p.PriceCents, &p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}
