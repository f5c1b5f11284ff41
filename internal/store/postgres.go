package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/maputoimporthub/storefront/internal/domain"
)

// PostgresStore is the durable Store backend. Schema lives in migrations/.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const productColumns = `id, name, description, category, price_mzn, price_usd, stock, images, specifications, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	p := &domain.Product{}
	var specs []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category,
		&p.PriceMZN, &p.PriceUSD, &p.Stock,
		pq.Array(&p.Images), &specs, &p.Status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Specifications); err != nil {
			return nil, fmt.Errorf("decode specifications: %w", err)
		}
	}
	return p, nil
}

func (s *PostgresStore) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresStore) GetProducts(ctx context.Context) ([]domain.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY created_at
	`)
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (s *PostgresStore) GetProductsByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE category = $1
		ORDER BY created_at
	`, category)
}

func (s *PostgresStore) SearchProducts(ctx context.Context, query string) ([]domain.Product, error) {
	pattern := "%" + query + "%"
	return s.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1
		ORDER BY created_at
	`, pattern)
}

func (s *PostgresStore) CreateProduct(ctx context.Context, np NewProduct) (*domain.Product, error) {
	status := np.Status
	if status == "" {
		status = domain.ProductStatusActive
	}

	specs, err := json.Marshal(np.Specifications)
	if err != nil {
		return nil, fmt.Errorf("encode specifications: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, category, price_mzn, price_usd, stock, images, specifications, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, id, np.Name, np.Description, np.Category, np.PriceMZN, np.PriceUSD, np.Stock,
		pq.Array(np.Images), specs, status, now)
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, id)
}

// UpdateProduct applies a partial update inside a transaction, locking the
// row so concurrent admin edits cannot interleave within one update.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id string, upd ProductUpdate) (*domain.Product, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanProduct(tx.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
		FOR UPDATE
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.PriceMZN != nil {
		p.PriceMZN = *upd.PriceMZN
	}
	if upd.PriceUSD != nil {
		p.PriceUSD = *upd.PriceUSD
	}
	if upd.Stock != nil {
		p.Stock = *upd.Stock
	}
	if upd.Images != nil {
		p.Images = *upd.Images
	}
	if upd.Specifications != nil {
		p.Specifications = *upd.Specifications
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	p.UpdatedAt = time.Now().UTC()

	specs, err := json.Marshal(p.Specifications)
	if err != nil {
		return nil, fmt.Errorf("encode specifications: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, price_mzn = $5, price_usd = $6,
		    stock = $7, images = $8, specifications = $9, status = $10, updated_at = $11
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Category, p.PriceMZN, p.PriceUSD,
		p.Stock, pq.Array(p.Images), specs, p.Status, p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *PostgresStore) UpdateProductStock(ctx context.Context, id string, stock int) (*domain.Product, error) {
	return s.UpdateProduct(ctx, id, ProductUpdate{Stock: &stock})
}

const orderColumns = `id, customer_name, customer_email, customer_phone, customer_company,
	delivery_address, delivery_city, delivery_postal_code, delivery_option, payment_method,
	total_mzn, total_usd, status, notes, created_at`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerCompany,
		&o.DeliveryAddress, &o.DeliveryCity, &o.DeliveryPostalCode, &o.DeliveryOption, &o.PaymentMethod,
		&o.TotalMZN, &o.TotalUSD, &o.Status, &o.Notes, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStore) GetOrders(ctx context.Context) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		o.Items = []domain.OrderItem{}
		orderMap[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, price_mzn, price_usd, quantity, total_mzn, total_usd
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.ProductName,
			&item.PriceMZN, &item.PriceUSD, &item.Quantity, &item.TotalMZN, &item.TotalUSD); err != nil {
			return nil, err
		}
		o := orderMap[orderID]
		o.Items = append(o.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}
	return orders, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, price_mzn, price_usd, quantity, total_mzn, total_usd
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.PriceMZN,
			&item.PriceUSD, &item.Quantity, &item.TotalMZN, &item.TotalUSD); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}
	return o, rows.Err()
}

func (s *PostgresStore) CreateOrder(ctx context.Context, no NewOrder) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	o := &domain.Order{
		ID:                 uuid.New().String(),
		CustomerName:       no.CustomerName,
		CustomerEmail:      no.CustomerEmail,
		CustomerPhone:      no.CustomerPhone,
		CustomerCompany:    no.CustomerCompany,
		DeliveryAddress:    no.DeliveryAddress,
		DeliveryCity:       no.DeliveryCity,
		DeliveryPostalCode: no.DeliveryPostalCode,
		DeliveryOption:     no.DeliveryOption,
		PaymentMethod:      no.PaymentMethod,
		Items:              append([]domain.OrderItem(nil), no.Items...),
		TotalMZN:           no.TotalMZN,
		TotalUSD:           no.TotalUSD,
		Status:             domain.OrderStatusPending,
		Notes:              no.Notes,
		CreatedAt:          time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_name, customer_email, customer_phone, customer_company,
			delivery_address, delivery_city, delivery_postal_code, delivery_option, payment_method,
			total_mzn, total_usd, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, o.ID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.CustomerCompany,
		o.DeliveryAddress, o.DeliveryCity, o.DeliveryPostalCode, o.DeliveryOption, o.PaymentMethod,
		o.TotalMZN, o.TotalUSD, o.Status, o.Notes, o.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, position, product_id, product_name, price_mzn, price_usd, quantity, total_mzn, total_usd)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, uuid.New().String(), o.ID, i, item.ProductID, item.ProductName,
			item.PriceMZN, item.PriceUSD, item.Quantity, item.TotalMZN, item.TotalUSD)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET status = $1
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, nil
	}

	return s.GetOrder(ctx, id)
}

func (s *PostgresStore) GetCartItems(ctx context.Context, sessionID string) ([]domain.CartEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.session_id, c.product_id, c.quantity, c.created_at,
		       p.id, p.name, p.description, p.category, p.price_mzn, p.price_usd,
		       p.stock, p.images, p.specifications, p.status, p.created_at, p.updated_at
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.session_id = $1
		ORDER BY c.created_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []domain.CartEntry
	for rows.Next() {
		var e domain.CartEntry
		var specs []byte
		err := rows.Scan(
			&e.ID, &e.SessionID, &e.ProductID, &e.Quantity, &e.CreatedAt,
			&e.Product.ID, &e.Product.Name, &e.Product.Description, &e.Product.Category,
			&e.Product.PriceMZN, &e.Product.PriceUSD, &e.Product.Stock,
			pq.Array(&e.Product.Images), &specs, &e.Product.Status,
			&e.Product.CreatedAt, &e.Product.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(specs) > 0 {
			if err := json.Unmarshal(specs, &e.Product.Specifications); err != nil {
				return nil, fmt.Errorf("decode specifications: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddToCart merges into an existing (session, product) line under a row lock
// so the merge is atomic even across service instances.
func (s *PostgresStore) AddToCart(ctx context.Context, sessionID, productID string, quantity int) (*domain.CartItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	item := &domain.CartItem{SessionID: sessionID, ProductID: productID}
	err = tx.QueryRowContext(ctx, `
		SELECT id, quantity, created_at
		FROM cart_items
		WHERE session_id = $1 AND product_id = $2
		FOR UPDATE
	`, sessionID, productID).Scan(&item.ID, &item.Quantity, &item.CreatedAt)

	switch {
	case err == sql.ErrNoRows:
		item.ID = uuid.New().String()
		item.Quantity = quantity
		item.CreatedAt = time.Now().UTC()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cart_items (id, session_id, product_id, quantity, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, sessionID, productID, quantity, item.CreatedAt)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		item.Quantity += quantity
		_, err = tx.ExecContext(ctx, `
			UPDATE cart_items SET quantity = $1 WHERE id = $2
		`, item.Quantity, item.ID)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *PostgresStore) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (*domain.CartItem, error) {
	if quantity <= 0 {
		_, err := s.RemoveFromCart(ctx, id)
		return nil, err
	}

	item := &domain.CartItem{ID: id, Quantity: quantity}
	err := s.db.QueryRowContext(ctx, `
		UPDATE cart_items SET quantity = $1
		WHERE id = $2
		RETURNING session_id, product_id, created_at
	`, quantity, id).Scan(&item.SessionID, &item.ProductID, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *PostgresStore) RemoveFromCart(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *PostgresStore) ClearCart(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *PostgresStore) GetAdminUser(ctx context.Context, email string) (*domain.AdminUser, error) {
	a := &domain.AdminUser{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, password, name, created_at
		FROM admin_users
		WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.Password, &a.Name, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
