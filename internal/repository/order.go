package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brmntiosa/Ecommerce-Arum/internal/domain/order"
)

const (
	upsertBuyerSQL = `INSERT INTO buyers (
			id, username, first_name, last_name, address1, address2,
			province_id, city_id, postcode, phone, email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			address1 = EXCLUDED.address1,
			address2 = EXCLUDED.address2,
			province_id = EXCLUDED.province_id,
			city_id = EXCLUDED.city_id,
			postcode = EXCLUDED.postcode,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			updated_at = now()`

	insertOrderSQL = `INSERT INTO orders (
			id, code, buyer_id, status, payment_status, order_date, payment_due,
			base_total_price, shipping_cost, discount_amount, discount_percent, grand_total,
			customer_first_name, customer_last_name, customer_address1, customer_address2,
			customer_phone, customer_email, customer_province_id, customer_city_id,
			customer_postcode, note, shipping_courier, shipping_service_name
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23, $24
		)`

	insertOrderItemSQL = `INSERT INTO order_items (
			order_id, product_id, name, qty, base_price, base_total,
			discount_amount, discount_percent, sub_total, weight_grams
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	// The quantity guard makes the check-then-write atomic: a concurrent sale
	// that exhausted stock leaves RowsAffected at zero instead of a negative
	// quantity.
	decrementStockSQL = `UPDATE products SET quantity = quantity - $2
		WHERE id = $1 AND quantity >= $2`

	insertShipmentSQL = `INSERT INTO shipments (
			order_id, status, total_qty, total_weight,
			first_name, last_name, address1, address2, phone, email,
			province_id, city_id, postcode
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	setPaymentSessionSQL = `UPDATE orders SET payment_token = $2, payment_url = $3
		WHERE id = $1`

	listOrdersByBuyerSQL = `SELECT id, code, buyer_id, status, payment_status, order_date, payment_due,
			base_total_price, shipping_cost, discount_amount, discount_percent, grand_total,
			customer_first_name, customer_last_name, customer_address1, customer_address2,
			customer_phone, customer_email, customer_province_id, customer_city_id,
			customer_postcode, note, shipping_courier, shipping_service_name,
			payment_token, payment_url
		FROM orders WHERE buyer_id = $1
		ORDER BY order_date DESC LIMIT $2 OFFSET $3`

	getOrderByCodeSQL = `SELECT id, code, buyer_id, status, payment_status, order_date, payment_due,
			base_total_price, shipping_cost, discount_amount, discount_percent, grand_total,
			customer_first_name, customer_last_name, customer_address1, customer_address2,
			customer_phone, customer_email, customer_province_id, customer_city_id,
			customer_postcode, note, shipping_courier, shipping_service_name,
			payment_token, payment_url
		FROM orders WHERE buyer_id = $1 AND code = $2`

	getOrderItemsSQL = `SELECT product_id, name, qty, base_price, base_total,
			discount_amount, discount_percent, sub_total, weight_grams
		FROM order_items WHERE order_id = $1 ORDER BY id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateCheckout persists the whole checkout in one transaction: buyer
// profile refresh, order row, one item row plus guarded stock decrement per
// line, and the shipment. Any failure rolls everything back.
func (r *OrderRepository) CreateCheckout(ctx context.Context, chk *order.Checkout) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin checkout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	b := chk.Buyer
	if _, err := tx.Exec(ctx, upsertBuyerSQL,
		b.ID, b.Username, b.FirstName, b.LastName, b.Address1, b.Address2,
		b.ProvinceID, b.CityID, b.Postcode, b.Phone, b.Email,
	); err != nil {
		return fmt.Errorf("upserting buyer %q: %w", b.ID, err)
	}

	o := chk.Order
	if _, err := tx.Exec(ctx, insertOrderSQL,
		o.ID, o.Code, o.BuyerID, o.Status, o.PaymentStatus, o.OrderDate, o.PaymentDue,
		o.BaseTotalPrice, o.ShippingCost, o.DiscountAmount, o.DiscountPercent, o.GrandTotal,
		o.Customer.FirstName, o.Customer.LastName, o.Customer.Address1, o.Customer.Address2,
		o.Customer.Phone, o.Customer.Email, o.Customer.ProvinceID, o.Customer.CityID,
		o.Customer.Postcode, o.Note, o.ShippingCourier, o.ShippingService,
	); err != nil {
		if isUniqueViolation(err) {
			return order.ErrDuplicateCode
		}
		return fmt.Errorf("creating order %q: %w", o.Code, err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, insertOrderItemSQL,
			o.ID, item.ProductID, item.Name, item.Quantity, item.BasePrice, item.BaseTotal,
			item.DiscountAmount, item.DiscountPercent, item.SubTotal, item.WeightGrams,
		); err != nil {
			return fmt.Errorf("creating order item %q: %w", item.ProductID, err)
		}

		tag, err := tx.Exec(ctx, decrementStockSQL, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for %q: %w", item.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return &order.StockConflictError{ProductID: item.ProductID}
		}
	}

	s := chk.Shipment
	if _, err := tx.Exec(ctx, insertShipmentSQL,
		s.OrderID, s.Status, s.TotalQuantity, s.TotalWeight,
		s.Address.FirstName, s.Address.LastName, s.Address.Address1, s.Address.Address2,
		s.Address.Phone, s.Address.Email,
		s.Address.ProvinceID, s.Address.CityID, s.Address.Postcode,
	); err != nil {
		return fmt.Errorf("creating shipment for order %q: %w", o.Code, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout for order %q: %w", o.Code, err)
	}
	return nil
}

// SetPaymentSession stores the gateway token and redirect URL on an existing
// order row.
func (r *OrderRepository) SetPaymentSession(ctx context.Context, orderID, token, redirectURL string) error {
	tag, err := r.pool.Exec(ctx, setPaymentSessionSQL, orderID, token, redirectURL)
	if err != nil {
		return fmt.Errorf("setting payment session for order %q: %w", orderID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListByBuyer returns the buyer's orders newest first, without items.
func (r *OrderRepository) ListByBuyer(ctx context.Context, buyerID string, limit, offset int) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByBuyerSQL, buyerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing orders for buyer %q: %w", buyerID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByCode returns one of the buyer's orders with its items.
func (r *OrderRepository) GetByCode(ctx context.Context, buyerID, code string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByCodeSQL, buyerID, code)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", code, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", code, err)
	}

	itemRows, err := r.pool.Query(ctx, getOrderItemsSQL, o.ID)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", code, err)
	}
	items, err := pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %q: %w", code, err)
	}
	o.Items = items

	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o     order.Order
		token *string
		url   *string
	)
	err := row.Scan(
		&o.ID, &o.Code, &o.BuyerID, &o.Status, &o.PaymentStatus, &o.OrderDate, &o.PaymentDue,
		&o.BaseTotalPrice, &o.ShippingCost, &o.DiscountAmount, &o.DiscountPercent, &o.GrandTotal,
		&o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Address1, &o.Customer.Address2,
		&o.Customer.Phone, &o.Customer.Email, &o.Customer.ProvinceID, &o.Customer.CityID,
		&o.Customer.Postcode, &o.Note, &o.ShippingCourier, &o.ShippingService,
		&token, &url,
	)
	if token != nil {
		o.PaymentToken = *token
	}
	if url != nil {
		o.PaymentURL = *url
	}
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(
		&it.ProductID, &it.Name, &it.Quantity, &it.BasePrice, &it.BaseTotal,
		&it.DiscountAmount, &it.DiscountPercent, &it.SubTotal, &it.WeightGrams,
	)
	return it, err
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
