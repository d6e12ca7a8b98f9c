package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"productcatalog/domain"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

const (
	sqliteDriver   = "sqlite"
	postgresDriver = "pgx"

	// orderDateLayout is fixed width so text ordering matches time ordering.
	orderDateLayout = "2006-01-02T15:04:05.000000000Z07:00"

	// postgresConnectTimeout bounds the retries while the database comes up.
	postgresConnectTimeout = 30 * time.Second
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS products (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    stock BIGINT NOT NULL,
    price TEXT NOT NULL,
    active BOOLEAN NOT NULL,
    category_id TEXT
);

CREATE TABLE IF NOT EXISTS orders (
    id TEXT PRIMARY KEY,
    customer_name TEXT NOT NULL,
    order_date TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
    id TEXT PRIMARY KEY,
    order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    product_id TEXT NOT NULL,
    product_name TEXT NOT NULL,
    unit_price TEXT NOT NULL,
    quantity BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id);
`

// SQLStore implements Backend on database/sql. Prices are stored as decimal
// strings so no precision is lost in either dialect.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// compile-time assertion
var _ Backend = (*SQLStore)(nil)

// OpenSQLite opens (or creates) a sqlite database at path; ":memory:" is accepted.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, err
	}

	// A single connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return newSQLStore(db, dialectSQLite)
}

// OpenPostgres connects to dsn, retrying with exponential backoff until the
// server answers or postgresConnectTimeout elapses.
func OpenPostgres(dsn string) (*SQLStore, error) {
	db, err := sql.Open(postgresDriver, dsn)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	ping := func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	}
	bo := backoff.NewExponentialBackOff()
	if _, err := backoff.Retry(ctx, ping, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(postgresConnectTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return newSQLStore(db, dialectPostgres)
}

func newSQLStore(db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTxKey struct{}

type activeTx struct {
	store *SQLStore
	tx    *sql.Tx
}

// querier returns the transaction bound to ctx by InTx, or the database.
func (s *SQLStore) querier(ctx context.Context) querier {
	if at, ok := ctx.Value(sqlTxKey{}).(*activeTx); ok && at.store == s {
		return at.tx
	}
	return s.db
}

// InTx runs fn inside a database transaction. Nested calls join the outer transaction.
func (s *SQLStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if at, ok := ctx.Value(sqlTxKey{}).(*activeTx); ok && at.store == s {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, sqlTxKey{}, &activeTx{store: s, tx: tx})); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// rebind rewrites '?' placeholders to '$n' for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.querier(ctx).ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) exists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	var n int
	err := s.querier(ctx).QueryRowContext(ctx,
		s.rebind("SELECT COUNT(1) FROM "+table+" WHERE id = ?"), id.String()).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// requireAffected maps an UPDATE/DELETE that touched nothing to ErrRecordNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// Product operations

const productColumns = "id, name, description, stock, price, active, category_id"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.ProductSnapshot, error) {
	var (
		p        domain.ProductSnapshot
		id       string
		price    string
		category sql.NullString
	)
	if err := row.Scan(&id, &p.Name, &p.Description, &p.Stock, &price, &p.Active, &category); err != nil {
		return domain.ProductSnapshot{}, err
	}
	var err error
	if p.ID, err = uuid.Parse(id); err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("corrupt product id %q: %w", id, err)
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("corrupt price for product %s: %w", id, err)
	}
	if category.Valid {
		cid, err := uuid.Parse(category.String)
		if err != nil {
			return domain.ProductSnapshot{}, fmt.Errorf("corrupt category id for product %s: %w", id, err)
		}
		p.CategoryID = &cid
	}
	return p, nil
}

func nullableID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func (s *SQLStore) GetProduct(ctx context.Context, id uuid.UUID) (domain.ProductSnapshot, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		s.rebind("SELECT "+productColumns+" FROM products WHERE id = ?"), id.String())
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProductSnapshot{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.ProductSnapshot{}, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

func (s *SQLStore) ListProducts(ctx context.Context) ([]domain.ProductSnapshot, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ProductSnapshot, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertProduct(ctx context.Context, p domain.ProductSnapshot) error {
	_, err := s.exec(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID.String(), p.Name, p.Description, p.Stock, p.Price.String(), p.Active, nullableID(p.CategoryID))
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *SQLStore) ReplaceProduct(ctx context.Context, p domain.ProductSnapshot) error {
	res, err := s.exec(ctx, `
		UPDATE products
		SET name = ?, description = ?, stock = ?, price = ?, active = ?, category_id = ?
		WHERE id = ?`,
		p.Name, p.Description, p.Stock, p.Price.String(), p.Active, nullableID(p.CategoryID), p.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, "DELETE FROM products WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLStore) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists(ctx, "products", id)
}

// Category operations

func scanCategory(row rowScanner) (domain.CategorySnapshot, error) {
	var (
		c  domain.CategorySnapshot
		id string
	)
	if err := row.Scan(&id, &c.Name, &c.Description); err != nil {
		return domain.CategorySnapshot{}, err
	}
	var err error
	if c.ID, err = uuid.Parse(id); err != nil {
		return domain.CategorySnapshot{}, fmt.Errorf("corrupt category id %q: %w", id, err)
	}
	return c, nil
}

func (s *SQLStore) GetCategory(ctx context.Context, id uuid.UUID) (domain.CategorySnapshot, error) {
	row := s.querier(ctx).QueryRowContext(ctx,
		s.rebind("SELECT id, name, description FROM categories WHERE id = ?"), id.String())
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CategorySnapshot{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.CategorySnapshot{}, fmt.Errorf("failed to get category: %w", err)
	}
	return c, nil
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]domain.CategorySnapshot, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, "SELECT id, name, description FROM categories ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	out := make([]domain.CategorySnapshot, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertCategory(ctx context.Context, c domain.CategorySnapshot) error {
	_, err := s.exec(ctx, "INSERT INTO categories (id, name, description) VALUES (?, ?, ?)",
		c.ID.String(), c.Name, c.Description)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (s *SQLStore) ReplaceCategory(ctx context.Context, c domain.CategorySnapshot) error {
	res, err := s.exec(ctx, "UPDATE categories SET name = ?, description = ? WHERE id = ?",
		c.Name, c.Description, c.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, "DELETE FROM categories WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(res)
}

func (s *SQLStore) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists(ctx, "categories", id)
}

// Order operations

func (s *SQLStore) GetOrder(ctx context.Context, id uuid.UUID) (domain.OrderSnapshot, error) {
	var (
		o    domain.OrderSnapshot
		date string
	)
	err := s.querier(ctx).QueryRowContext(ctx,
		s.rebind("SELECT customer_name, order_date FROM orders WHERE id = ?"), id.String()).
		Scan(&o.CustomerName, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.OrderSnapshot{}, domain.ErrRecordNotFound
	}
	if err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("failed to get order: %w", err)
	}
	o.ID = id
	if o.OrderDate, err = time.Parse(time.RFC3339Nano, date); err != nil {
		return domain.OrderSnapshot{}, fmt.Errorf("corrupt order date for order %s: %w", id, err)
	}
	if o.Items, err = s.orderItems(ctx, id); err != nil {
		return domain.OrderSnapshot{}, err
	}
	return o, nil
}

func (s *SQLStore) orderItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItemSnapshot, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, s.rebind(`
		SELECT id, product_id, product_name, unit_price, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY position`), orderID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItemSnapshot, 0)
	for rows.Next() {
		var (
			it                 domain.OrderItemSnapshot
			id, product, price string
		)
		if err := rows.Scan(&id, &product, &it.ProductName, &price, &it.Quantity); err != nil {
			return nil, err
		}
		if it.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("corrupt order item id %q: %w", id, err)
		}
		if it.ProductID, err = uuid.Parse(product); err != nil {
			return nil, fmt.Errorf("corrupt product id %q in order %s: %w", product, orderID, err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("corrupt unit price in order %s: %w", orderID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLStore) ListOrders(ctx context.Context) ([]domain.OrderSnapshot, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, "SELECT id FROM orders ORDER BY order_date, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("corrupt order id %q: %w", id, err)
		}
		ids = append(ids, parsed)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// release the connection before issuing per-order queries
	rows.Close()

	out := make([]domain.OrderSnapshot, 0, len(ids))
	for _, id := range ids {
		o, err := s.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// InsertOrder writes the order row and every item row in one transaction.
func (s *SQLStore) InsertOrder(ctx context.Context, o domain.OrderSnapshot) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		_, err := s.exec(ctx, "INSERT INTO orders (id, customer_name, order_date) VALUES (?, ?, ?)",
			o.ID.String(), o.CustomerName, o.OrderDate.UTC().Format(orderDateLayout))
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}
		for i, it := range o.Items {
			_, err := s.exec(ctx, `
				INSERT INTO order_items (id, order_id, position, product_id, product_name, unit_price, quantity)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				it.ID.String(), o.ID.String(), i, it.ProductID.String(), it.ProductName, it.UnitPrice.String(), it.Quantity)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return s.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.exec(ctx, "DELETE FROM order_items WHERE order_id = ?", id.String()); err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		res, err := s.exec(ctx, "DELETE FROM orders WHERE id = ?", id.String())
		if err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return requireAffected(res)
	})
}

func (s *SQLStore) OrderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists(ctx, "orders", id)
}
