package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"stokcast/backend/internal/domain"
	"stokcast/backend/internal/store"
	"stokcast/backend/internal/xid"
)

//go:embed schema.sql
var schemaSQL string

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var productColumns = []string{
	"id", "name", "unit", "price", "current_stock", "safety_stock", "preferred_window", "supplier_id", "created_at",
}

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p        domain.Product
		supplier sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Unit, &p.Price, &p.CurrentStock, &p.SafetyStock, &p.PreferredWindow, &supplier, &p.CreatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.SupplierID = supplier.String
	return p, nil
}

func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		OrderBy("lower(name)", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	query, args, err := psql.Select(productColumns...).
		From("products").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}

	query, args, err := psql.Insert("products").
		Columns(productColumns...).
		Values(product.ID, product.Name, product.Unit, product.Price, product.CurrentStock,
			product.SafetyStock, product.PreferredWindow, nullableString(product.SupplierID), product.CreatedAt).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	query, args, err := psql.Update("products").
		SetMap(map[string]any{
			"name":             product.Name,
			"unit":             product.Unit,
			"price":            product.Price,
			"current_stock":    product.CurrentStock,
			"safety_stock":     product.SafetyStock,
			"preferred_window": product.PreferredWindow,
			"supplier_id":      nullableString(product.SupplierID),
			"updated_at":       squirrel.Expr("now()"),
		}).
		Where(squirrel.Eq{"id": product.ID}).
		ToSql()
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetProduct(ctx, product.ID)
}

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, contact, phone, address, created_at
		FROM suppliers
		ORDER BY lower(name) ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]domain.Supplier, 0, 16)
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name, &sup.Contact, &sup.Phone, &sup.Address, &sup.CreatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, sup)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func (s *Store) GetSupplier(ctx context.Context, id string) (*domain.Supplier, error) {
	var sup domain.Supplier
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, contact, phone, address, created_at
		FROM suppliers
		WHERE id = $1
	`, id).Scan(&sup.ID, &sup.Name, &sup.Contact, &sup.Phone, &sup.Address, &sup.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &sup, nil
}

func (s *Store) CreateSupplier(ctx context.Context, supplier domain.Supplier) (*domain.Supplier, error) {
	supplier.Name = strings.TrimSpace(supplier.Name)
	if supplier.Name == "" {
		return nil, store.ErrInvalidInput
	}
	if supplier.ID == "" {
		supplier.ID = xid.New("sup")
	}
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name, contact, phone, address, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, supplier.ID, supplier.Name, supplier.Contact, supplier.Phone, supplier.Address, supplier.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	created := supplier
	return &created, nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	if len(tx.Items) == 0 || tx.Date.IsZero() {
		return nil, store.ErrInvalidInput
	}
	if tx.ID == "" {
		tx.ID = xid.New("trx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}

	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() { _ = dbTx.Rollback() }()

	if _, err := dbTx.ExecContext(ctx, `
		INSERT INTO transactions (id, sale_date, note, total_amount, created_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, tx.ID, tx.Date, tx.Note, tx.TotalAmount, tx.CreatedBy, tx.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	insert := psql.Insert("transaction_items").
		Columns("transaction_id", "line_no", "product_id", "quantity", "price", "subtotal")
	for i, item := range tx.Items {
		insert = insert.Values(tx.ID, i+1, item.ProductID, item.Quantity, item.Price, item.Subtotal)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := dbTx.ExecContext(ctx, query, args...); err != nil {
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	created := tx
	return &created, nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	txs, err := s.queryTransactions(ctx, psql.Select().Where(squirrel.Eq{"t.id": id}), 0)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, store.ErrNotFound
	}
	return &txs[0], nil
}

func (s *Store) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]domain.Transaction, error) {
	conds := squirrel.And{}
	if !filter.From.IsZero() {
		conds = append(conds, squirrel.GtOrEq{"t.sale_date": filter.From})
	}
	if !filter.To.IsZero() {
		conds = append(conds, squirrel.Lt{"t.sale_date": filter.To})
	}
	if filter.ProductID != "" {
		conds = append(conds, squirrel.Expr(
			"EXISTS (SELECT 1 FROM transaction_items f WHERE f.transaction_id = t.id AND f.product_id = ?)",
			filter.ProductID,
		))
	}
	return s.queryTransactions(ctx, psql.Select().Where(conds), filter.Limit)
}

// queryTransactions loads headers matching where, then their lines. With a
// positive limit only the most recent headers are kept.
func (s *Store) queryTransactions(ctx context.Context, where squirrel.SelectBuilder, limit int) ([]domain.Transaction, error) {
	headers := where.
		Columns("t.id", "t.sale_date", "t.note", "t.total_amount", "t.created_by", "t.created_at").
		From("transactions t").
		OrderBy("t.sale_date DESC", "t.id DESC")
	if limit > 0 {
		headers = headers.Limit(uint64(limit))
	}
	query, args, err := headers.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	newestFirst := make([]domain.Transaction, 0, 128)
	ids := make([]string, 0, 128)
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.Date, &tx.Note, &tx.TotalAmount, &tx.CreatedBy, &tx.CreatedAt); err != nil {
			return nil, err
		}
		newestFirst = append(newestFirst, tx)
		ids = append(ids, tx.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Transaction{}, nil
	}

	items, err := s.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Transaction, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		tx := newestFirst[i]
		tx.Items = items[tx.ID]
		out = append(out, tx)
	}
	return out, nil
}

func (s *Store) loadItems(ctx context.Context, ids []string) (map[string][]domain.TransactionLine, error) {
	query, args, err := psql.Select("transaction_id", "product_id", "quantity", "price", "subtotal").
		From("transaction_items").
		Where("transaction_id = ANY(?)", ids).
		OrderBy("transaction_id", "line_no").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string][]domain.TransactionLine, len(ids))
	for rows.Next() {
		var (
			txID string
			line domain.TransactionLine
		)
		if err := rows.Scan(&txID, &line.ProductID, &line.Quantity, &line.Price, &line.Subtotal); err != nil {
			return nil, err
		}
		items[txID] = append(items[txID], line)
	}
	return items, rows.Err()
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("aud")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO app_users (username, password, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,true,$4,now())
	`, user.Username, user.Password, user.Role, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE app_users SET password = $2, updated_at = now()
		WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
