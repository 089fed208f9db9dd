// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/fairsplit/fairsplit/internal/models"
	"github.com/fairsplit/fairsplit/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateReceipt persists a new receipt to the database.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, r *models.Receipt) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertReceipt(ctx, tx, r); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt by ID, including all items, assignments
// and people.
func (s *SQLiteStore) GetReceipt(ctx context.Context, id string) (*models.Receipt, error) {
	r := &models.Receipt{}
	var (
		date                                         sql.NullInt64
		subtotal, display, tax, tip, gratuity, total sql.NullString
		taxIncluded, isReceipt                       int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, merchant, date, subtotal, display_subtotal, tax, tip, gratuity, total,
		        tax_included, is_receipt, created_at
		 FROM receipts WHERE id = ?`, id,
	).Scan(&r.ID, &r.Merchant, &date, &subtotal, &display, &tax, &tip, &gratuity, &total,
		&taxIncluded, &isReceipt, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	if date.Valid {
		d := time.Unix(date.Int64, 0).UTC()
		r.Date = &d
	}
	r.TaxIncludedInItems = taxIncluded != 0
	r.IsReceipt = isReceipt != 0
	if r.Subtotal, err = scanAmount(subtotal); err != nil {
		return nil, err
	}
	if r.DisplaySubtotal, err = scanAmount(display); err != nil {
		return nil, err
	}
	if r.Tax, err = scanAmount(tax); err != nil {
		return nil, err
	}
	if r.Tip, err = scanAmount(tip); err != nil {
		return nil, err
	}
	if r.Gratuity, err = scanAmount(gratuity); err != nil {
		return nil, err
	}
	if r.Total, err = scanAmount(total); err != nil {
		return nil, err
	}

	if r.People, err = s.getPeople(ctx, id); err != nil {
		return nil, err
	}
	if r.Items, err = s.getItems(ctx, id); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateReceipt replaces an existing receipt and its dependent rows.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, r *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", r.ID)
	if err != nil {
		return fmt.Errorf("failed to replace receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to replace receipt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, r.ID)
	}

	if r.CreatedAt == 0 {
		r.CreatedAt = time.Now().Unix()
	}
	if err := insertReceipt(ctx, tx, r); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteReceipt removes a receipt; dependent rows cascade.
func (s *SQLiteStore) DeleteReceipt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM receipts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}

// ListReceipts returns all receipts, newest first, without items or people.
func (s *SQLiteStore) ListReceipts(ctx context.Context) ([]models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, merchant, date, total, tax_included, is_receipt, created_at
		 FROM receipts ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []models.Receipt
	for rows.Next() {
		var (
			r           models.Receipt
			date        sql.NullInt64
			total       sql.NullString
			taxIncluded int
			isReceipt   int
		)
		if err := rows.Scan(&r.ID, &r.Merchant, &date, &total, &taxIncluded, &isReceipt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		if date.Valid {
			d := time.Unix(date.Int64, 0).UTC()
			r.Date = &d
		}
		if r.Total, err = scanAmount(total); err != nil {
			return nil, err
		}
		r.TaxIncludedInItems = taxIncluded != 0
		r.IsReceipt = isReceipt != 0
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

func insertReceipt(ctx context.Context, tx *sql.Tx, r *models.Receipt) error {
	var date sql.NullInt64
	if r.Date != nil {
		date = sql.NullInt64{Int64: r.Date.Unix(), Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO receipts (id, merchant, date, subtotal, display_subtotal, tax, tip, gratuity,
		                       total, tax_included, is_receipt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Merchant, date,
		amountString(r.Subtotal), amountString(r.DisplaySubtotal), amountString(r.Tax),
		amountString(r.Tip), amountString(r.Gratuity), amountString(r.Total),
		boolInt(r.TaxIncludedInItems), boolInt(r.IsReceipt), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	for pos, p := range r.People {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO people (receipt_id, person_id, name, position) VALUES (?, ?, ?, ?)",
			r.ID, p.ID, p.Name, pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for pos := range r.Items {
		item := &r.Items[pos]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO line_items (id, receipt_id, name, quantity, price_per_item, total_price, deleted_at, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, r.ID, item.Name, item.Quantity.String(), item.PricePerItem.String(),
			item.TotalPrice.String(), nullInt(item.DeletedAt), pos,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}

		for i := range item.Assignments {
			a := &item.Assignments[i]
			if a.ID == "" {
				a.ID = uuid.New().String()
			}
			_, err = tx.ExecContext(ctx,
				`INSERT INTO assignments (id, item_id, person_id, person_name, created_at, deleted_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				a.ID, item.ID, a.Person.ID, a.Person.Name, a.CreatedAt, nullInt(a.DeletedAt),
			)
			if err != nil {
				return fmt.Errorf("failed to insert assignment: %w", err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) getPeople(ctx context.Context, receiptID string) ([]models.Person, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT person_id, name FROM people WHERE receipt_id = ? ORDER BY position", receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	return people, rows.Err()
}

func (s *SQLiteStore) getItems(ctx context.Context, receiptID string) ([]models.LineItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, quantity, price_per_item, total_price, deleted_at
		 FROM line_items WHERE receipt_id = ? ORDER BY position`, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	var items []models.LineItem
	for rows.Next() {
		var (
			item                   models.LineItem
			quantity, price, total string
			deleted                sql.NullInt64
		)
		if err := rows.Scan(&item.ID, &item.Name, &quantity, &price, &total, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("corrupt quantity for item %s: %w", item.ID, err)
		}
		if item.PricePerItem, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("corrupt price for item %s: %w", item.ID, err)
		}
		if item.TotalPrice, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("corrupt total for item %s: %w", item.ID, err)
		}
		if deleted.Valid {
			item.DeletedAt = &deleted.Int64
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].Assignments, err = s.getAssignments(ctx, items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *SQLiteStore) getAssignments(ctx context.Context, itemID string) ([]models.Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, person_id, person_name, created_at, deleted_at
		 FROM assignments WHERE item_id = ? ORDER BY created_at, id`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var (
			a       models.Assignment
			deleted sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.Person.ID, &a.Person.Name, &a.CreatedAt, &deleted); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.ItemID = itemID
		if deleted.Valid {
			a.DeletedAt = &deleted.Int64
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func amountString(d *decimal.Decimal) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func scanAmount(s sql.NullString) (*decimal.Decimal, error) {
	if !s.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt money column %q: %w", s.String, err)
	}
	return &d, nil
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
