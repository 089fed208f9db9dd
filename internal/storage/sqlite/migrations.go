package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database.
// Money columns are TEXT holding canonical decimal strings, never REAL:
// the engine's contract forbids binary floating point for money.
const schema = `
CREATE TABLE IF NOT EXISTS receipts (
    id TEXT PRIMARY KEY,
    merchant TEXT NOT NULL DEFAULT '',
    date INTEGER,
    subtotal TEXT,
    display_subtotal TEXT,
    tax TEXT,
    tip TEXT,
    gratuity TEXT,
    total TEXT,
    tax_included INTEGER NOT NULL DEFAULT 0,
    is_receipt INTEGER NOT NULL DEFAULT 1,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS line_items (
    id TEXT PRIMARY KEY,
    receipt_id TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    quantity TEXT NOT NULL,
    price_per_item TEXT NOT NULL,
    total_price TEXT NOT NULL,
    deleted_at INTEGER,
    position INTEGER NOT NULL,
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS assignments (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL,
    person_id TEXT NOT NULL DEFAULT '',
    person_name TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL DEFAULT 0,
    deleted_at INTEGER,
    FOREIGN KEY (item_id) REFERENCES line_items(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS people (
    receipt_id TEXT NOT NULL,
    person_id TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    PRIMARY KEY (receipt_id, person_id, name),
    FOREIGN KEY (receipt_id) REFERENCES receipts(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_line_items_receipt_id ON line_items(receipt_id);
CREATE INDEX IF NOT EXISTS idx_assignments_item_id ON assignments(item_id);
CREATE INDEX IF NOT EXISTS idx_people_receipt_id ON people(receipt_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
