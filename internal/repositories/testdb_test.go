package repositories

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// The repositories stick to the SQL subset both lib/pq and go-sqlite3
// understand ($N placeholders, RETURNING, explicit timestamps), so the
// tests run against an in-memory SQLite database with the same tables
// the Postgres migrations create.
const testSchema = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	price INTEGER NOT NULL CHECK (price >= 0),
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE carts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE cart_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cart_id INTEGER NOT NULL REFERENCES carts(id) ON DELETE CASCADE,
	movie_id INTEGER NOT NULL REFERENCES movies(id) ON DELETE CASCADE,
	added_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (cart_id, movie_id)
);

CREATE TABLE orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	total_amount INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE order_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	movie_id INTEGER NOT NULL,
	price_at_order INTEGER NOT NULL,
	UNIQUE (order_id, movie_id)
);

CREATE TABLE pending_movie_holds (
	order_id INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL,
	movie_id INTEGER NOT NULL,
	PRIMARY KEY (order_id, movie_id),
	UNIQUE (user_id, movie_id)
);

CREATE TABLE payments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	order_id INTEGER NOT NULL REFERENCES orders(id),
	status TEXT NOT NULL,
	amount INTEGER NOT NULL,
	external_payment_id TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE payment_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	payment_id INTEGER NOT NULL REFERENCES payments(id) ON DELETE CASCADE,
	order_item_id INTEGER NOT NULL,
	price_at_payment INTEGER NOT NULL
);

CREATE TABLE purchased_movies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	movie_id INTEGER NOT NULL,
	purchased_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, movie_id)
);
`

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_fk=1")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// :memory: gives every connection its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) int {
	t.Helper()

	var id int
	err := db.QueryRow("INSERT INTO users (email) VALUES ($1) RETURNING id", email).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return id
}

func createTestMovie(t *testing.T, db *sql.DB, title string, price int64) int {
	t.Helper()

	var id int
	err := db.QueryRow("INSERT INTO movies (title, price) VALUES ($1, $2) RETURNING id", title, price).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test movie: %v", err)
	}
	return id
}
