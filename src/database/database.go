package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/tradepulse/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateUserTable()
	migrateTradeTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		auth_provider TEXT DEFAULT 'local',
		is_email_verified BOOLEAN DEFAULT FALSE,
		email_verification_token TEXT,
		email_verification_token_expires_at TIMESTAMP,
		password_reset_token TEXT,
		password_reset_token_expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		symbol TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		exit_date TEXT NOT NULL,
		type TEXT NOT NULL,
		setup TEXT,
		entry_price REAL,
		exit_price REAL,
		stop_loss REAL,
		quantity REAL,
		pnl REAL,
		r_multiple REAL,
		status TEXT NOT NULL,
		mistakes TEXT,
		notes TEXT,
		screenshot_url TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS backtest_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		symbol TEXT,
		strategy TEXT,
		start_date TEXT,
		initial_balance REAL,
		trades TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// tableColumns returns the existing column names of a table, or nil when the
// table does not exist yet (creation will bring the full schema).
func tableColumns(table string) map[string]bool {
	var name string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	if err != nil {
		if err != sql.ErrNoRows && logger.L != nil {
			logger.L.Error("Error checking for table", "table", table, "error", err)
		}
		return nil
	}

	rows, err := DB.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema", "table", table, "error", err)
		}
		return nil
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid, pk, notnullVal int
		var colName, dataType string
		var dfltValue interface{}
		if err := rows.Scan(&cid, &colName, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info", "table", table, "error", err)
			}
			return nil
		}
		columns[colName] = true
	}
	if err := rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info", "table", table, "error", err)
		}
		return nil
	}
	return columns
}

func addColumnIfMissing(columns map[string]bool, table, column, definition string) {
	if columns[column] {
		return
	}
	_, err := DB.Exec("ALTER TABLE " + table + " ADD COLUMN " + column + " " + definition)
	if err != nil {
		logger.L.Error("Error adding column", "table", table, "column", column, "error", err)
		return
	}
	logger.L.Info("Added column", "table", table, "column", column)
}

func migrateUserTable() {
	columns := tableColumns("users")
	if columns == nil {
		return
	}
	addColumnIfMissing(columns, "users", "email", "TEXT NOT NULL DEFAULT ''")
	addColumnIfMissing(columns, "users", "auth_provider", "TEXT DEFAULT 'local'")
	addColumnIfMissing(columns, "users", "is_email_verified", "BOOLEAN DEFAULT FALSE")
	addColumnIfMissing(columns, "users", "email_verification_token", "TEXT")
	addColumnIfMissing(columns, "users", "email_verification_token_expires_at", "TIMESTAMP")
	addColumnIfMissing(columns, "users", "password_reset_token", "TEXT")
	addColumnIfMissing(columns, "users", "password_reset_token_expires_at", "TIMESTAMP")
	addColumnIfMissing(columns, "users", "created_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
	addColumnIfMissing(columns, "users", "updated_at", "TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
}

func migrateTradeTable() {
	columns := tableColumns("trades")
	if columns == nil {
		return
	}
	addColumnIfMissing(columns, "trades", "stop_loss", "REAL")
	addColumnIfMissing(columns, "trades", "mistakes", "TEXT")
	addColumnIfMissing(columns, "trades", "notes", "TEXT")
	addColumnIfMissing(columns, "trades", "screenshot_url", "TEXT")
}
