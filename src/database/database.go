package database

import (
	"database/sql"
	"fmt"
	stdlog "log"
	"strings"

	"github.com/username/claimfolio/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS companies (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'FINAL_USER',
	company_id INTEGER,
	address TEXT NOT NULL DEFAULT '',
	country TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(company_id) REFERENCES companies(id)
);

CREATE TABLE IF NOT EXISTS trade_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	company_id INTEGER,
	import_job_id TEXT,
	data_for TEXT,
	trade_date TEXT NOT NULL,
	account TEXT,
	account_name TEXT,
	account_type TEXT,
	account_number TEXT,
	activity TEXT NOT NULL,
	description TEXT,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	cost_per_stock TEXT NOT NULL,
	amount TEXT NOT NULL,
	notes TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY(user_id) REFERENCES users(id),
	FOREIGN KEY(company_id) REFERENCES companies(id)
);
CREATE INDEX IF NOT EXISTS idx_trade_records_user_symbol ON trade_records(user_id, symbol, trade_date);

CREATE TABLE IF NOT EXISTS lots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	lot_number INTEGER NOT NULL,
	name TEXT NOT NULL,
	symbol TEXT NOT NULL,
	start_date TEXT,
	end_date TEXT,
	quantity INTEGER NOT NULL,
	cost_per_stock TEXT NOT NULL,
	amount TEXT NOT NULL,
	activity TEXT NOT NULL,
	closed INTEGER NOT NULL DEFAULT 0,
	user_id INTEGER NOT NULL,
	company_id INTEGER,
	FOREIGN KEY(user_id) REFERENCES users(id),
	FOREIGN KEY(company_id) REFERENCES companies(id)
);
CREATE INDEX IF NOT EXISTS idx_lots_user_symbol ON lots(user_id, symbol, lot_number);
CREATE INDEX IF NOT EXISTS idx_lots_company_symbol ON lots(company_id, symbol, start_date);

CREATE TABLE IF NOT EXISTS claim_cases (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ticker_symbol TEXT NOT NULL,
	company_name TEXT NOT NULL DEFAULT '',
	exchange TEXT NOT NULL DEFAULT '',
	lawsuit_type TEXT NOT NULL DEFAULT '',
	law_firm TEXT NOT NULL DEFAULT '',
	case_docket_number TEXT NOT NULL DEFAULT '',
	company_id INTEGER,
	value_per_share TEXT NOT NULL,
	start_eligibility_date TEXT NOT NULL,
	final_eligibility_date TEXT NOT NULL,
	claim_status TEXT NOT NULL DEFAULT '',
	method_send_claim_format TEXT NOT NULL DEFAULT '',
	notification_email TEXT NOT NULL DEFAULT '',
	claimed INTEGER NOT NULL DEFAULT 0,
	FOREIGN KEY(company_id) REFERENCES companies(id)
);

CREATE TABLE IF NOT EXISTS claim_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol TEXT NOT NULL,
	company_name TEXT NOT NULL DEFAULT '',
	quantity_stock INTEGER NOT NULL,
	value_per_stock TEXT NOT NULL,
	amount TEXT NOT NULL,
	claim_date TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT '',
	user_id INTEGER NOT NULL,
	company_id INTEGER,
	lot_id INTEGER NOT NULL,
	case_id INTEGER NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id),
	FOREIGN KEY(company_id) REFERENCES companies(id),
	FOREIGN KEY(lot_id) REFERENCES lots(id),
	FOREIGN KEY(case_id) REFERENCES claim_cases(id)
);

CREATE TABLE IF NOT EXISTS import_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	import_job_id TEXT NOT NULL,
	status TEXT NOT NULL,
	row_number INTEGER NOT NULL,
	error_message TEXT,
	row_data TEXT,
	user_id INTEGER NOT NULL,
	created_at TEXT NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_import_logs_job ON import_logs(import_job_id);
`

// columnMigrations lists columns added after a table's first release.
var columnMigrations = map[string][]struct{ name, ddl string }{
	"claim_records": {
		{"batch_id", "ALTER TABLE claim_records ADD COLUMN batch_id TEXT NOT NULL DEFAULT ''"},
		{"format_sent", "ALTER TABLE claim_records ADD COLUMN format_sent INTEGER NOT NULL DEFAULT 0"},
	},
	"trade_records": {
		{"import_job_id", "ALTER TABLE trade_records ADD COLUMN import_job_id TEXT"},
	},
}

// Open opens (and creates when needed) the sqlite database at path and brings
// its schema up to date. ":memory:" is fine for tests.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000"}
	if !strings.Contains(path, ":memory:") {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	for table, columns := range columnMigrations {
		if err := migrateColumns(db, table, columns); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// InitDB opens the application database into DB. Startup cannot continue without it.
func InitDB(databasePath string) {
	logger.Get().Info("Checking database migrations", "databasePath", databasePath)
	db, err := Open(databasePath)
	if err != nil {
		logger.Get().Error("failed to initialise database", "error", err)
		stdlog.Fatalf("failed to initialise database: %v", err)
	}
	DB = db
	logger.Get().Info("Database tables ensured/created.")
}

func migrateColumns(db *sql.DB, table string, columns []struct{ name, ddl string }) error {
	existing, err := tableColumns(db, table)
	if err != nil {
		return err
	}
	for _, c := range columns {
		if existing[c.name] {
			continue
		}
		if _, err := db.Exec(c.ddl); err != nil {
			return fmt.Errorf("error adding '%s' column to '%s': %w", c.name, table, err)
		}
		logger.Get().Info("Added column", "table", table, "column", c.name)
	}
	return nil
}

func tableColumns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		return nil, fmt.Errorf("error querying table schema for '%s': %w", table, err)
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("error scanning column info for '%s': %w", table, err)
		}
		columnExists[name] = true
	}
	return columnExists, rows.Err()
}
