package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vportella/tradeyard/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	account_id   TEXT PRIMARY KEY,
	room         TEXT NOT NULL,
	username     TEXT NOT NULL,
	cash         REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	created_at   TIMESTAMP NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS accounts_room_username
	ON accounts (room, LOWER(username));

CREATE TABLE IF NOT EXISTS positions (
	account_id   TEXT NOT NULL,
	symbol       TEXT NOT NULL,
	qty          REAL NOT NULL,
	avg_entry    REAL NOT NULL,
	realized_pnl REAL NOT NULL,
	PRIMARY KEY (account_id, symbol)
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id    TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL,
	room        TEXT NOT NULL,
	symbol      TEXT NOT NULL,
	side        TEXT NOT NULL,
	qty         REAL NOT NULL,
	fill_price  REAL NOT NULL,
	fee_paid    REAL NOT NULL,
	executed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS trades_account_time
	ON trades (account_id, executed_at);

CREATE TABLE IF NOT EXISTS events (
	event_id   TEXT PRIMARY KEY,
	room       TEXT NOT NULL,
	event_type TEXT NOT NULL,
	symbol     TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS leaderboard_snapshots (
	room        TEXT NOT NULL,
	account_id  TEXT NOT NULL,
	username    TEXT NOT NULL,
	rank        INTEGER NOT NULL,
	equity      REAL NOT NULL,
	computed_at TIMESTAMP NOT NULL
);
`

// SQLiteStore persists the ledger so a server restart does not wipe the
// class's money. All order-flow writes go through ApplyFillTx so a trade
// and its ledger effects land atomically.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, applies
// the schema, and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// The driver is single-writer; serialize access at the pool level
	// rather than surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveAccount inserts or updates an account row.
func (s *SQLiteStore) SaveAccount(ctx context.Context, a *domain.Account) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (account_id, room, username, cash, realized_pnl, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (account_id) DO UPDATE SET
			cash = excluded.cash,
			realized_pnl = excluded.realized_pnl`,
		a.ID, a.Room, a.Username, a.Cash, a.RealizedPnl, a.CreatedAt)
	return err
}

// SavePosition inserts or updates a position row.
func (s *SQLiteStore) SavePosition(ctx context.Context, p *domain.Position) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO positions (account_id, symbol, qty, avg_entry, realized_pnl)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (account_id, symbol) DO UPDATE SET
			qty = excluded.qty,
			avg_entry = excluded.avg_entry,
			realized_pnl = excluded.realized_pnl`,
		p.AccountID, p.Symbol, p.Qty, p.AvgEntry, p.RealizedPnl)
	return err
}

// ApplyFillTx writes a trade and the post-fill account and position state
// in one transaction. The caller passes the ledger values it is about to
// commit in memory; if this returns an error nothing was persisted and
// the in-memory commit must not happen.
func (s *SQLiteStore) ApplyFillTx(ctx context.Context, t *domain.Trade, cash, realizedPnl float64, p *domain.Position) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fill tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO trades (trade_id, account_id, room, symbol, side, qty, fill_price, fee_paid, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.AccountID, t.Room, t.Symbol, string(t.Side), t.Qty, t.FillPrice, t.FeePaid, t.ExecutedAt); err != nil {
		return fmt.Errorf("insert trade: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts SET cash = ?, realized_pnl = ? WHERE account_id = ?`,
		cash, realizedPnl, t.AccountID); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO positions (account_id, symbol, qty, avg_entry, realized_pnl)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (account_id, symbol) DO UPDATE SET
			qty = excluded.qty,
			avg_entry = excluded.avg_entry,
			realized_pnl = excluded.realized_pnl`,
		p.AccountID, p.Symbol, p.Qty, p.AvgEntry, p.RealizedPnl); err != nil {
		return fmt.Errorf("update position: %w", err)
	}
	return tx.Commit()
}

// InsertEvent appends an event row.
func (s *SQLiteStore) InsertEvent(ctx context.Context, e domain.EventRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (event_id, room, event_type, symbol, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Room, e.EventType, e.Symbol, e.Message, e.CreatedAt)
	return err
}

// InsertLeaderboard records a computed leaderboard snapshot for a room.
func (s *SQLiteStore) InsertLeaderboard(ctx context.Context, room string, rows []domain.LeaderboardRow, computedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin leaderboard tx: %w", err)
	}
	defer tx.Rollback()

	for i, r := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO leaderboard_snapshots (room, account_id, username, rank, equity, computed_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			room, r.AccountID, r.Username, i+1, r.Equity, computedAt); err != nil {
			return fmt.Errorf("insert leaderboard row: %w", err)
		}
	}
	return tx.Commit()
}

// LoadedState is the persisted ledger read back at boot.
type LoadedState struct {
	Accounts  []*domain.Account
	Positions []*domain.Position
	Trades    []*domain.Trade
}

// LoadState reads accounts, positions, and trades for warm-starting the
// in-memory stores after a restart.
func (s *SQLiteStore) LoadState(ctx context.Context) (*LoadedState, error) {
	state := &LoadedState{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, room, username, cash, realized_pnl, created_at FROM accounts`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	for rows.Next() {
		a := &domain.Account{}
		if err := rows.Scan(&a.ID, &a.Room, &a.Username, &a.Cash, &a.RealizedPnl, &a.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan account: %w", err)
		}
		state.Accounts = append(state.Accounts, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT account_id, symbol, qty, avg_entry, realized_pnl FROM positions`)
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	for rows.Next() {
		p := &domain.Position{}
		if err := rows.Scan(&p.AccountID, &p.Symbol, &p.Qty, &p.AvgEntry, &p.RealizedPnl); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan position: %w", err)
		}
		state.Positions = append(state.Positions, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT trade_id, account_id, room, symbol, side, qty, fill_price, fee_paid, executed_at
		FROM trades ORDER BY executed_at`)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	for rows.Next() {
		t := &domain.Trade{}
		var side string
		if err := rows.Scan(&t.TradeID, &t.AccountID, &t.Room, &t.Symbol, &side, &t.Qty, &t.FillPrice, &t.FeePaid, &t.ExecutedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Side = domain.Side(side)
		state.Trades = append(state.Trades, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return state, nil
}
