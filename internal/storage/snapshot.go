package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/YGO-Companion/internal/api"
)

// ErrNoSnapshot indicates no collection snapshot has been saved yet.
var ErrNoSnapshot = errors.New("no collection snapshot available")

// SnapshotCard is one collection row as persisted offline.
type SnapshotCard struct {
	CardID    uint
	Name      string
	CardType  string
	FrameType string
	Quantity  int
}

// Snapshot is the last persisted collection state.
type Snapshot struct {
	FetchedAt time.Time
	Cards     []SnapshotCard
}

// Age reports how long ago the snapshot was taken.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// SaveCollectionSnapshot replaces the stored snapshot with the given mirror.
// Rows with non-positive quantities are skipped; the server never reports
// them and the schema rejects them.
func (db *DB) SaveCollectionSnapshot(ctx context.Context, items []api.CollectionItem) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collection_snapshot_cards`); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO collection_snapshot_cards (card_id, name, card_type, frame_type, quantity)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		_, err := stmt.ExecContext(ctx,
			item.CardID, item.Card.Name, item.Card.Type, item.Card.FrameType, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot row for card %d: %w", item.CardID, err)
		}
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO collection_snapshot (id, fetched_at) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET fetched_at = excluded.fetched_at`, fetchedAt)
	if err != nil {
		return fmt.Errorf("failed to record snapshot time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LoadCollectionSnapshot returns the last saved snapshot, or ErrNoSnapshot if
// none has been taken.
func (db *DB) LoadCollectionSnapshot(ctx context.Context) (*Snapshot, error) {
	var fetchedAt string
	err := db.conn.QueryRowContext(ctx,
		`SELECT fetched_at FROM collection_snapshot WHERE id = 1`).Scan(&fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot time: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot time %q: %w", fetchedAt, err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT card_id, name, card_type, frame_type, quantity
		FROM collection_snapshot_cards
		ORDER BY name, card_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot rows: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	snapshot := &Snapshot{FetchedAt: ts, Cards: []SnapshotCard{}}
	for rows.Next() {
		var card SnapshotCard
		if err := rows.Scan(&card.CardID, &card.Name, &card.CardType, &card.FrameType, &card.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snapshot.Cards = append(snapshot.Cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}
	return snapshot, nil
}
