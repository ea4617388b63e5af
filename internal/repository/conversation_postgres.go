package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

// ConversationPostgres persists per-user histories in Postgres. The same
// FIFO bound as the in-memory store is enforced by trimming inside the
// append transaction.
type ConversationPostgres struct {
	db       *pgxpool.Pool
	maxTurns int
}

// NewConversationPostgres creates a Postgres-backed store bounded at
// maxTurns per user.
func NewConversationPostgres(db *pgxpool.Pool, maxTurns int) *ConversationPostgres {
	if maxTurns < 1 {
		maxTurns = entity.DefaultMaxTurns
	}
	return &ConversationPostgres{db: db, maxTurns: maxTurns}
}

// Get returns the user's most recent turns in chronological order.
func (r *ConversationPostgres) Get(ctx context.Context, userID string) (entity.History, error) {
	rows, err := r.db.Query(ctx, `
		SELECT question, answer, created_at
		FROM (
			SELECT question, answer, created_at, seq
			FROM conversation_turns
			WHERE user_id = $1
			ORDER BY seq DESC
			LIMIT $2
		) recent
		ORDER BY seq ASC`,
		userID, r.maxTurns,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation turns: %w", err)
	}
	defer rows.Close()

	history := entity.History{}
	for rows.Next() {
		var turn entity.Turn
		if err := rows.Scan(&turn.Question, &turn.Answer, &turn.AskedAt); err != nil {
			return nil, fmt.Errorf("scan conversation turn: %w", err)
		}
		history = append(history, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation turns: %w", err)
	}

	return history, nil
}

// Append inserts the turn and trims the user's history to the bound.
func (r *ConversationPostgres) Append(ctx context.Context, userID string, turn entity.Turn) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO conversation_turns (id, user_id, question, answer, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), userID, turn.Question, turn.Answer, turn.AskedAt,
	)
	if err != nil {
		return fmt.Errorf("insert conversation turn: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM conversation_turns
		WHERE user_id = $1
		  AND seq NOT IN (
			SELECT seq FROM conversation_turns
			WHERE user_id = $1
			ORDER BY seq DESC
			LIMIT $2
		  )`,
		userID, r.maxTurns,
	)
	if err != nil {
		return fmt.Errorf("trim conversation turns: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append transaction: %w", err)
	}
	return nil
}

// Clear deletes every turn of the user.
func (r *ConversationPostgres) Clear(ctx context.Context, userID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM conversation_turns WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear conversation turns: %w", err)
	}
	return nil
}
