package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// TurnRepository persists answered question/reply turns.
type TurnRepository interface {
	CreateTurn(ctx context.Context, turn *entity.Turn) error
	GetConversationTurns(ctx context.Context, conversationID string) ([]*entity.Turn, error)
}

var _ TurnRepository = &TurnPostgres{}

// TurnPostgres implements TurnRepository using PostgreSQL
type TurnPostgres struct {
	db *pgxpool.Pool
}

func NewTurnPostgres(db *pgxpool.Pool) *TurnPostgres {
	return &TurnPostgres{db: db}
}

func (r *TurnPostgres) CreateTurn(ctx context.Context, turn *entity.Turn) error {
	turnID, err := uuid.Parse(turn.ID)
	if err != nil {
		return fmt.Errorf("invalid turn ID: %w", err)
	}

	convID, err := uuid.Parse(turn.ConversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation ID: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO turns (id, conversation_id, question, answer, course_link, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		pgtype.UUID{Bytes: turnID, Valid: true},
		pgtype.UUID{Bytes: convID, Valid: true},
		turn.Question,
		turn.Answer,
		turn.CourseLink,
		turn.LatencyMS,
	)
	if err != nil {
		return fmt.Errorf("create turn: %w", err)
	}

	return nil
}

func (r *TurnPostgres) GetConversationTurns(ctx context.Context, conversationID string) ([]*entity.Turn, error) {
	convID, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("invalid conversation ID: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, conversation_id, question, answer, course_link, latency_ms, created_at
		 FROM turns
		 WHERE conversation_id = $1
		 ORDER BY created_at`,
		pgtype.UUID{Bytes: convID, Valid: true},
	)
	if err != nil {
		return nil, fmt.Errorf("get conversation turns: %w", err)
	}
	defer rows.Close()

	var turns []*entity.Turn
	for rows.Next() {
		var (
			turn   entity.Turn
			id     pgtype.UUID
			conv   pgtype.UUID
			tstamp pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &conv, &turn.Question, &turn.Answer, &turn.CourseLink, &turn.LatencyMS, &tstamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.ID = uuid.UUID(id.Bytes).String()
		turn.ConversationID = uuid.UUID(conv.Bytes).String()
		turn.CreatedAt = tstamp.Time
		turns = append(turns, &turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}
