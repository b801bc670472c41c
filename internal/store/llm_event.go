package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type eventRepo struct {
	db *sqlx.DB
}

const llmEventColumns = `id, timestamp, provider, model, purpose, input_tokens, output_tokens,
	latency_ms, success, error_message, request_body, response_body`

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO llm_request_events
			(timestamp, provider, model, purpose, input_tokens, output_tokens,
			 latency_ms, success, error_message, request_body, response_body)
		 VALUES
			(:timestamp, :provider, :model, :purpose, :input_tokens, :output_tokens,
			 :latency_ms, :success, :error_message, :request_body, :response_body)`,
		LLMRequestEvent{Timestamp: time.Now().UTC(), LLMRequestEventData: data})
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	q := `SELECT ` + llmEventColumns + ` FROM llm_request_events`
	var args []any
	if opts.Purpose != "" {
		q += ` WHERE purpose = ?`
		args = append(args, opts.Purpose)
	}
	q += ` ORDER BY id DESC`
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var events []LLMRequestEvent
	if err := r.db.SelectContext(ctx, &events, q, args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	var e LLMRequestEvent
	err := r.db.GetContext(ctx, &e, `SELECT `+llmEventColumns+` FROM llm_request_events WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	return &e, nil
}
