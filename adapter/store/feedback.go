package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campusbot/advisorbot"
)

type insertFeedbacksQuery struct {
	feedbacks []*advisorbot.Feedback
}

func (q insertFeedbacksQuery) SQL() (string, []any) {
	if len(q.feedbacks) == 0 {
		return "", nil
	}

	sql := `
		INSERT INTO "feedbacks" (
			"id",
			"question",
			"answer",
			"helpful",
			"created"
		)
		VALUES (?, ?, ?, ?, ?)
	`
	args := make([]any, 0, len(q.feedbacks)*5)
	args = append(
		args,
		q.feedbacks[0].ID,
		q.feedbacks[0].Question,
		q.feedbacks[0].Answer,
		q.feedbacks[0].Helpful,
		q.feedbacks[0].Created,
	)
	for i := range q.feedbacks[1:] {
		sql += ", (?, ?, ?, ?, ?)"
		args = append(
			args,
			q.feedbacks[i+1].ID,
			q.feedbacks[i+1].Question,
			q.feedbacks[i+1].Answer,
			q.feedbacks[i+1].Helpful,
			q.feedbacks[i+1].Created,
		)
	}

	return sql, args
}

func (a *Adapter) SaveFeedback(ctx context.Context, feedbacks ...*advisorbot.Feedback) error {
	if len(feedbacks) < 1 {
		return nil
	}

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := execQueryCheckRowsAffected(ctx, tx, insertFeedbacksQuery{feedbacks: feedbacks}); err != nil {
			return fmt.Errorf("exec insert feedbacks query failed: %w", err)
		}

		return nil
	}); err != nil {
		return err
	}

	return nil
}

type selectFeedbacksQuery struct {
	limit int
}

func (q selectFeedbacksQuery) SQL() (string, []any) {
	return `
		SELECT
			"id",
			"question",
			"answer",
			"helpful",
			"created"
		FROM "feedbacks"
		ORDER BY "created" DESC
		LIMIT ?
	`, []any{q.limit}
}

func (a *Adapter) ListFeedback(ctx context.Context, limit int) ([]*advisorbot.Feedback, error) {
	var feedbacks []*advisorbot.Feedback

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query, args := selectFeedbacksQuery{limit: limit}.SQL()

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			aFeedback, err := scanFeedback(rows)
			if err != nil {
				return err
			}
			feedbacks = append(feedbacks, aFeedback)
		}

		return rows.Err()
	}); err != nil {
		return nil, err
	}

	return feedbacks, nil
}

func scanFeedback(row scannable) (*advisorbot.Feedback, error) {
	aFeedback := new(advisorbot.Feedback)
	if err := row.Scan(
		&aFeedback.ID,
		&aFeedback.Question,
		&aFeedback.Answer,
		&aFeedback.Helpful,
		&aFeedback.Created,
	); err != nil {
		return nil, fmt.Errorf("scan feedback failed: %w", err)
	}
	return aFeedback, nil
}
