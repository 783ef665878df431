package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/campusbot/advisorbot"
)

type insertEvaluationRunQuery struct {
	run     *advisorbot.EvaluationRun
	metrics string
}

func (q insertEvaluationRunQuery) SQL() (string, []any) {
	return `
		INSERT INTO "evaluation_runs" (
			"id",
			"experiment",
			"status",
			"metrics",
			"cases",
			"failures",
			"created"
		)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, []any{
		q.run.ID,
		q.run.Experiment,
		q.run.Status,
		q.metrics,
		q.run.Cases,
		q.run.Failures,
		q.run.Created,
	}
}

func (a *Adapter) SaveEvaluationRun(ctx context.Context, run *advisorbot.EvaluationRun) error {
	metrics, err := json.Marshal(run.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics failed: %w", err)
	}

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := execQueryCheckRowsAffected(ctx, tx, insertEvaluationRunQuery{run: run, metrics: string(metrics)}); err != nil {
			return fmt.Errorf("exec insert evaluation run query failed: %w", err)
		}

		return nil
	}); err != nil {
		return err
	}

	return nil
}

type selectEvaluationRunQuery struct {
	id advisorbot.RunID
}

func (q selectEvaluationRunQuery) SQL() (string, []any) {
	return `
		SELECT
			"id",
			"experiment",
			"status",
			"metrics",
			"cases",
			"failures",
			"created"
		FROM "evaluation_runs"
		WHERE "id" = ?
	`, []any{q.id}
}

func (a *Adapter) FindEvaluationRun(ctx context.Context, id advisorbot.RunID) (*advisorbot.EvaluationRun, error) {
	var run *advisorbot.EvaluationRun

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query, args := selectEvaluationRunQuery{id: id}.SQL()

		var err error
		run, err = scanEvaluationRun(tx.QueryRowContext(ctx, query, args...))
		return err
	}); err != nil {
		return nil, err
	}

	return run, nil
}

type selectEvaluationRunsQuery struct {
	limit int
}

func (q selectEvaluationRunsQuery) SQL() (string, []any) {
	return `
		SELECT
			"id",
			"experiment",
			"status",
			"metrics",
			"cases",
			"failures",
			"created"
		FROM "evaluation_runs"
		ORDER BY "created" DESC
		LIMIT ?
	`, []any{q.limit}
}

func (a *Adapter) ListEvaluationRuns(ctx context.Context, limit int) ([]*advisorbot.EvaluationRun, error) {
	var runs []*advisorbot.EvaluationRun

	if err := a.inTxDo(ctx, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		query, args := selectEvaluationRunsQuery{limit: limit}.SQL()

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			run, err := scanEvaluationRun(rows)
			if err != nil {
				return err
			}
			runs = append(runs, run)
		}

		return rows.Err()
	}); err != nil {
		return nil, err
	}

	return runs, nil
}

func scanEvaluationRun(row scannable) (*advisorbot.EvaluationRun, error) {
	var (
		run     = new(advisorbot.EvaluationRun)
		metrics string
	)
	if err := row.Scan(
		&run.ID,
		&run.Experiment,
		&run.Status,
		&metrics,
		&run.Cases,
		&run.Failures,
		&run.Created,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, advisorbot.ErrNotFound
		}
		return nil, fmt.Errorf("scan evaluation run failed: %w", err)
	}
	if metrics != "" {
		if err := json.Unmarshal([]byte(metrics), &run.Metrics); err != nil {
			return nil, fmt.Errorf("unmarshal metrics failed: %w", err)
		}
	}
	return run, nil
}
