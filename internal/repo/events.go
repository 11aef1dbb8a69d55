package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-market-engine/internal/model"
)

const eventColumns = `id, title, description, start_time, end_time, status, created_by, created_at, updated_at`

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	var status string
	err := row.Scan(&e.ID, &e.Title, &e.Description, scanTime(&e.StartTime), nullableTime{dst: &e.EndTime},
		&status, &e.CreatedBy, scanTime(&e.CreatedAt), scanTime(&e.UpdatedAt))
	e.Status = model.EventStatus(status)
	return e, err
}

func (q *queries) GetEvent(ctx context.Context, id int64) (model.Event, error) {
	return q.loadEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`, id)
}

// LockEvent serializa liquidações concorrentes do mesmo evento
func (q *queries) LockEvent(ctx context.Context, id int64) (model.Event, error) {
	return q.loadEvent(ctx, `SELECT `+eventColumns+` FROM events WHERE id=$1`+q.d.lockClause, id)
}

func (q *queries) loadEvent(ctx context.Context, query string, id int64) (model.Event, error) {
	e, err := scanEvent(q.queryRow(ctx, query, id))
	if err != nil {
		return model.Event{}, q.d.wrap(notFound(err))
	}
	if e.Outcomes, err = q.ListOutcomes(ctx, e.ID); err != nil {
		return model.Event{}, err
	}
	return e, nil
}

func (q *queries) ListEventsByStatus(ctx context.Context, statuses ...model.EventStatus) ([]model.Event, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	ph := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(s)
	}

	rows, err := q.query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE status IN (`+strings.Join(ph, ",")+`) ORDER BY start_time, id`, args...)
	if err != nil {
		return nil, err
	}
	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// outcomes depois de fechar o cursor: SQLite tem uma única conexão
	for i := range events {
		if events[i].Outcomes, err = q.ListOutcomes(ctx, events[i].ID); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (q *queries) InsertEvent(ctx context.Context, e *model.Event) error {
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now
	if e.Status == "" {
		e.Status = model.EventUpcoming
	}
	err := q.queryRow(ctx,
		`INSERT INTO events(title, description, start_time, end_time, status, created_by, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		e.Title, e.Description, e.StartTime.UTC(), nullTime(e.EndTime), string(e.Status), e.CreatedBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("insert event: %w", q.d.wrap(err))
	}
	return nil
}

func (q *queries) UpdateEventStatus(ctx context.Context, id int64, status model.EventStatus) error {
	res, err := q.exec(ctx, `UPDATE events SET status=$1, updated_at=$2 WHERE id=$3`, string(status), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update event %d status: %w", id, err)
	}
	return mustAffect(res, "event", id)
}

const outcomeColumns = `id, event_id, title, odds, total_wagered, resolution, created_at, updated_at`

func (q *queries) InsertOutcome(ctx context.Context, o *model.Outcome) error {
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	if o.Resolution == "" {
		o.Resolution = model.Undetermined
	}
	err := q.queryRow(ctx,
		`INSERT INTO outcomes(event_id, title, odds, total_wagered, resolution, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		o.EventID, o.Title, o.Odds, o.TotalWagered.StringFixed(2), string(o.Resolution), o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert outcome for event %d: %w", o.EventID, q.d.wrap(err))
	}
	return nil
}

func (q *queries) ListOutcomes(ctx context.Context, eventID int64) ([]model.Outcome, error) {
	rows, err := q.query(ctx, `SELECT `+outcomeColumns+` FROM outcomes WHERE event_id=$1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Outcome
	for rows.Next() {
		var o model.Outcome
		var res string
		if err := rows.Scan(&o.ID, &o.EventID, &o.Title, &o.Odds, &o.TotalWagered, &res,
			scanTime(&o.CreatedAt), scanTime(&o.UpdatedAt)); err != nil {
			return nil, err
		}
		o.Resolution = model.Resolution(res)
		out = append(out, o)
	}
	return out, rows.Err()
}

// AddOutcomeVolume soma o valor em decimal e grava o total arredondado.
// Chamado sob o lock do evento (PlaceBet), então ler-somar-gravar não perde updates.
func (q *queries) AddOutcomeVolume(ctx context.Context, outcomeID int64, amount decimal.Decimal) error {
	var current decimal.Decimal
	err := q.queryRow(ctx, `SELECT total_wagered FROM outcomes WHERE id=$1`, outcomeID).Scan(&current)
	if err != nil {
		return fmt.Errorf("add volume outcome %d: %w", outcomeID, notFound(err))
	}
	total := current.Add(amount).Round(2)
	res, err := q.exec(ctx, `UPDATE outcomes SET total_wagered=$1, updated_at=$2 WHERE id=$3`,
		total.StringFixed(2), time.Now().UTC(), outcomeID)
	if err != nil {
		return fmt.Errorf("add volume outcome %d: %w", outcomeID, err)
	}
	return mustAffect(res, "outcome", outcomeID)
}

// UpdateOutcomeOdds só altera outcomes de eventos UPCOMING; evento ao vivo,
// liquidado ou outcome inexistente devolvem store.ErrNotFound.
func (q *queries) UpdateOutcomeOdds(ctx context.Context, outcomeID int64, odds float64) error {
	res, err := q.exec(ctx,
		`UPDATE outcomes SET odds=$1, updated_at=$2
		 WHERE id=$3 AND event_id IN (SELECT id FROM events WHERE status='upcoming')`,
		odds, time.Now().UTC(), outcomeID)
	if err != nil {
		return fmt.Errorf("update odds outcome %d: %w", outcomeID, err)
	}
	return mustAffect(res, "open outcome", outcomeID)
}

// ResolveOutcomes marca o vencedor como winning e todos os irmãos como losing
func (q *queries) ResolveOutcomes(ctx context.Context, eventID, winningOutcomeID int64) error {
	if _, err := q.exec(ctx,
		`UPDATE outcomes
		 SET resolution = CASE WHEN id=$1 THEN 'winning' ELSE 'losing' END, updated_at=$2
		 WHERE event_id=$3`,
		winningOutcomeID, time.Now().UTC(), eventID); err != nil {
		return fmt.Errorf("resolve outcomes event %d: %w", eventID, err)
	}
	return nil
}
