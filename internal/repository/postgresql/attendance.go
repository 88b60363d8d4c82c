package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/worklens/worklens-agent-go/internal/domain/attendance"
	"github.com/worklens/worklens-agent-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.DayRepository {
	return &attendanceRepository{db: db}
}

// GetByEmployeeAndDate implements attendance.DayRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (attendance.Day, error) {
	query := `
		SELECT session_id, employee_id, date, check_in, check_out, created_at, updated_at
		FROM attendance_days
		WHERE employee_id = $1 AND date = $2
	`

	var day attendance.Day
	err := r.db.QueryRow(ctx, query, employeeID, date).Scan(
		&day.SessionID, &day.EmployeeID, &day.Date,
		&day.CheckIn, &day.CheckOut,
		&day.CreatedAt, &day.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Day{}, attendance.ErrDayNotFound
		}
		return attendance.Day{}, fmt.Errorf("failed to get attendance day: %w", err)
	}

	breakQuery := `
		SELECT break_start, break_end
		FROM attendance_breaks
		WHERE session_id = $1
		ORDER BY break_start
	`
	rows, err := r.db.Query(ctx, breakQuery, day.SessionID)
	if err != nil {
		return attendance.Day{}, fmt.Errorf("failed to get attendance breaks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b attendance.Break
		if err := rows.Scan(&b.Start, &b.End); err != nil {
			return attendance.Day{}, fmt.Errorf("failed to scan attendance break: %w", err)
		}
		day.Breaks = append(day.Breaks, b)
	}
	if err := rows.Err(); err != nil {
		return attendance.Day{}, fmt.Errorf("failed to read attendance breaks: %w", err)
	}

	return day, nil
}

// ListOpenBefore implements attendance.DayRepository.
func (r *attendanceRepository) ListOpenBefore(ctx context.Context, date string) ([]attendance.Day, error) {
	query := `
		SELECT session_id, employee_id, date, check_in, check_out, created_at, updated_at
		FROM attendance_days
		WHERE date < $1 AND check_in IS NOT NULL AND check_out IS NULL
		ORDER BY date
	`
	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance days: %w", err)
	}
	defer rows.Close()

	var days []attendance.Day
	for rows.Next() {
		var day attendance.Day
		if err := rows.Scan(
			&day.SessionID, &day.EmployeeID, &day.Date,
			&day.CheckIn, &day.CheckOut,
			&day.CreatedAt, &day.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attendance days: %w", err)
	}

	for i := range days {
		full, err := r.GetByEmployeeAndDate(ctx, days[i].EmployeeID, days[i].Date)
		if err != nil {
			return nil, err
		}
		days[i] = full
	}
	return days, nil
}

// Save implements attendance.DayRepository. The day row and its break rows
// are replaced in one transaction so a half-written break can never be read.
func (r *attendanceRepository) Save(ctx context.Context, day attendance.Day) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	upsert := `
		INSERT INTO attendance_days (session_id, employee_id, date, check_in, check_out, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, date) DO UPDATE
		SET check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			updated_at = EXCLUDED.updated_at
	`
	_, err = tx.Exec(ctx, upsert,
		day.SessionID, day.EmployeeID, day.Date,
		day.CheckIn, day.CheckOut,
		day.CreatedAt, day.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert attendance day: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM attendance_breaks WHERE session_id = $1`, day.SessionID); err != nil {
		return fmt.Errorf("failed to clear attendance breaks: %w", err)
	}
	for _, b := range day.Breaks {
		_, err := tx.Exec(ctx,
			`INSERT INTO attendance_breaks (session_id, break_start, break_end) VALUES ($1, $2, $3)`,
			day.SessionID, b.Start, b.End,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attendance break: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit attendance day: %w", err)
	}
	return nil
}
