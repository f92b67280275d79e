package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/seating"
)

// ScheduleRepo persists train schedules and their class layouts.  A
// schedule row and its two train_classes rows are always written together.
type ScheduleRepo struct {
	db *sql.DB
}

func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

// selectSchedules joins every schedule with its class rows.  Dates and
// times are formatted in SQL so the scan does not depend on parseTime.
const selectSchedules = `SELECT s.id, s.train_name, DATE_FORMAT(s.travel_date, '%Y-%m-%d'),
       TIME_FORMAT(s.departure_time, '%H:%i'), TIME_FORMAT(s.arrival_time, '%H:%i'),
       s.start_station, s.stop_station, s.unavailable_seats, s.created_at,
       c.class_name, c.carriages, c.seat_rows, c.seat_cols
FROM train_schedules s
LEFT JOIN train_classes c ON c.train_id = s.id`

// Create inserts the schedule and one row per class inside a single
// transaction.  The stored capacity column is informational; reads always
// recompute it from the dimensions.  On success s.ID is set.
func (r *ScheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	blob, err := json.Marshal(s.UnavailableSeats)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO train_schedules (train_name, travel_date, departure_time, arrival_time, start_station, stop_station, unavailable_seats)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.TrainName, s.Date, nullable(s.DepartureTime), nullable(s.ArrivalTime), s.StartStation, s.StopStation, string(blob))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	for _, class := range seating.Classes {
		l, ok := s.Classes[class]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO train_classes (train_id, class_name, carriages, seat_rows, seat_cols, capacity) VALUES (?, ?, ?, ?, ?, ?)`,
			id, string(class), l.Carriages, l.Rows, l.Cols, l.Capacity()); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	s.ID = strconv.FormatInt(id, 10)
	return nil
}

// ListAll returns schedules ordered by date and departure time.
func (r *ScheduleRepo) ListAll(ctx context.Context) ([]model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, selectSchedules+`
ORDER BY s.travel_date, s.departure_time, s.id, c.class_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSchedules(rows)
}

// GetByID returns one schedule or ErrScheduleNotFound.
func (r *ScheduleRepo) GetByID(ctx context.Context, id uint64) (model.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, selectSchedules+`
WHERE s.id = ?
ORDER BY c.class_name`, id)
	if err != nil {
		return model.Schedule{}, err
	}
	defer rows.Close()
	out, err := scanSchedules(rows)
	if err != nil {
		return model.Schedule{}, err
	}
	if len(out) == 0 {
		return model.Schedule{}, ErrScheduleNotFound
	}
	return out[0], nil
}

// Delete removes a schedule and its class rows.  ErrScheduleNotFound when
// nothing matched.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM train_classes WHERE train_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM train_schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// scanSchedules folds the joined rows into schedules, keeping the order in
// which each schedule first appears.
func scanSchedules(rows *sql.Rows) ([]model.Schedule, error) {
	var (
		out   []model.Schedule
		index = map[uint64]int{}
	)
	for rows.Next() {
		var (
			id                   uint64
			s                    model.Schedule
			dep, arr             sql.NullString
			blob                 []byte
			createdAt            sql.NullTime
			className            sql.NullString
			carriages, rws, cols sql.NullInt64
		)
		if err := rows.Scan(&id, &s.TrainName, &s.Date, &dep, &arr, &s.StartStation, &s.StopStation,
			&blob, &createdAt, &className, &carriages, &rws, &cols); err != nil {
			return nil, err
		}
		pos, seen := index[id]
		if !seen {
			s.ID = strconv.FormatUint(id, 10)
			s.DepartureTime = dep.String
			s.ArrivalTime = arr.String
			s.UnavailableSeats = seating.ParseUnavailableSeats(blob)
			s.Classes = map[seating.ClassName]seating.ClassLayout{}
			if createdAt.Valid {
				s.CreatedAt = createdAt.Time.UTC()
			}
			out = append(out, s)
			pos = len(out) - 1
			index[id] = pos
		}
		if !className.Valid {
			continue
		}
		class, err := seating.ParseClassName(className.String)
		if err != nil {
			continue
		}
		out[pos].Classes[class] = seating.NewClassLayout(int(carriages.Int64), int(rws.Int64), int(cols.Int64))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpcomingOnly keeps schedules departing at or after now.
func UpcomingOnly(all []model.Schedule, now time.Time) []model.Schedule {
	out := make([]model.Schedule, 0, len(all))
	for _, s := range all {
		if s.IsUpcoming(now) {
			out = append(out, s)
		}
	}
	return out
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// IsNotFound reports whether err is one of the repository not-found errors
// or sql.ErrNoRows.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound) || errors.Is(err, ErrUserNotFound) || errors.Is(err, sql.ErrNoRows)
}
