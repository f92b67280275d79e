package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/seating"
)

var scheduleCols = []string{
	"id", "train_name", "travel_date", "departure_time", "arrival_time",
	"start_station", "stop_station", "unavailable_seats", "created_at",
	"class_name", "carriages", "seat_rows", "seat_cols",
}

func TestScheduleCreateInsertsClassesInTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := &model.Schedule{
		TrainName:    "Udarata Menike",
		Date:         "2025-07-01",
		StartStation: "Colombo Fort",
		StopStation:  "Badulla",
		Classes: map[seating.ClassName]seating.ClassLayout{
			seating.First:  {Carriages: 1, Rows: 10, Cols: 6},
			seating.Second: {Carriages: 3, Rows: 12, Cols: 8},
		},
		UnavailableSeats: seating.UnavailableSeats{seating.First: {"FC1-A1"}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO train_schedules").
		WithArgs("Udarata Menike", "2025-07-01", nil, nil, "Colombo Fort", "Badulla", `{"First":["FC1-A1"]}`).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec("INSERT INTO train_classes").
		WithArgs(11, "First", 1, 10, 6, 60).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO train_classes").
		WithArgs(11, "Second", 3, 12, 8, 288).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := NewScheduleRepo(db).Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID != "11" {
		t.Fatalf("id = %q", s.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestScheduleCreateRollsBackOnClassFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := &model.Schedule{
		TrainName: "Ruhunu Kumari", Date: "2025-07-02", DepartureTime: "06:55",
		StartStation: "Maradana", StopStation: "Matara",
		Classes: map[seating.ClassName]seating.ClassLayout{seating.First: {Carriages: 1, Rows: 1, Cols: 1}},
	}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO train_schedules").WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO train_classes").WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	if err := NewScheduleRepo(db).Create(context.Background(), s); err == nil {
		t.Fatal("expected error")
	}
	if s.ID != "" {
		t.Fatalf("id set on failure: %q", s.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestScheduleListAllFoldsJoinedRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	created := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(scheduleCols).
		AddRow(1, "Yal Devi", "2025-06-01", "05:45", "13:10", "Mount Lavinia", "Jaffna", []byte(`{"First":["FC1-A1"],"Second":"bad"}`), created, "First", 2, 40, 12).
		AddRow(1, "Yal Devi", "2025-06-01", "05:45", "13:10", "Mount Lavinia", "Jaffna", []byte(`{"First":["FC1-A1"],"Second":"bad"}`), created, "Second", 4, 20, 8).
		AddRow(2, "Night Mail", "2025-06-02", nil, nil, "Colombo", "Trinco", nil, created, nil, nil, nil, nil)
	mock.ExpectQuery("SELECT s.id, s.train_name").WillReturnRows(rows)

	list, err := NewScheduleRepo(db).ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d", len(list))
	}
	first := list[0]
	if first.ID != "1" || first.DepartureTime != "05:45" || len(first.Classes) != 2 {
		t.Fatalf("first = %+v", first)
	}
	if l := first.Classes[seating.First]; l.Rows != 26 || l.Cols != 10 || l.Capacity() != 520 {
		t.Fatalf("First layout not clamped: %+v", l)
	}
	if first.Capacity(seating.Second) != 640 {
		t.Fatalf("Second capacity = %d", first.Capacity(seating.Second))
	}
	if !first.UnavailableSeats.Contains(seating.First, "FC1-A1") || len(first.UnavailableSeats[seating.Second]) != 0 {
		t.Fatalf("unavailable = %v", first.UnavailableSeats)
	}
	second := list[1]
	if second.DepartureTime != "" || len(second.Classes) != 0 || second.Capacity(seating.First) != 0 {
		t.Fatalf("second = %+v", second)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestScheduleGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("WHERE s.id = ").WithArgs(99).WillReturnRows(sqlmock.NewRows(scheduleCols))
	if _, err := NewScheduleRepo(db).GetByID(context.Background(), 99); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("got %v", err)
	}
}

func TestScheduleDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	repo := NewScheduleRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM train_classes").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM train_schedules").WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	if err := repo.Delete(context.Background(), 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM train_classes").WithArgs(6).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM train_schedules").WithArgs(6).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()
	if err := repo.Delete(context.Background(), 6); !errors.Is(err, ErrScheduleNotFound) {
		t.Fatalf("got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestUpcomingOnly(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	in := []model.Schedule{
		{ID: "1", Date: "2025-05-31"},
		{ID: "2", Date: "2025-06-01", DepartureTime: "09:00"},
		{ID: "3", Date: "2025-06-01"},
		{ID: "4", Date: "2025-06-02", DepartureTime: "01:00"},
	}
	out := UpcomingOnly(in, now)
	if len(out) != 2 || out[0].ID != "3" || out[1].ID != "4" {
		t.Fatalf("upcoming = %+v", out)
	}
}
