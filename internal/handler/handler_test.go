package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

var scheduleCols = []string{
	"id", "train_name", "travel_date", "departure_time", "arrival_time",
	"start_station", "stop_station", "unavailable_seats", "created_at",
	"class_name", "carriages", "seat_rows", "seat_cols",
}

// scheduleRows is schedule 7: First is 2 carriages of 3x4 with FC1-A2
// blocked, Second is 1 carriage of 2x2.
func scheduleRows() *sqlmock.Rows {
	created := time.Date(2029, 12, 1, 8, 0, 0, 0, time.UTC)
	blob := []byte(`{"First":["FC1-A2"]}`)
	return sqlmock.NewRows(scheduleCols).
		AddRow(7, "Udarata Menike", "2030-01-15", "08:30", "15:00", "Colombo Fort", "Badulla", blob, created, "First", 2, 3, 4).
		AddRow(7, "Udarata Menike", "2030-01-15", "08:30", "15:00", "Colombo Fort", "Badulla", blob, created, "Second", 1, 2, 2)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

// asUser stands in for JWTAuth.
func asUser(id uint64, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("user_id", id)
			c.Set("role", role)
			return next(c)
		}
	}
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	return db, mock, func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
		db.Close()
	}
}

func scheduleRowsEmpty() *sqlmock.Rows { return sqlmock.NewRows(scheduleCols) }
