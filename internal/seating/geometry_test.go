package seating

import (
	"reflect"
	"testing"
)

func TestSeatsCountAndUniqueness(t *testing.T) {
	for rows := 1; rows <= MaxRows; rows++ {
		for cols := 1; cols <= MaxCols; cols++ {
			g := Geometry{Rows: rows, Cols: cols, Prefix: First.SeatPrefix(1)}
			seats := g.Seats()
			if len(seats) != rows*cols {
				t.Fatalf("rows=%d cols=%d: got %d seats", rows, cols, len(seats))
			}
			seen := make(map[string]bool, len(seats))
			for _, s := range seats {
				if seen[s.ID] {
					t.Fatalf("rows=%d cols=%d: duplicate id %s", rows, cols, s.ID)
				}
				seen[s.ID] = true
			}
			if !reflect.DeepEqual(seats, g.Seats()) {
				t.Fatalf("rows=%d cols=%d: enumeration not deterministic", rows, cols)
			}
		}
	}
}

func TestSeatsOrderAndLabels(t *testing.T) {
	seats := Geometry{Rows: 2, Cols: 3, Prefix: "SC3-"}.Seats()
	want := []string{"SC3-A1", "SC3-A2", "SC3-A3", "SC3-B1", "SC3-B2", "SC3-B3"}
	for i, s := range seats {
		if s.ID != want[i] {
			t.Fatalf("seat %d: got %s want %s", i, s.ID, want[i])
		}
	}
	if seats[0].Row != "A" || seats[0].Col != 1 {
		t.Fatalf("unexpected first seat %+v", seats[0])
	}
}

func TestSeatsLastRowAndColumn(t *testing.T) {
	seats := Geometry{Rows: 26, Cols: 10, Prefix: "SC3-"}.Seats()
	if last := seats[len(seats)-1].ID; last != "SC3-Z10" {
		t.Fatalf("last seat = %s", last)
	}
	if seats[9].ID != "SC3-A10" {
		t.Fatalf("no leading zeros expected, got %s", seats[9].ID)
	}
}

func TestSeatsClampsOversizedGrid(t *testing.T) {
	seats := Geometry{Rows: 40, Cols: 12}.Seats()
	if len(seats) != MaxRows*MaxCols {
		t.Fatalf("got %d seats, want %d", len(seats), MaxRows*MaxCols)
	}
	if got := (Geometry{Rows: 0, Cols: 4}).Seats(); len(got) != 0 {
		t.Fatalf("empty grid expected, got %d", len(got))
	}
}

func TestWindowSeats(t *testing.T) {
	seats := Geometry{Rows: 1, Cols: 6}.Seats()
	for _, s := range seats {
		want := s.Col == 1 || s.Col == 6
		if s.Window != want {
			t.Fatalf("seat %s window=%v", s.ID, s.Window)
		}
	}
	if !IsWindowCol(0, 1) {
		t.Fatal("single column must be a window seat")
	}
	if IsWindowCol(6, 6) || IsWindowCol(-1, 6) {
		t.Fatal("out of range index must not be a window")
	}
}

func TestAisleAfter(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 6: 3, 10: 5}
	for cols, want := range cases {
		if got := AisleAfter(cols); got != want {
			t.Errorf("AisleAfter(%d) = %d, want %d", cols, got, want)
		}
	}
}

func TestGridGroupsByRow(t *testing.T) {
	grid := Geometry{Rows: 3, Cols: 4, Prefix: "FC1-"}.Grid()
	if len(grid) != 3 {
		t.Fatalf("rows = %d", len(grid))
	}
	for i, row := range grid {
		if len(row) != 4 {
			t.Fatalf("row %d has %d seats", i, len(row))
		}
		if row[0].Row != RowLabel(i) {
			t.Fatalf("row %d label %s", i, row[0].Row)
		}
	}
}

func TestParseSeatID(t *testing.T) {
	id, err := ParseSeatID("FC2-C4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id.Class != First || id.Carriage != 2 || id.Row != 2 || id.Col != 4 {
		t.Fatalf("parsed %+v", id)
	}
	if id.String() != "FC2-C4" {
		t.Fatalf("round trip %s", id.String())
	}

	bare, err := ParseSeatID("J10")
	if err != nil || bare.HasPrefix() || bare.String() != "J10" {
		t.Fatalf("bare id: %+v %v", bare, err)
	}

	for _, bad := range []string{"", "A0", "A11", "a1", "XC1-A1", "FC0-A1", "FC51-A1", "FC1A1", "FC1-1A"} {
		if _, err := ParseSeatID(bad); err == nil {
			t.Errorf("ParseSeatID(%q) should fail", bad)
		}
	}
}

func TestSeatIDIn(t *testing.T) {
	l := ClassLayout{Carriages: 2, Rows: 3, Cols: 4}
	for raw, want := range map[string]bool{
		"FC1-A1": true,
		"FC2-C4": true,
		"FC3-A1": false,
		"FC1-D1": false,
		"FC1-A5": false,
		"SC1-A1": false,
		"A1":     false,
	} {
		id, err := ParseSeatID(raw)
		if err != nil {
			t.Fatal(err)
		}
		if got := id.In(First, l); got != want {
			t.Errorf("%s in First = %v, want %v", raw, got, want)
		}
	}
}

func TestNewSeatIDMatchesGeometry(t *testing.T) {
	seats := CarriageGeometry(Second, ClassLayout{Carriages: 3, Rows: 10, Cols: 10}, 3).Seats()
	id, err := NewSeatID(Second, 3, 9, 10)
	if err != nil {
		t.Fatal(err)
	}
	if seats[len(seats)-1].ID != id.String() || id.String() != "SC3-J10" {
		t.Fatalf("got %s and %s", seats[len(seats)-1].ID, id.String())
	}
	if _, err := NewSeatID("Third", 1, 0, 1); err == nil {
		t.Fatal("unknown class accepted")
	}
}
