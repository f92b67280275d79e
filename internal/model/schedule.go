package model

import (
	"strconv"
	"time"

	"github.com/iliyamo/train-ticket-reservation/internal/seating"
)

// Schedule is one train service instance as stored in the
// `train_schedules` table together with its rows in `train_classes`.
// The two class layouts are keyed by class name; a schedule loaded from
// the database always carries both.  UnavailableSeats is a read-only
// snapshot taken when the schedule was loaded.
//
// Fields:
//  ID               – primary key, rendered as a string on the wire.
//  TrainName        – free text train name.
//  Date             – travel date, YYYY-MM-DD.
//  DepartureTime    – optional HH:MM.
//  ArrivalTime      – optional HH:MM.
//  StartStation     – departure station.
//  StopStation      – arrival station.
//  Classes          – First/Second layouts.
//  UnavailableSeats – class name to blocked seat ids.
//  CreatedAt        – creation timestamp.
type Schedule struct {
	ID               string                                    `json:"id"`
	TrainName        string                                    `json:"trainName"`
	Date             string                                    `json:"date"`
	DepartureTime    string                                    `json:"departureTime,omitempty"`
	ArrivalTime      string                                    `json:"arrivalTime,omitempty"`
	StartStation     string                                    `json:"startStation"`
	StopStation      string                                    `json:"stopStation"`
	Classes          map[seating.ClassName]seating.ClassLayout `json:"classes"`
	UnavailableSeats seating.UnavailableSeats                  `json:"unavailableSeats"`
	CreatedAt        time.Time                                 `json:"createdAt"`
}

// Layout returns the layout of class and whether the schedule has it.
func (s Schedule) Layout(class seating.ClassName) (seating.ClassLayout, bool) {
	l, ok := s.Classes[class]
	return l, ok
}

// Capacity is recomputed from the layout on every call; a missing class
// has capacity 0.
func (s Schedule) Capacity(class seating.ClassName) int {
	l, ok := s.Layout(class)
	if !ok {
		return 0
	}
	return l.Capacity()
}

// NumericID parses ID as a positive integer.
func (s Schedule) NumericID() (uint64, bool) {
	id, err := strconv.ParseUint(s.ID, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// Departure combines Date and DepartureTime in loc.  Without a departure
// time the end of the travel day (23:59) is used.
func (s Schedule) Departure(loc *time.Location) (time.Time, bool) {
	clock := s.DepartureTime
	if clock == "" {
		clock = "23:59"
	}
	if len(clock) > 5 {
		clock = clock[:5]
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", s.Date+" "+clock, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsUpcoming reports whether the departure is not before now.  Schedules
// with an unparseable date are never upcoming.
func (s Schedule) IsUpcoming(now time.Time) bool {
	dep, ok := s.Departure(now.Location())
	if !ok {
		return false
	}
	return !dep.Before(now)
}
