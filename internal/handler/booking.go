package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/booking"
	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/queue"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
	"github.com/iliyamo/train-ticket-reservation/internal/seating"
	"github.com/iliyamo/train-ticket-reservation/internal/ticket"
	"github.com/iliyamo/train-ticket-reservation/pkg/logger"
)

// BookingPublisher hands a validated booking to the booking collaborator.
type BookingPublisher interface {
	PublishBookingRequested(ctx context.Context, ev queue.BookingRequestedEvent) error
}

// BookingHandler validates booking forms and publishes the ready ones.
// Nothing is written to the schedule: the collaborator owns seat state.
type BookingHandler struct {
	Schedules *repository.ScheduleRepo
	Publisher BookingPublisher
	Log       *logger.Logger
	Now       func() time.Time
}

func NewBookingHandler(repo *repository.ScheduleRepo, pub BookingPublisher, log *logger.Logger) *BookingHandler {
	if repo == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BookingHandler{Schedules: repo, Publisher: pub, Log: log, Now: time.Now}
}

// bookingReq is the booking form.  ticketCount accepts numbers or numeric
// strings; anything unusable falls back to one ticket.
type bookingReq struct {
	booking.Passenger
	ScheduleID  string      `json:"scheduleId"`
	TravelClass string      `json:"travelClass"`
	TicketCount interface{} `json:"ticketCount"`
	Seats       []string    `json:"seats"`
}

// validated is the outcome of running the builder on a form.
type validated struct {
	schedule *model.Schedule
	request  booking.Request
}

// validate binds the form, loads the schedule and runs the builder.  When
// ok is false the response has been written.
func (h *BookingHandler) validate(c echo.Context) (validated, bool, error) {
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return validated{}, false, errJSON(c, http.StatusBadRequest, "invalid body")
	}

	b := booking.NewBuilder().
		WithPassenger(req.Passenger).
		WithTickets(seating.TicketCountFrom(req.TicketCount)).
		WithSeats(req.Seats)
	if raw := strings.TrimSpace(req.TravelClass); raw != "" {
		class, err := seating.ParseClassName(raw)
		if err != nil {
			class = seating.ClassName(raw)
		}
		b.WithClass(class)
	}

	var schedule *model.Schedule
	if raw := strings.TrimSpace(req.ScheduleID); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return validated{}, false, errJSON(c, http.StatusBadRequest, "invalid scheduleId")
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
		s, err := h.Schedules.GetByID(ctx, id)
		cancel()
		if err != nil {
			if errors.Is(err, repository.ErrScheduleNotFound) {
				return validated{}, false, errJSON(c, http.StatusNotFound, "schedule not found")
			}
			h.Log.WithError(err).Error("load schedule failed")
			return validated{}, false, internalError(c, "failed to load schedule")
		}
		schedule = &s
		b.WithSchedule(schedule)
	}

	out, err := b.Build()
	if err != nil {
		state := booking.StateOf(err)
		h.Log.LogBookingRejected(state.String(), err.Error())
		return validated{}, false, c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error(), "state": state})
	}
	return validated{schedule: schedule, request: out}, true, nil
}

// Submit publishes a ready booking and answers 202 with its reference.
func (h *BookingHandler) Submit(c echo.Context) error {
	v, ok, err := h.validate(c)
	if !ok {
		return err
	}
	uid, _ := middleware.UserID(c)
	ev := queue.BookingRequestedEvent{
		Reference:   uuid.NewString(),
		UserID:      uid,
		TrainName:   v.schedule.TrainName,
		Departure:   v.schedule.DepartureTime,
		Request:     v.request,
		RequestedAt: h.Now().UTC(),
	}
	if h.Publisher == nil {
		return errJSON(c, http.StatusBadGateway, "booking service unavailable")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()
	if err := h.Publisher.PublishBookingRequested(ctx, ev); err != nil {
		h.Log.WithError(err).WithUserID(uid).Error("publish booking failed")
		return errJSON(c, http.StatusBadGateway, "booking service unavailable")
	}
	h.Log.WithUserID(uid).LogBookingSubmitted(ev.Reference, v.request.ScheduleID, string(v.request.TravelClass), v.request.TicketCount)
	return c.JSON(http.StatusAccepted, echo.Map{
		"reference": ev.Reference,
		"state":     booking.StateReady,
		"booking":   v.request,
	})
}

// Slip renders the ready booking as a PDF.  ?reference= prints the
// reference returned by Submit.
func (h *BookingHandler) Slip(c echo.Context) error {
	v, ok, err := h.validate(c)
	if !ok {
		return err
	}
	slip := ticket.Slip{
		Reference:     strings.TrimSpace(c.QueryParam("reference")),
		TrainName:     v.schedule.TrainName,
		DepartureTime: v.schedule.DepartureTime,
		ArrivalTime:   v.schedule.ArrivalTime,
		Request:       v.request,
	}
	pdf, err := ticket.Render(slip)
	if err != nil {
		h.Log.WithError(err).Error("render slip failed")
		return internalError(c, "failed to render slip")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", slip.Filename()))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
