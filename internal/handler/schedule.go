package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/middleware"
	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/repository"
	"github.com/iliyamo/train-ticket-reservation/internal/seating"
	"github.com/iliyamo/train-ticket-reservation/pkg/logger"
)

// ScheduleHandler serves schedule browsing, admin management, the seat
// map and the selection step.
type ScheduleHandler struct {
	Schedules *repository.ScheduleRepo
	Cache     *middleware.CacheInvalidator // nil when caching is off
	Log       *logger.Logger
	Now       func() time.Time
}

func NewScheduleHandler(repo *repository.ScheduleRepo, cache *middleware.CacheInvalidator, log *logger.Logger) *ScheduleHandler {
	if repo == nil {
		panic("nil repository passed to NewScheduleHandler")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ScheduleHandler{Schedules: repo, Cache: cache, Log: log, Now: time.Now}
}

// layoutReq is one class layout as sent by an admin.  Every number is
// clamped into range; a missing one becomes the minimum.
type layoutReq struct {
	Carriages int `json:"carriages"`
	Rows      int `json:"rows"`
	Cols      int `json:"cols"`
}

func (l *layoutReq) layout() seating.ClassLayout {
	if l == nil {
		return seating.NewClassLayout(0, 0, 0)
	}
	return seating.NewClassLayout(l.Carriages, l.Rows, l.Cols)
}

type createScheduleReq struct {
	TrainName        string                   `json:"trainName" validate:"required,max=120"`
	Date             string                   `json:"date" validate:"required,datetime=2006-01-02"`
	DepartureTime    string                   `json:"departureTime" validate:"omitempty,datetime=15:04"`
	ArrivalTime      string                   `json:"arrivalTime" validate:"omitempty,datetime=15:04"`
	StartStation     string                   `json:"startStation" validate:"required,max=120"`
	StopStation      string                   `json:"stopStation" validate:"required,max=120"`
	First            *layoutReq               `json:"first"`
	Second           *layoutReq               `json:"second"`
	UnavailableSeats seating.UnavailableSeats `json:"unavailableSeats"`
}

func (r *createScheduleReq) trim() {
	r.TrainName = strings.TrimSpace(r.TrainName)
	r.Date = strings.TrimSpace(r.Date)
	r.DepartureTime = strings.TrimSpace(r.DepartureTime)
	r.ArrivalTime = strings.TrimSpace(r.ArrivalTime)
	r.StartStation = strings.TrimSpace(r.StartStation)
	r.StopStation = strings.TrimSpace(r.StopStation)
}

// blockedSeats keeps the known classes and requires every id to be a
// prefixed seat of its class inside the clamped layout.  Ids are stored in
// canonical form without duplicates.
func blockedSeats(in seating.UnavailableSeats, layouts map[seating.ClassName]seating.ClassLayout) (seating.UnavailableSeats, string) {
	out := seating.UnavailableSeats{}
	for _, class := range seating.Classes {
		seen := map[string]struct{}{}
		for _, raw := range in[class] {
			id, err := seating.ParseSeatID(raw)
			if err != nil || !id.In(class, layouts[class]) {
				return nil, fmt.Sprintf("unavailableSeats: %q is not a %s seat of this train", raw, class)
			}
			key := id.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out[class] = append(out[class], key)
		}
	}
	return out, ""
}

// ListSchedules returns every schedule; ?upcoming=true keeps the ones that
// have not departed yet.
func (h *ScheduleHandler) ListSchedules(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	all, err := h.Schedules.ListAll(ctx)
	if err != nil {
		h.Log.WithError(err).Error("list schedules failed")
		return internalError(c, "failed to load schedules")
	}
	if upcoming, _ := strconv.ParseBool(c.QueryParam("upcoming")); upcoming {
		all = repository.UpcomingOnly(all, h.Now())
	}
	if all == nil {
		all = []model.Schedule{}
	}
	return c.JSON(http.StatusOK, echo.Map{"items": all, "count": len(all)})
}

// GetSchedule returns one schedule.
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	s, ok, err := h.load(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// CreateSchedule stores a schedule with both class layouts (ADMIN).
func (h *ScheduleHandler) CreateSchedule(c echo.Context) error {
	var req createScheduleReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	req.trim()
	if err := c.Validate(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, validationMessage(err))
	}

	layouts := map[seating.ClassName]seating.ClassLayout{
		seating.First:  req.First.layout(),
		seating.Second: req.Second.layout(),
	}
	unavailable, msg := blockedSeats(req.UnavailableSeats, layouts)
	if msg != "" {
		return errJSON(c, http.StatusBadRequest, msg)
	}
	s := &model.Schedule{
		TrainName:        req.TrainName,
		Date:             req.Date,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		StartStation:     req.StartStation,
		StopStation:      req.StopStation,
		Classes:          layouts,
		UnavailableSeats: unavailable,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Schedules.Create(ctx, s); err != nil {
		h.Log.WithError(err).Error("create schedule failed")
		return internalError(c, "failed to create schedule")
	}
	s.CreatedAt = h.Now().UTC()
	h.invalidate(ctx)
	h.Log.LogScheduleCreated(s.ID, s.TrainName, s.Capacity(seating.First), s.Capacity(seating.Second))
	return c.JSON(http.StatusCreated, s)
}

// DeleteSchedule removes a schedule and its class rows (ADMIN).
func (h *ScheduleHandler) DeleteSchedule(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return errJSON(c, http.StatusBadRequest, "invalid schedule id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Schedules.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return errJSON(c, http.StatusNotFound, "schedule not found")
		}
		h.Log.WithError(err).Error("delete schedule failed")
		return internalError(c, "failed to delete schedule")
	}
	h.invalidate(ctx)
	h.Log.LogScheduleDeleted(id)
	return c.JSON(http.StatusOK, echo.Map{"message": "schedule deleted", "id": strconv.FormatUint(id, 10)})
}

// load fetches the schedule named by :id.  When ok is false the response
// has been written and err is what the handler returns.
func (h *ScheduleHandler) load(c echo.Context) (model.Schedule, bool, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return model.Schedule{}, false, errJSON(c, http.StatusBadRequest, "invalid schedule id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	s, err := h.Schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return model.Schedule{}, false, errJSON(c, http.StatusNotFound, "schedule not found")
		}
		h.Log.WithError(err).Error("load schedule failed")
		return model.Schedule{}, false, internalError(c, "failed to load schedule")
	}
	return s, true, nil
}

func (h *ScheduleHandler) invalidate(ctx context.Context) {
	if err := h.Cache.Invalidate(ctx); err != nil {
		h.Log.WithError(err).Warn("cache invalidation failed")
	}
}
