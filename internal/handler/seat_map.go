package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-ticket-reservation/internal/model"
	"github.com/iliyamo/train-ticket-reservation/internal/seating"
)

type seatView struct {
	seating.Seat
	Available bool `json:"available"`
}

type seatMapResp struct {
	ScheduleID       string              `json:"scheduleId"`
	Class            seating.ClassName   `json:"class"`
	Carriage         int                 `json:"carriage"`
	Carriages        int                 `json:"carriages"`
	Layout           seating.ClassLayout `json:"layout"`
	AisleAfter       int                 `json:"aisleAfter"`
	Rows             [][]seatView        `json:"rows"`
	AvailableCount   int                 `json:"availableCount"`
	UnavailableCount int                 `json:"unavailableCount"`
}

// classAndCarriage resolves the class (default First) and the 1-based
// carriage (default 1) against the schedule.
func classAndCarriage(s model.Schedule, rawClass, rawCarriage string) (seating.ClassName, seating.ClassLayout, int, string) {
	class := seating.First
	if strings.TrimSpace(rawClass) != "" {
		parsed, err := seating.ParseClassName(rawClass)
		if err != nil {
			return "", seating.ClassLayout{}, 0, "class must be First or Second"
		}
		class = parsed
	}
	layout, ok := s.Layout(class)
	if !ok {
		return "", seating.ClassLayout{}, 0, "class not offered on this schedule"
	}
	carriage := 1
	if strings.TrimSpace(rawCarriage) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(rawCarriage))
		if err != nil {
			return "", seating.ClassLayout{}, 0, "carriage must be a number"
		}
		carriage = n
	}
	if !layout.HasCarriage(carriage) {
		return "", seating.ClassLayout{}, 0, "carriage out of range"
	}
	return class, layout, carriage, ""
}

// SeatMap renders one carriage: the seat grid row by row with each seat's
// availability and the aisle position.
func (h *ScheduleHandler) SeatMap(c echo.Context) error {
	s, ok, err := h.load(c)
	if !ok {
		return err
	}
	class, layout, carriage, msg := classAndCarriage(s, c.QueryParam("class"), c.QueryParam("carriage"))
	if msg != "" {
		return errJSON(c, http.StatusBadRequest, msg)
	}

	avail := seating.CarriageAvailability(class, layout, carriage, s.UnavailableSeats)
	blocked := make(map[string]struct{}, len(avail.Unavailable))
	for _, seat := range avail.Unavailable {
		blocked[seat.ID] = struct{}{}
	}
	grid := seating.CarriageGeometry(class, layout, carriage).Grid()
	rows := make([][]seatView, 0, len(grid))
	for _, row := range grid {
		out := make([]seatView, 0, len(row))
		for _, seat := range row {
			_, taken := blocked[seat.ID]
			out = append(out, seatView{Seat: seat, Available: !taken})
		}
		rows = append(rows, out)
	}

	return c.JSON(http.StatusOK, seatMapResp{
		ScheduleID:       s.ID,
		Class:            class,
		Carriage:         carriage,
		Carriages:        layout.Carriages,
		Layout:           layout,
		AisleAfter:       seating.AisleAfter(layout.Cols),
		Rows:             rows,
		AvailableCount:   len(avail.Available),
		UnavailableCount: len(avail.Unavailable),
	})
}

// selectionReq is one stateless selection step.  The client keeps the
// selection and sends it back with the seat to toggle; an empty toggle
// only re-applies the bound.
type selectionReq struct {
	Class       string      `json:"class"`
	Carriage    int         `json:"carriage"`
	TicketCount interface{} `json:"ticketCount"`
	Selected    []string    `json:"selected"`
	Toggle      string      `json:"toggle"`
}

type selectionResp struct {
	Class       seating.ClassName `json:"class"`
	Carriage    int               `json:"carriage"`
	TicketCount int               `json:"ticketCount"`
	Selected    []string          `json:"selected"`
	Full        bool              `json:"full"`
	Changed     bool              `json:"changed"`
}

// Selection runs one toggle against the schedule's blocked seats.  Ignored
// toggles (blocked seat, full selection, foreign id) are not errors: the
// response simply reports changed=false.
func (h *ScheduleHandler) Selection(c echo.Context) error {
	s, ok, err := h.load(c)
	if !ok {
		return err
	}
	var req selectionReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid body")
	}
	rawCarriage := ""
	if req.Carriage != 0 {
		rawCarriage = strconv.Itoa(req.Carriage)
	}
	class, layout, carriage, msg := classAndCarriage(s, req.Class, rawCarriage)
	if msg != "" {
		return errJSON(c, http.StatusBadRequest, msg)
	}

	tickets := seating.ClampTicketCount(seating.TicketCountFrom(req.TicketCount), layout.Capacity())
	avail := seating.CarriageAvailability(class, layout, carriage, s.UnavailableSeats)
	sel := seating.ForCarriage(avail, tickets)
	sel.Replay(req.Selected)
	changed := false
	if id := strings.TrimSpace(req.Toggle); id != "" {
		changed = sel.Toggle(id)
	}

	return c.JSON(http.StatusOK, selectionResp{
		Class:       class,
		Carriage:    carriage,
		TicketCount: tickets,
		Selected:    sel.Seats(),
		Full:        sel.Full(),
		Changed:     changed,
	})
}
