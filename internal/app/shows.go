package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Show struct {
	Id            string            `json:"id"`
	MovieTitle    string            `json:"movieTitle"`
	TheaterId     string            `json:"theaterId"`
	StartTime     time.Time         `json:"startTime"`
	Price         decimal.Decimal   `json:"price"`
	OccupiedSeats map[string]string `json:"occupiedSeats"`
	CreatedAt     time.Time         `json:"createdAt"`
}

type ShowsResponse struct {
	Success bool   `json:"success"`
	Shows   []Show `json:"shows"`
}

type ShowResponse struct {
	Success bool `json:"success"`
	Show    Show `json:"show"`
}

// GetShowsHandler returns every show with its occupied-seats map; clients
// render seat availability straight from it.
func (app *Application) GetShowsHandler(w http.ResponseWriter, r *http.Request) {
	shows, err := app.showRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := ShowsResponse{
		Success: true,
		Shows:   toApiShows(shows),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetShowHandler(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "showId")

	show, err := app.showRepo.GetById(r.Context(), showID)
	if err != nil {
		if errors.Is(err, domain.ErrShowNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := ShowResponse{
		Success: true,
		Show:    toApiShow(*show),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiShows(shows []domain.Show) []Show {
	apiShows := make([]Show, len(shows))

	for i, v := range shows {
		apiShows[i] = toApiShow(v)
	}

	return apiShows
}

func toApiShow(show domain.Show) Show {
	occupied := show.OccupiedSeats
	if occupied == nil {
		occupied = map[string]string{}
	}

	return Show{
		Id:            show.ID,
		MovieTitle:    show.MovieTitle,
		TheaterId:     show.TheaterID,
		StartTime:     show.StartTime,
		Price:         show.Price,
		OccupiedSeats: occupied,
		CreatedAt:     show.CreatedAt,
	}
}
