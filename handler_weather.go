package busboard

import (
	"net/http"
	"strconv"

	"github.com/theoremus-urban-solutions/busboard/utils"
)

const (
	minForecastDays = 1
	maxForecastDays = 14
)

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	location := s.cfg.Weather.Location
	if q := r.URL.Query().Get("q"); q != "" {
		location = q
	}

	days := s.cfg.Weather.Days
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minForecastDays || n > maxForecastDays {
			_ = utils.WriteError(w, http.StatusBadRequest, utils.ErrorResponse{
				Error:   "Invalid days parameter",
				Message: "days must be an integer between 1 and 14",
			})
			return
		}
		days = n
	}

	forecast := s.deps.Weather.FetchForecast(r.Context(), location, days)
	if forecast == nil {
		_ = utils.WriteError(w, http.StatusInternalServerError, utils.ErrorResponse{Error: "Failed to fetch weather"})
		return
	}
	_ = utils.WriteRawJSON(w, http.StatusOK, forecast)
}
