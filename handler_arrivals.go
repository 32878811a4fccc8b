package busboard

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/busboard/arrivals"
	"github.com/theoremus-urban-solutions/busboard/utils"
)

type arrivalsResponse struct {
	Stops     []arrivals.StopResult `json:"stops"`
	Timestamp utils.Timestamp       `json:"timestamp"`
}

func (s *Server) handleArrivals(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("arrivals handler panicked",
				zap.Any("panic", rec),
				zap.String("request_id", RequestID(r.Context())))
			_ = utils.WriteError(w, http.StatusInternalServerError, utils.ErrorResponse{Error: "Failed to fetch arrivals"})
		}
	}()

	stops := s.deps.Arrivals.ResolveAll(r.Context(), s.cfg.GTFSRT.StopIDs)
	_ = utils.WriteJSON(w, http.StatusOK, arrivalsResponse{
		Stops:     stops,
		Timestamp: utils.Timestamp(s.now()),
	})
}
