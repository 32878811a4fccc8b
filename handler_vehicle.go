package busboard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/theoremus-urban-solutions/busboard/arrivals"
	"github.com/theoremus-urban-solutions/busboard/utils"
)

func (s *Server) handleVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleId")

	pos, err := s.deps.Vehicles.Lookup(r.Context(), vehicleID)
	switch {
	case errors.Is(err, arrivals.ErrVehicleNotFound):
		_ = utils.WriteError(w, http.StatusNotFound, utils.ErrorResponse{
			Error:      "Vehicle not found",
			SearchedID: vehicleID,
			Message:    fmt.Sprintf("No vehicle with ID %q in the current vehicle positions feed", vehicleID),
		})
	case err != nil:
		s.logger.Error("failed to fetch vehicle position",
			zap.String("vehicle_id", vehicleID),
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err))
		_ = utils.WriteError(w, http.StatusInternalServerError, utils.ErrorResponse{Error: "Failed to fetch vehicle position"})
	default:
		_ = utils.WriteJSON(w, http.StatusOK, pos)
	}
}
