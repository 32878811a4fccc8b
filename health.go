package busboard

import (
	"net/http"

	"github.com/theoremus-urban-solutions/busboard/utils"
)

type healthResponse struct {
	Status      string          `json:"status"`
	Timestamp   utils.Timestamp `json:"timestamp"`
	Environment string          `json:"environment"`
	Version     string          `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, healthResponse{
		Status:      "OK",
		Timestamp:   utils.Timestamp(s.now()),
		Environment: s.cfg.Server.Environment,
		Version:     s.cfg.Server.Version,
	})
}
