package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/RyanBlaney/brainwave-monitor/pkg/source/common"
)

// HealthResponse reports buffer fill and ingestion progress
type HealthResponse struct {
	Status         string              `json:"status"`
	WindowSamples  int                 `json:"window_samples"`
	WindowCapacity int                 `json:"window_capacity"`
	WindowFill     float64             `json:"window_fill"`
	Source         *common.SourceStats `json:"source,omitempty"`
	UptimeSeconds  int64               `json:"uptime_seconds"`
}

const (
	StatusOK         = "ok"
	StatusCollecting = "collecting"
)

func (s *Server) handleLatest(c *gin.Context) {
	assessment := s.assessor.GetAssessment()

	for _, observer := range s.observers {
		observer.ObserveAssessment(assessment)
	}

	c.JSON(http.StatusOK, assessment)
}

func (s *Server) handleHealth(c *gin.Context) {
	n, capacity := s.assessor.WindowFill()

	resp := HealthResponse{
		Status:         StatusCollecting,
		WindowSamples:  n,
		WindowCapacity: capacity,
		UptimeSeconds:  int64(time.Since(s.started).Seconds()),
	}
	if capacity > 0 {
		resp.WindowFill = float64(n) / float64(capacity)
	}
	if n >= capacity {
		resp.Status = StatusOK
	}
	if s.stats != nil {
		stats := s.stats()
		resp.Source = &stats
	}

	c.JSON(http.StatusOK, resp)
}
