package app

import (
	"context"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.Analyzer != nil {
		status.Components["analyzer"] = "ok"
	} else {
		status.Status = "degraded"
		status.Components["analyzer"] = "missing"
	}

	if s.app.Store != nil {
		status.Components["history"] = "ok"
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}
