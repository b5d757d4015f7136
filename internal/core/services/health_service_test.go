package services

import "testing"

func TestHealthRollup(t *testing.T) {
	tests := []struct {
		name     string
		database HealthStatus
		redis    HealthStatus
		registry HealthStatus
		want     HealthStatus
	}{
		{"all healthy", HealthStatusHealthy, HealthStatusHealthy, HealthStatusHealthy, HealthStatusHealthy},
		{"database down", HealthStatusUnhealthy, HealthStatusHealthy, HealthStatusHealthy, HealthStatusUnhealthy},
		{"redis down", HealthStatusHealthy, HealthStatusUnhealthy, HealthStatusHealthy, HealthStatusDegraded},
		{"registry down", HealthStatusHealthy, HealthStatusHealthy, HealthStatusUnhealthy, HealthStatusDegraded},
		{"database and redis down", HealthStatusUnhealthy, HealthStatusUnhealthy, HealthStatusHealthy, HealthStatusUnhealthy},
		{"everything down", HealthStatusUnhealthy, HealthStatusUnhealthy, HealthStatusUnhealthy, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rollup(tt.database, tt.redis, tt.registry); got != tt.want {
				t.Errorf("rollup(%s, %s, %s) = %s, want %s", tt.database, tt.redis, tt.registry, got, tt.want)
			}
		})
	}
}
