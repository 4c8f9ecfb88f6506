package service

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/geo"
	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/models"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
	appErrors "github.com/ankur315-bit/SmartAttend-TechSprint/pkg/errors"
)

// GeofenceService gates attendance on physical proximity to the campus
// anchor point. Every check is a single shot: a rejected reading is never
// retried automatically, the user re-invokes explicitly.
type GeofenceService struct {
	anchor  models.GeoPosition
	radius  float64
	metrics *MetricsService
	logger  *zap.Logger
}

// NewGeofenceService instantiates GeofenceService.
func NewGeofenceService(cfg config.GeofenceConfig, metrics *MetricsService, logger *zap.Logger) *GeofenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeofenceService{
		anchor: models.GeoPosition{
			Latitude:  cfg.AnchorLatitude,
			Longitude: cfg.AnchorLongitude,
		},
		radius:  cfg.RadiusMeters,
		metrics: metrics,
		logger:  logger,
	}
}

// Verify compares one device reading against the anchor and radius.
// Unavailable hardware fails immediately with no-gps; a denied permission
// prompt fails with denied. Out-of-range rejections carry the measured
// distance so the user knows how far to move.
func (s *GeofenceService) Verify(reading models.LocationReading) models.GeofenceResult {
	if reading.Unavailable {
		s.observe(string(models.ReasonNoGPS))
		return models.GeofenceResult{OK: false, Reason: models.ReasonNoGPS}
	}
	if reading.Denied {
		s.observe(string(models.ReasonDenied))
		return models.GeofenceResult{OK: false, Reason: models.ReasonDenied}
	}

	dist := geo.DistanceMeters(
		reading.Position.Latitude, reading.Position.Longitude,
		s.anchor.Latitude, s.anchor.Longitude,
	)
	if math.IsNaN(dist) {
		s.observe(string(models.ReasonNoGPS))
		return models.GeofenceResult{OK: false, Reason: models.ReasonNoGPS}
	}

	if dist <= s.radius {
		s.observe("verified")
		return models.GeofenceResult{OK: true, Distance: dist}
	}

	s.observe(string(models.ReasonOutOfRange))
	return models.GeofenceResult{OK: false, Distance: dist, Reason: models.ReasonOutOfRange}
}

// ResultError maps a rejected result onto the error surfaced to the user.
func ResultError(result models.GeofenceResult) error {
	if result.OK {
		return nil
	}
	switch result.Reason {
	case models.ReasonNoGPS:
		return appErrors.ErrLocationUnavailable
	case models.ReasonDenied:
		return appErrors.ErrLocationDenied
	case models.ReasonOutOfRange:
		return appErrors.Clone(appErrors.ErrOutOfRange,
			fmt.Sprintf("Too far (%dm). Move inside campus.", int(result.Distance+0.5)))
	default:
		return appErrors.ErrInternal
	}
}

func (s *GeofenceService) observe(result string) {
	if s.metrics != nil {
		s.metrics.ObserveGeofence(result)
	}
}
