package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/dto"
)

// PreferenceService persists per-user UI preferences in a Redis hash so
// they survive restarts and follow the user across devices.
type PreferenceService struct {
	client *redis.Client
	logger *zap.Logger
}

// NewPreferenceService instantiates PreferenceService.
func NewPreferenceService(client *redis.Client, logger *zap.Logger) *PreferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{client: client, logger: logger}
}

func preferenceKey(userID string) string {
	return fmt.Sprintf("prefs:%s", userID)
}

// Get returns the stored preferences, defaulting each missing field.
func (s *PreferenceService) Get(ctx context.Context, userID string) (dto.Preferences, error) {
	prefs := dto.Preferences{EmailNotif: true}
	if s.client == nil {
		return prefs, nil
	}

	values, err := s.client.HGetAll(ctx, preferenceKey(userID)).Result()
	if err != nil {
		return prefs, fmt.Errorf("load preferences: %w", err)
	}
	if v, ok := values["darkMode"]; ok {
		prefs.DarkMode = v == "1"
	}
	if v, ok := values["emailNotif"]; ok {
		prefs.EmailNotif = v == "1"
	}
	return prefs, nil
}

// Set stores the preferences, overwriting both fields.
func (s *PreferenceService) Set(ctx context.Context, userID string, prefs dto.Preferences) error {
	if s.client == nil {
		return nil
	}
	err := s.client.HSet(ctx, preferenceKey(userID),
		"darkMode", boolField(prefs.DarkMode),
		"emailNotif", boolField(prefs.EmailNotif),
	).Err()
	if err != nil {
		return fmt.Errorf("store preferences: %w", err)
	}
	s.logger.Debug("preferences stored",
		zap.String("user_id", userID),
		zap.Bool("dark_mode", prefs.DarkMode))
	return nil
}

func boolField(v bool) string {
	return strconv.Itoa(boolToInt(v))
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
