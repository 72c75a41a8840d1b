package service

import (
	"context"
	"fmt"
	"strings"

	"aesthetica/internal/model"
)

type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	// Avatar is an image URL or data URL; an empty string clears it.
	Avatar *string `json:"avatar,omitempty"`
}

func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (model.UserStats, error) {
	var username string
	if update.Username != nil {
		username = strings.TrimSpace(*update.Username)
		if username == "" {
			return model.UserStats{}, fmt.Errorf("%w: username is empty", ErrInvalidInput)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if update.Username != nil {
		s.stats.Username = username
	}
	if update.Avatar != nil {
		if avatar := strings.TrimSpace(*update.Avatar); avatar != "" {
			s.stats.Avatar = &avatar
		} else {
			s.stats.Avatar = nil
		}
	}
	s.saveStatsLocked(ctx)
	return s.stats.Clone(), nil
}

// SetAPIKey stores the collaborator credential; it takes precedence over the configured key.
func (s *Service) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if len(key) <= minAPIKeyLength {
		return fmt.Errorf("%w: api key must be longer than %d characters", ErrInvalidInput, minAPIKeyLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.APIKey = key
	if err := s.repo.SaveSettings(ctx, s.settings); err != nil {
		s.log.Error("persist settings failed, key kept for this session", "error", err)
	}
	s.log.Info("api key updated", "api_key", key)
	return nil
}

// SetupRequired reports whether no credential is available for the collaborators.
func (s *Service) SetupRequired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeyLocked() == ""
}
