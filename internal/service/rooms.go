// ABOUTME: AI room lifecycle operations: create, update, deactivate, list
// ABOUTME: Settings are validated and merged with defaults; ownership checks are opaque

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/2389/parley/internal/prompt"
	"github.com/2389/parley/internal/store"
)

// Generation parameter bounds for room settings.
const (
	minTemperature = 0.0
	maxTemperature = 2.0
	maxTokensCap   = 4096
)

// CreateAIRoom creates a private AI room for ownerID. Unset settings fields
// fall back to defaults; invalid fields are rejected before anything is
// written.
func (s *Service) CreateAIRoom(ctx context.Context, ownerID int64, title, description string, settings store.Settings) (*store.AIRoom, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	merged, err := mergeSettings(settings)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	room := &store.AIRoom{
		RoomID:         "ai_" + xid.New().String(),
		OwnerID:        ownerID,
		Title:          title,
		Description:    description,
		Settings:       merged,
		IsActive:       true,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	s.logger.Info("ai room created", "room_id", room.RoomID, "owner_id", ownerID)
	return room, nil
}

// UpdateAIRoomSettings updates a room the caller owns. Empty title and
// description leave the stored values in place; settings are merged field
// by field the same way.
func (s *Service) UpdateAIRoomSettings(ctx context.Context, roomID string, ownerID int64, title, description string, settings store.Settings) (*store.AIRoom, error) {
	room, err := s.store.GetOwnedRoom(ctx, roomID, ownerID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		room.Title = title
	}
	if description != "" {
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		room.Description = description
	}

	if settings.Model != "" {
		room.Settings.Model = settings.Model
	}
	if settings.Temperature != 0 {
		room.Settings.Temperature = settings.Temperature
	}
	if settings.MaxTokens != 0 {
		room.Settings.MaxTokens = settings.MaxTokens
	}
	if settings.Personality != "" {
		room.Settings.Personality = settings.Personality
	}
	if _, err := mergeSettings(room.Settings); err != nil {
		return nil, err
	}

	room.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// DeactivateAIRoom soft-deletes a room the caller owns. History survives;
// the room just stops accepting messages and subscriptions.
func (s *Service) DeactivateAIRoom(ctx context.Context, roomID string, ownerID int64) error {
	if err := s.store.DeactivateRoom(ctx, roomID, ownerID); err != nil {
		return err
	}
	s.logger.Info("ai room deactivated", "room_id", roomID, "owner_id", ownerID)
	return nil
}

// ListAIRooms returns the caller's active rooms, most recently active first.
func (s *Service) ListAIRooms(ctx context.Context, ownerID int64) ([]*store.AIRoom, error) {
	return s.store.ListRooms(ctx, ownerID)
}

// mergeSettings fills unset fields from defaults and validates the rest.
func mergeSettings(settings store.Settings) (store.Settings, error) {
	defaults := store.DefaultSettings()

	if settings.Model == "" {
		settings.Model = defaults.Model
	}
	if settings.Temperature == 0 {
		settings.Temperature = defaults.Temperature
	}
	if settings.MaxTokens == 0 {
		settings.MaxTokens = defaults.MaxTokens
	}
	if settings.Personality == "" {
		settings.Personality = defaults.Personality
	}

	if settings.Temperature < minTemperature || settings.Temperature > maxTemperature {
		return store.Settings{}, &ValidationError{
			Field:  "temperature",
			Reason: fmt.Sprintf("must be between %g and %g", minTemperature, maxTemperature),
		}
	}
	if settings.MaxTokens < 1 || settings.MaxTokens > maxTokensCap {
		return store.Settings{}, &ValidationError{
			Field:  "max_tokens",
			Reason: fmt.Sprintf("must be between 1 and %d", maxTokensCap),
		}
	}
	if !prompt.Valid(prompt.Personality(settings.Personality)) {
		return store.Settings{}, &ValidationError{
			Field:  "personality",
			Reason: "unknown personality",
		}
	}
	return settings, nil
}
