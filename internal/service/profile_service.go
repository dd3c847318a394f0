package service

import (
	"context"
	"errors"
	"fmt"

	"ontheway/internal/models"
	"ontheway/internal/repository"
	"ontheway/internal/security"
	"ontheway/internal/validation"
)

// ProfileService reads and edits reader profiles and their UI flags
type ProfileService struct {
	users          repository.ProfileStore
	prefs          repository.PreferenceStore
	avatarMaxBytes int64
}

// NewProfileService creates a new profile service
func NewProfileService(users repository.ProfileStore, prefs repository.PreferenceStore, avatarMaxBytes int64) *ProfileService {
	return &ProfileService{users: users, prefs: prefs, avatarMaxBytes: avatarMaxBytes}
}

// Get returns the reader's profile
func (s *ProfileService) Get(ctx context.Context, userID int64) (*models.User, error) {
	return s.users.GetUserByID(ctx, userID)
}

// Update applies a partial edit. An empty avatar clears it.
func (s *ProfileService) Update(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error) {
	var errs []error
	if upd.Name != nil {
		name := security.SanitizeText(*upd.Name)
		upd.Name = &name
		errs = append(errs, validation.ValidateName(name))
	}
	if upd.GroupName != nil {
		group := security.SanitizeText(*upd.GroupName)
		upd.GroupName = &group
		errs = append(errs, validation.ValidateGroupName(group))
	}
	if upd.Avatar != nil {
		errs = append(errs, validation.ValidateAvatar(*upd.Avatar, s.avatarMaxBytes))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if upd.IsEmpty() {
		return s.users.GetUserByID(ctx, userID)
	}

	user, err := s.users.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// Preferences returns the reader's UI flags
func (s *ProfileService) Preferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	return s.prefs.GetPreferences(ctx, userID)
}

// UpdatePreferences replaces the reader's UI flags
func (s *ProfileService) UpdatePreferences(ctx context.Context, userID int64, darkMode, notifications bool) (*models.Preferences, error) {
	p := &models.Preferences{
		UserID:               userID,
		DarkMode:             darkMode,
		NotificationsEnabled: notifications,
	}
	if err := s.prefs.SavePreferences(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return s.prefs.GetPreferences(ctx, userID)
}
