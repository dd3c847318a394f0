package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"ontheway/internal/models"
	"ontheway/internal/repository"
)

// BackupVersion is written into every export; imports reject other versions
const BackupVersion = "1"

// BackupData is the complete exported state. Sessions are not exported.
type BackupData struct {
	Version     string              `json:"version"`
	ExportedAt  time.Time           `json:"exported_at"`
	Users       []UserBackup        `json:"users"`
	Devotionals []models.Devotional `json:"devotionals"`
}

// UserBackup is a reader with credential, plan and preferences
type UserBackup struct {
	ID               int64               `json:"id"`
	Email            string              `json:"email"`
	PasswordHash     string              `json:"password_hash"`
	Name             string              `json:"name"`
	GroupName        string              `json:"group_name"`
	Avatar           string              `json:"avatar,omitempty"`
	Points           int                 `json:"points"`
	ProgressPercent  int                 `json:"progress_percent"`
	OAuthProvider    string              `json:"oauth_provider,omitempty"`
	OAuthSubject     string              `json:"oauth_subject,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
	Readings         []models.ReadingDay `json:"readings"`
	DarkMode         bool                `json:"dark_mode"`
	Notifications    bool                `json:"notifications_enabled"`
	LastReminderDate string              `json:"last_reminder_date,omitempty"`
}

// BackupService handles backup and restore of a Store
type BackupService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(store repository.Store, logger *zap.Logger) *BackupService {
	return &BackupService{store: store, logger: logger}
}

// Export creates a complete backup of the store to a file
func (s *BackupService) Export(ctx context.Context, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(ctx, file); err != nil {
		return err
	}
	s.logger.Info("backup exported", zap.String("path", outputPath))
	return nil
}

// ExportToWriter writes the backup as indented JSON to w
func (s *BackupService) ExportToWriter(ctx context.Context, w io.Writer) error {
	backup, err := s.collect(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("backup written", zap.Int("users", len(backup.Users)), zap.Int("devotionals", len(backup.Devotionals)))
	return nil
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{Version: BackupVersion, ExportedAt: time.Now().UTC()}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		readings, err := s.store.GetPlan(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export readings of user %d: %w", u.ID, err)
		}
		prefs, err := s.store.GetPreferences(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to export preferences of user %d: %w", u.ID, err)
		}
		backup.Users = append(backup.Users, UserBackup{
			ID:               u.ID,
			Email:            u.Email,
			PasswordHash:     u.PasswordHash,
			Name:             u.Name,
			GroupName:        u.GroupName,
			Avatar:           u.Avatar,
			Points:           u.Points,
			ProgressPercent:  u.ProgressPercent,
			OAuthProvider:    u.OAuthProvider,
			OAuthSubject:     u.OAuthSubject,
			CreatedAt:        u.CreatedAt,
			UpdatedAt:        u.UpdatedAt,
			Readings:         readings,
			DarkMode:         prefs.DarkMode,
			Notifications:    prefs.NotificationsEnabled,
			LastReminderDate: prefs.LastReminderDate,
		})
	}

	backup.Devotionals, err = s.store.ListDevotionals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export devotionals: %w", err)
	}
	return backup, nil
}

// Import restores a backup file into the store
func (s *BackupService) Import(ctx context.Context, inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(ctx, file)
}

// ImportFromReader restores a backup read from reader. The target store is expected to be empty.
func (s *BackupService) ImportFromReader(ctx context.Context, reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	s.logger.Info("importing backup", zap.Time("exported_at", backup.ExportedAt), zap.Int("users", len(backup.Users)))

	for _, ub := range backup.Users {
		if err := s.importUser(ctx, ub); err != nil {
			return err
		}
	}

	for i := range backup.Devotionals {
		if err := s.store.PutDevotional(ctx, &backup.Devotionals[i]); err != nil {
			return fmt.Errorf("failed to import devotional %s: %w", backup.Devotionals[i].Date, err)
		}
	}

	s.logger.Info("backup import completed")
	return nil
}

func (s *BackupService) importUser(ctx context.Context, ub UserBackup) error {
	u := &models.User{
		ID:              ub.ID,
		Email:           ub.Email,
		PasswordHash:    ub.PasswordHash,
		Name:            ub.Name,
		GroupName:       ub.GroupName,
		Avatar:          ub.Avatar,
		Points:          ub.Points,
		ProgressPercent: ub.ProgressPercent,
		OAuthProvider:   ub.OAuthProvider,
		OAuthSubject:    ub.OAuthSubject,
		CreatedAt:       ub.CreatedAt,
		UpdatedAt:       ub.UpdatedAt,
	}
	if err := s.store.RestoreUser(ctx, u); err != nil {
		return fmt.Errorf("failed to import user %d: %w", ub.ID, err)
	}
	if err := s.store.SavePlan(ctx, ub.ID, ub.Readings); err != nil {
		return fmt.Errorf("failed to import readings of user %d: %w", ub.ID, err)
	}

	prefs := &models.Preferences{UserID: ub.ID, DarkMode: ub.DarkMode, NotificationsEnabled: ub.Notifications}
	if err := s.store.SavePreferences(ctx, prefs); err != nil {
		return fmt.Errorf("failed to import preferences of user %d: %w", ub.ID, err)
	}
	if ub.LastReminderDate != "" {
		if err := s.store.MarkReminderSent(ctx, ub.ID, ub.LastReminderDate); err != nil {
			return fmt.Errorf("failed to import reminder state of user %d: %w", ub.ID, err)
		}
	}
	return nil
}
