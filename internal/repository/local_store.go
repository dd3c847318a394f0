package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"ontheway/internal/models"
)

// Blob keys of the local store layout
const (
	KeyUsers       = "otw_db_users"
	KeyReadings    = "otw_db_readings"
	KeySessions    = "otw_db_sessions"
	KeyPreferences = "otw_db_preferences"
	KeyDevotionals = "otw_db_devotionals"
)

type localUser struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"passwordHash"`
	Name            string    `json:"name"`
	GroupName       string    `json:"groupName"`
	Avatar          string    `json:"avatar"`
	Points          int       `json:"points"`
	ProgressPercent int       `json:"progressPercent"`
	OAuthProvider   string    `json:"oauthProvider"`
	OAuthSubject    string    `json:"oauthSubject"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type localUsers struct {
	NextID int64       `json:"nextId"`
	Users  []localUser `json:"users"`
}

type localPreferences struct {
	UserID               int64     `json:"userId"`
	DarkMode             bool      `json:"darkMode"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	LastReminderDate     string    `json:"lastReminderDate"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// LocalStore keeps everything in memory as keyed JSON blobs, optionally
// flushed to a single file after every write. Suited to tests and single-node use.
type LocalStore struct {
	mu   sync.Mutex
	path string

	nextID      int64
	users       map[int64]localUser
	readings    map[int64][]models.ReadingDay
	sessions    map[string]models.Session
	preferences map[int64]localPreferences
	devotionals map[string]models.Devotional
}

// NewLocalStore opens a local store. An empty path keeps it in memory only;
// otherwise existing blobs are loaded from path.
func NewLocalStore(path string) (*LocalStore, error) {
	s := &LocalStore{
		path:        path,
		nextID:      1,
		users:       map[int64]localUser{},
		readings:    map[int64][]models.ReadingDay{},
		sessions:    map[string]models.Session{},
		preferences: map[int64]localPreferences{},
		devotionals: map[string]models.Devotional{},
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local store: %w", err)
	}
	if err := s.decode(data); err != nil {
		return nil, fmt.Errorf("failed to load local store %s: %w", path, err)
	}
	return s, nil
}

func (s *LocalStore) decode(data []byte) error {
	var blobs map[string]json.RawMessage
	if err := json.Unmarshal(data, &blobs); err != nil {
		return err
	}

	if raw, ok := blobs[KeyUsers]; ok {
		var u localUsers
		if err := json.Unmarshal(raw, &u); err != nil {
			return fmt.Errorf("%s: %w", KeyUsers, err)
		}
		s.nextID = u.NextID
		for _, user := range u.Users {
			s.users[user.ID] = user
			if user.ID >= s.nextID {
				s.nextID = user.ID + 1
			}
		}
	}
	if raw, ok := blobs[KeyReadings]; ok {
		if err := json.Unmarshal(raw, &s.readings); err != nil {
			return fmt.Errorf("%s: %w", KeyReadings, err)
		}
	}
	if raw, ok := blobs[KeySessions]; ok {
		if err := json.Unmarshal(raw, &s.sessions); err != nil {
			return fmt.Errorf("%s: %w", KeySessions, err)
		}
	}
	if raw, ok := blobs[KeyPreferences]; ok {
		if err := json.Unmarshal(raw, &s.preferences); err != nil {
			return fmt.Errorf("%s: %w", KeyPreferences, err)
		}
	}
	if raw, ok := blobs[KeyDevotionals]; ok {
		if err := json.Unmarshal(raw, &s.devotionals); err != nil {
			return fmt.Errorf("%s: %w", KeyDevotionals, err)
		}
	}
	return nil
}

// Blobs returns the serialized state under its fixed keys
func (s *LocalStore) Blobs() (map[string]json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encode()
}

func (s *LocalStore) encode() (map[string]json.RawMessage, error) {
	users := localUsers{NextID: s.nextID, Users: make([]localUser, 0, len(s.users))}
	for _, u := range s.users {
		users.Users = append(users.Users, u)
	}
	sort.Slice(users.Users, func(i, j int) bool { return users.Users[i].ID < users.Users[j].ID })

	values := map[string]interface{}{
		KeyUsers:       users,
		KeyReadings:    s.readings,
		KeySessions:    s.sessions,
		KeyPreferences: s.preferences,
		KeyDevotionals: s.devotionals,
	}
	blobs := make(map[string]json.RawMessage, len(values))
	for key, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		blobs[key] = raw
	}
	return blobs, nil
}

// flush writes the blobs to disk with a rename so readers never see a partial file.
// Callers hold s.mu.
func (s *LocalStore) flush() error {
	if s.path == "" {
		return nil
	}
	blobs, err := s.encode()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(blobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode local store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create local store directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace local store: %w", err)
	}
	return nil
}

// commit flushes a change already applied in memory and reverts it with
// undo when the flush fails, so memory never runs ahead of the file.
func (s *LocalStore) commit(undo ...func()) error {
	if err := s.flush(); err != nil {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
		return err
	}
	return nil
}

// snapshot captures m[key] so it can be put back later
func snapshot[K comparable, V any](m map[K]V, key K) func() {
	prev, had := m[key]
	return func() {
		if had {
			m[key] = prev
		} else {
			delete(m, key)
		}
	}
}

func (u localUser) model() *models.User {
	return &models.User{
		ID:              u.ID,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Name:            u.Name,
		GroupName:       u.GroupName,
		Avatar:          u.Avatar,
		Points:          u.Points,
		ProgressPercent: u.ProgressPercent,
		OAuthProvider:   u.OAuthProvider,
		OAuthSubject:    u.OAuthSubject,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func toLocalUser(u *models.User) localUser {
	return localUser{
		ID:              u.ID,
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Name:            u.Name,
		GroupName:       u.GroupName,
		Avatar:          u.Avatar,
		Points:          u.Points,
		ProgressPercent: u.ProgressPercent,
		OAuthProvider:   u.OAuthProvider,
		OAuthSubject:    u.OAuthSubject,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (s *LocalStore) emailTaken(email string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func copyDays(days []models.ReadingDay) []models.ReadingDay {
	out := make([]models.ReadingDay, len(days))
	for i, d := range days {
		d.Chapters = append([]string(nil), d.Chapters...)
		out[i] = d
	}
	return out
}

// CreateUser stores u and seeds its plan
func (s *LocalStore) CreateUser(ctx context.Context, u *models.User, plan []models.ReadingDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(u.Email) {
		return ErrDuplicateEmail
	}

	now := time.Now().UTC()
	id := s.nextID
	undoUser, undoPlan := snapshot(s.users, id), snapshot(s.readings, id)

	s.nextID++
	created := *u
	created.ID = id
	created.Points, created.ProgressPercent = 0, 0
	created.CreatedAt, created.UpdatedAt = now, now
	s.users[id] = toLocalUser(&created)
	s.readings[id] = copyDays(plan)

	if err := s.commit(undoUser, undoPlan, func() { s.nextID = id }); err != nil {
		return err
	}
	*u = created
	return nil
}

// RestoreUser inserts u keeping its ID
func (s *LocalStore) RestoreUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.ID]; exists || s.emailTaken(u.Email) {
		return ErrDuplicateEmail
	}
	undoUser, prevNextID := snapshot(s.users, u.ID), s.nextID
	s.users[u.ID] = toLocalUser(u)
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
	return s.commit(undoUser, func() { s.nextID = prevNextID })
}

// GetUserByID retrieves a user by ID
func (s *LocalStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.model(), nil
}

// GetUserByEmail retrieves a user by email address
func (s *LocalStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u.model(), nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByOAuth retrieves a user linked to a provider identity
func (s *LocalStore) GetUserByOAuth(ctx context.Context, provider, subject string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.OAuthProvider == provider && u.OAuthSubject == subject {
			return u.model(), nil
		}
	}
	return nil, ErrNotFound
}

// LinkOAuthProvider links a provider identity to a user
func (s *LocalStore) LinkOAuthProvider(ctx context.Context, userID int64, provider, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	undo := snapshot(s.users, userID)
	u.OAuthProvider, u.OAuthSubject = provider, subject
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return s.commit(undo)
}

// UpdateProfile applies the non-nil fields of upd
func (s *LocalStore) UpdateProfile(ctx context.Context, userID int64, upd models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.GroupName != nil {
		u.GroupName = *upd.GroupName
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	u.UpdatedAt = time.Now().UTC()
	undo := snapshot(s.users, userID)
	s.users[userID] = u
	if err := s.commit(undo); err != nil {
		return nil, err
	}
	return u.model(), nil
}

// UpdateScore stores the derived points and progress
func (s *LocalStore) UpdateScore(ctx context.Context, userID int64, score models.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	undo := snapshot(s.users, userID)
	u.Points, u.ProgressPercent = score.Points, score.ProgressPercent
	u.UpdatedAt = time.Now().UTC()
	s.users[userID] = u
	return s.commit(undo)
}

// ListUsers returns every user ordered by ID
func (s *LocalStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u.model())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// GetPlan returns the user's plan ordered by date
func (s *LocalStore) GetPlan(ctx context.Context, userID int64) ([]models.ReadingDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	days := copyDays(s.readings[userID])
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}

// SavePlan replaces the user's plan
func (s *LocalStore) SavePlan(ctx context.Context, userID int64, days []models.ReadingDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo := snapshot(s.readings, userID)
	s.readings[userID] = copyDays(days)
	return s.commit(undo)
}

// SaveReading upserts one reading day
func (s *LocalStore) SaveReading(ctx context.Context, userID int64, day models.ReadingDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo := snapshot(s.readings, userID)
	days := copyDays(s.readings[userID])
	day.Chapters = append([]string(nil), day.Chapters...)
	replaced := false
	for i := range days {
		if days[i].Date == day.Date {
			days[i] = day
			replaced = true
			break
		}
	}
	if !replaced {
		days = append(days, day)
	}
	s.readings[userID] = days
	return s.commit(undo)
}

// CreateSession creates a new session for a user
func (s *LocalStore) CreateSession(ctx context.Context, sessionID string, userID int64, expiresAt time.Time) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session := models.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: time.Now().UTC(),
	}
	undo := snapshot(s.sessions, sessionID)
	s.sessions[sessionID] = session
	if err := s.commit(undo); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetSession retrieves a session by ID
func (s *LocalStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

// DeleteSession removes a session
func (s *LocalStore) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	undo := snapshot(s.sessions, sessionID)
	delete(s.sessions, sessionID)
	return s.commit(undo)
}

// DeleteExpiredSessions removes expired sessions
func (s *LocalStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	var undo []func()
	for id, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			undo = append(undo, snapshot(s.sessions, id))
			delete(s.sessions, id)
		}
	}
	if len(undo) == 0 {
		return 0, nil
	}
	if err := s.commit(undo...); err != nil {
		return 0, err
	}
	return int64(len(undo)), nil
}

// GetPreferences returns the user's flags or defaults
func (s *LocalStore) GetPreferences(ctx context.Context, userID int64) (*models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.preferences[userID]
	if !ok {
		return defaultPreferences(userID), nil
	}
	return p.model(), nil
}

// SavePreferences stores the UI flags, keeping the reminder bookkeeping
func (s *LocalStore) SavePreferences(ctx context.Context, p *models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = time.Now().UTC()
	existing := s.preferences[p.UserID]
	undo := snapshot(s.preferences, p.UserID)
	s.preferences[p.UserID] = localPreferences{
		UserID:               p.UserID,
		DarkMode:             p.DarkMode,
		NotificationsEnabled: p.NotificationsEnabled,
		LastReminderDate:     existing.LastReminderDate,
		UpdatedAt:            p.UpdatedAt,
	}
	return s.commit(undo)
}

// ListNotificationRecipients returns preferences with notifications enabled
func (s *LocalStore) ListNotificationRecipients(ctx context.Context) ([]models.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Preferences
	for _, p := range s.preferences {
		if p.NotificationsEnabled {
			out = append(out, *p.model())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// MarkReminderSent records the last reminder date
func (s *LocalStore) MarkReminderSent(ctx context.Context, userID int64, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.preferences[userID]
	if !ok {
		return nil
	}
	undo := snapshot(s.preferences, userID)
	p.LastReminderDate = date
	s.preferences[userID] = p
	return s.commit(undo)
}

func (p localPreferences) model() *models.Preferences {
	return &models.Preferences{
		UserID:               p.UserID,
		DarkMode:             p.DarkMode,
		NotificationsEnabled: p.NotificationsEnabled,
		LastReminderDate:     p.LastReminderDate,
		UpdatedAt:            p.UpdatedAt,
	}
}

// GetDevotional retrieves the devotional for a date
func (s *LocalStore) GetDevotional(ctx context.Context, date string) (*models.Devotional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devotionals[date]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// PutDevotional keeps the first devotional stored for a date
func (s *LocalStore) PutDevotional(ctx context.Context, d *models.Devotional) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.devotionals[d.Date]; exists {
		return nil
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	undo := snapshot(s.devotionals, d.Date)
	s.devotionals[d.Date] = *d
	return s.commit(undo)
}

// ListDevotionals returns all devotionals ordered by date
func (s *LocalStore) ListDevotionals(ctx context.Context) ([]models.Devotional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Devotional, 0, len(s.devotionals))
	for _, d := range s.devotionals {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Ping always succeeds for the local store
func (s *LocalStore) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the store one last time
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

var _ Store = (*LocalStore)(nil)
