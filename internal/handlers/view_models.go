package handlers

import (
	"ontheway/internal/models"
)

type errorResponse struct {
	Error  string             `json:"error"`
	Fields []validationDetail `json:"fields,omitempty"`
}

type validationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type registerRequest struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	GroupName string `json:"groupName" validate:"required"`
	Avatar    string `json:"avatar"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type preferencesRequest struct {
	DarkMode             *bool `json:"darkMode" validate:"required"`
	NotificationsEnabled *bool `json:"notificationsEnabled" validate:"required"`
}

type completionRequest struct {
	IsCompleted *bool `json:"isCompleted" validate:"required"`
}

type notesRequest struct {
	Notes string `json:"notes"`
}

type askRequest struct {
	Question string `json:"question" validate:"required,max=500"`
}

type planResponse struct {
	Days            []models.ReadingDay `json:"days"`
	Points          int                 `json:"points"`
	ProgressPercent int                 `json:"progressPercent"`
	Fallback        bool                `json:"fallback"`
}

type todayResponse struct {
	Day  models.ReadingDay `json:"day"`
	Date string            `json:"date"`
}

type readingUpdateResponse struct {
	Day             models.ReadingDay `json:"day"`
	Points          int               `json:"points"`
	ProgressPercent int               `json:"progressPercent"`
}

type askResponse struct {
	Answer string `json:"answer"`
}
