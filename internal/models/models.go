// models/models.go
package models

import "time"

// User представляет пользователя платформы
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username" db:"username"`
	PassHash  string    `json:"-" db:"password_hash"`
	Bio       string    `json:"bio" db:"bio"`
	Skills    []string  `json:"skills" db:"skills"`
	AvatarURL string    `json:"avatar_url" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Idea представляет идею проекта, к которой можно подавать заявки
type Idea struct {
	ID             int64      `json:"id" db:"id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	RequiredSkills []string   `json:"required_skills" db:"required_skills"`
	AuthorID       int64      `json:"author_id" db:"author_id"`
	AuthorUsername string     `json:"author_username" db:"-"`
	Status         string     `json:"status" db:"status"`
	Progress       *int       `json:"progress_percentage,omitempty" db:"progress_percentage"`
	StartDate      *time.Time `json:"start_date,omitempty" db:"start_date"`
	Deadline       *time.Time `json:"deadline,omitempty" db:"deadline"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	// Поля проекции для списков и детального просмотра
	LikeCount         int   `json:"like_count" db:"-"`
	ApplicationsCount int   `json:"applications_count" db:"-"`
	Liked             *bool `json:"liked,omitempty" db:"-"`
	HasApplied        *bool `json:"has_applied,omitempty" db:"-"`
	Team              *Team `json:"team,omitempty" db:"-"`
}

// Application представляет заявку пользователя на участие в идее
type Application struct {
	ID            int64      `json:"id" db:"id"`
	IdeaID        int64      `json:"idea_id" db:"idea_id"`
	IdeaTitle     string     `json:"idea_title,omitempty" db:"-"`
	ApplicantID   int64      `json:"applicant_id" db:"applicant_id"`
	Applicant     *User      `json:"applicant,omitempty" db:"-"`
	Message       string     `json:"message" db:"message"`
	Motivation    string     `json:"motivation" db:"motivation"`
	Status        string     `json:"status" db:"status"`
	AppliedAt     time.Time  `json:"applied_at" db:"applied_at"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewMessage string     `json:"review_message,omitempty" db:"review_message"`
}

// Team представляет команду, собранную вокруг идеи
type Team struct {
	ID               int64        `json:"id" db:"id"`
	IdeaID           int64        `json:"idea_id" db:"idea_id"`
	IdeaTitle        string       `json:"idea_title,omitempty" db:"-"`
	Name             string       `json:"name" db:"name"`
	Description      string       `json:"description" db:"description"`
	Status           string       `json:"status" db:"status"`
	DiscordInviteURL string       `json:"discord_invite_url" db:"discord_invite_url"`
	Members          []TeamMember `json:"members,omitempty" db:"-"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// TeamMember представляет участника команды
type TeamMember struct {
	ID       int64     `json:"id" db:"id"`
	TeamID   int64     `json:"team_id" db:"team_id"`
	UserID   int64     `json:"user_id" db:"user_id"`
	Username string    `json:"username" db:"-"`
	Role     string    `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// Work представляет опубликованный результат работы команды
type Work struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Technologies []string  `json:"technologies" db:"technologies"`
	ImageURL     string    `json:"image_url" db:"image_url"`
	LiveURL      string    `json:"live_url" db:"live_url"`
	GithubURL    string    `json:"github_url" db:"github_url"`
	IdeaID       *int64    `json:"idea_id,omitempty" db:"idea_id"`
	CreatorID    int64     `json:"creator_id" db:"creator_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	VoteCount    int    `json:"vote_count" db:"-"`
	Voted        *bool  `json:"voted,omitempty" db:"-"`
	Contributors []User `json:"contributors,omitempty" db:"-"`
}

// Notification представляет уведомление пользователя
type Notification struct {
	ID        int64          `json:"id" db:"id"`
	UserID    int64          `json:"user_id" db:"user_id"`
	Type      string         `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	Payload   map[string]any `json:"payload,omitempty" db:"payload"`
	IsRead    bool           `json:"is_read" db:"is_read"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// ProjectSettings представляет настройки проекта (1:1 с идеей)
type ProjectSettings struct {
	IdeaID       int64     `json:"idea_id" db:"idea_id"`
	Recruiting   bool      `json:"recruiting" db:"recruiting"`
	ExternalLink string    `json:"external_link" db:"external_link"`
	MaxMembers   int       `json:"max_members" db:"max_members"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AdminStats представляет сводную статистику платформы
type AdminStats struct {
	Users         int64            `json:"users"`
	Ideas         int64            `json:"ideas"`
	Applications  int64            `json:"applications"`
	Teams         int64            `json:"teams"`
	Works         int64            `json:"works"`
	IdeasByStatus map[string]int64 `json:"ideas_by_status"`
}

// Константы статусов идеи
const (
	IdeaStatusOpen        = "open"
	IdeaStatusDevelopment = "development"
	IdeaStatusCompleted   = "completed"
)

// Константы статусов заявки
const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusApproved = "approved"
	ApplicationStatusRejected = "rejected"
)

// Константы статусов команды
const (
	TeamStatusActive    = "active"
	TeamStatusDisbanded = "disbanded"
)

// Роли участников команды
const (
	TeamRoleLeader = "leader"
	TeamRoleMember = "member"
)

// Типы уведомлений
const (
	NotificationApplicationApproved = "application_approved"
	NotificationApplicationRejected = "application_rejected"
	NotificationTeamDisbanded       = "team_disbanded"
)
