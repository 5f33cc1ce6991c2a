package database

import "time"

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(255)" json:"name"`
	Avatar       string    `gorm:"type:varchar(512)" json:"avatar"`
	PasswordHash string    `gorm:"type:varchar(128)" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// AuthSession is the token-bearing login session of the relational variant.
// Distinct from conversation sessions; rows expire and are swept hourly.
type AuthSession struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	UserID    uint64    `gorm:"index;not null" json:"-"`
	Token     string    `gorm:"type:varchar(512);uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuthSession) TableName() string { return "auth_sessions" }

type Video struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	YouTubeID    string    `gorm:"column:youtube_id;type:varchar(16);uniqueIndex;not null" json:"youtube_id"`
	Title        string    `gorm:"type:varchar(512);not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	ChannelTitle string    `gorm:"type:varchar(255)" json:"channel_title"`
	Duration     string    `gorm:"type:varchar(32)" json:"duration"`
	ViewCount    uint64    `json:"view_count"`
	LikeCount    uint64    `json:"like_count"`
	Transcript   string    `gorm:"type:longtext" json:"transcript,omitempty"`
	ThumbnailURL string    `gorm:"type:varchar(512)" json:"thumbnail_url"`
	URL          string    `gorm:"type:varchar(512);not null" json:"url"`
	UserID       *uint64   `gorm:"index" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Video) TableName() string { return "videos" }

type Chat struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   uint64    `gorm:"index;not null" json:"video_id"`
	UserID    *uint64   `gorm:"index" json:"-"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Response  string    `gorm:"type:text" json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

func (Chat) TableName() string { return "chats" }

type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// AnalysisJob tracks one async analyze request from enqueue to completion.
type AnalysisJob struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"` // ULID
	SessionID string    `gorm:"type:varchar(64);index;not null" json:"session_id"`
	URL       string    `gorm:"type:varchar(512);not null" json:"url"`
	Status    JobStatus `gorm:"type:varchar(16);index;not null" json:"status"`

	// Filled when succeeded
	VideoID *uint64 `gorm:"index" json:"video_id,omitempty"`

	// Filled when failed
	Error *string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnalysisJob) TableName() string { return "analysis_jobs" }
