package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/youtube"
)

// Connect opens the MySQL database and migrates the schema.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &AuthSession{}, &Video{}, &Chat{}, &AnalysisJob{})
}

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Users

func (r *Repo) CreateUser(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetUserByID(ctx context.Context, id uint64) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// Auth sessions

func (r *Repo) CreateAuthSession(ctx context.Context, s *AuthSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *Repo) GetAuthSessionByToken(ctx context.Context, token string) (*AuthSession, error) {
	var s AuthSession
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repo) DeleteAuthSession(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&AuthSession{}).Error
}

// CleanupExpiredAuthSessions removes rows past their expiry and returns how
// many were deleted. Runs on the hourly sweep.
func (r *Repo) CleanupExpiredAuthSessions(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&AuthSession{})
	return res.RowsAffected, res.Error
}

// Videos

// UpsertVideo inserts the video or, when the youtube_id already exists,
// refreshes its mutable columns.
func (r *Repo) UpsertVideo(ctx context.Context, v *Video) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "youtube_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "channel_title", "duration",
			"view_count", "like_count", "transcript", "thumbnail_url", "url", "updated_at",
		}),
	}).Create(v).Error
}

func (r *Repo) GetVideoByYouTubeID(ctx context.Context, youtubeID string) (*Video, error) {
	var v Video
	if err := r.db.WithContext(ctx).Where("youtube_id = ?", youtubeID).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// VideoFromResult maps an analysis result onto a Video row. The youtube id is
// re-derived from the source URL.
func VideoFromResult(res *analysis.Result) (*Video, error) {
	youtubeID, err := youtube.ExtractVideoID(res.SourceURL)
	if err != nil {
		return nil, err
	}
	return &Video{
		YouTubeID:    youtubeID,
		Title:        res.Title,
		Description:  res.Description,
		ChannelTitle: res.ChannelTitle,
		Duration:     res.Duration,
		ViewCount:    res.ViewCount,
		LikeCount:    res.LikeCount,
		Transcript:   res.Transcript,
		ThumbnailURL: res.ThumbnailURL,
		URL:          res.SourceURL,
	}, nil
}

// Chats

func (r *Repo) CreateChat(ctx context.Context, c *Chat) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) ListVideoChats(ctx context.Context, videoID uint64, limit int) ([]Chat, error) {
	if limit <= 0 {
		limit = 20
	}
	var chats []Chat
	if err := r.db.WithContext(ctx).
		Where("video_id = ?", videoID).
		Order("created_at DESC").
		Limit(limit).
		Find(&chats).Error; err != nil {
		return nil, err
	}
	return chats, nil
}

// Analysis jobs

func (r *Repo) CreateJob(ctx context.Context, job *AnalysisJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *Repo) GetJobByID(ctx context.Context, id string) (*AnalysisJob, error) {
	var j AnalysisJob
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *Repo) MarkJobRunning(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&AnalysisJob{}).
		Where("id = ? AND status = ?", id, JobQueued).
		Update("status", JobRunning).Error
}

func (r *Repo) MarkJobSucceeded(ctx context.Context, id string, videoID uint64) error {
	return r.db.WithContext(ctx).Model(&AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   JobSucceeded,
			"video_id": videoID,
			"error":    nil,
		}).Error
}

func (r *Repo) MarkJobFailed(ctx context.Context, id string, errMsg string) error {
	return r.db.WithContext(ctx).Model(&AnalysisJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":   JobFailed,
			"error":    errMsg,
			"video_id": nil,
		}).Error
}

// Stats

type Stats struct {
	Users        int64 `json:"users"`
	Videos       int64 `json:"videos"`
	Chats        int64 `json:"chats"`
	AuthSessions int64 `json:"sessions"`
}

func (r *Repo) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&s.Users).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&Video{}).Count(&s.Videos).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&Chat{}).Count(&s.Chats).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&AuthSession{}).Count(&s.AuthSessions).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
