package analysis

import "time"

// Result is the normalized record of one analyzed video: metadata plus the
// transcript when extraction produced one. Fields are never updated after
// creation.
type Result struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     string    `json:"duration"`
	ViewCount    uint64    `json:"viewCount"`
	LikeCount    uint64    `json:"likeCount"`
	ChannelTitle string    `json:"channelTitle"`
	Transcript   string    `json:"transcript,omitempty"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	SourceURL    string    `json:"url"`
	AnalyzedAt   time.Time `json:"processedAt"`
}
