package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Metadata is the subset of the Data API video resource the analysis needs.
type Metadata struct {
	VideoID      string
	Title        string
	Description  string
	ChannelTitle string
	Duration     string // ISO 8601, e.g. PT4M13S
	ViewCount    uint64
	LikeCount    uint64
	ThumbnailURL string
}

// Client fetches video metadata from the YouTube Data API v3 using an API key.
type Client struct {
	service *youtube.Service
}

func NewClient(ctx context.Context, apiKey string, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("youtube: api key is required")
	}
	all := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}
	return &Client{service: service}, nil
}

// VideoMetadata looks up a single video. A missing video is an error.
func (c *Client) VideoMetadata(ctx context.Context, videoID string) (*Metadata, error) {
	resp, err := c.service.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("youtube: videos.list: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("youtube: video %s not found", videoID)
	}

	item := resp.Items[0]
	m := &Metadata{VideoID: item.Id}
	if item.Snippet != nil {
		m.Title = item.Snippet.Title
		m.Description = item.Snippet.Description
		m.ChannelTitle = item.Snippet.ChannelTitle
		m.ThumbnailURL = bestThumbnail(item.Snippet.Thumbnails)
	}
	if item.ContentDetails != nil {
		m.Duration = item.ContentDetails.Duration
	}
	if item.Statistics != nil {
		m.ViewCount = item.Statistics.ViewCount
		m.LikeCount = item.Statistics.LikeCount
	}
	return m, nil
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

var videoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video id out of the usual YouTube URL
// shapes: watch?v=, youtu.be/, shorts/, embed/ and live/.
func ExtractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("youtube: parse url: %w", err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		for _, prefix := range []string{"/shorts/", "/embed/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id = strings.Trim(strings.TrimPrefix(u.Path, prefix), "/")
				break
			}
		}
	default:
		return "", fmt.Errorf("youtube: not a youtube url: %s", rawURL)
	}

	if idx := strings.IndexAny(id, "/?&"); idx >= 0 {
		id = id[:idx]
	}
	if !videoIDRE.MatchString(id) {
		return "", fmt.Errorf("youtube: no video id in url: %s", rawURL)
	}
	return id, nil
}

var isoDurationRE = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseDurationSeconds converts an ISO 8601 duration (PT2H15M30S) to seconds.
// Returns 0 for anything it cannot parse.
func ParseDurationSeconds(duration string) int {
	m := isoDurationRE.FindStringSubmatch(duration)
	if len(m) == 0 {
		return 0
	}
	var total int
	if m[1] != "" {
		if h, err := strconv.Atoi(m[1]); err == nil {
			total += h * 3600
		}
	}
	if m[2] != "" {
		if min, err := strconv.Atoi(m[2]); err == nil {
			total += min * 60
		}
	}
	if m[3] != "" {
		if s, err := strconv.Atoi(m[3]); err == nil {
			total += s
		}
	}
	return total
}

// FormatDuration renders seconds as M:SS or H:MM:SS for display.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
