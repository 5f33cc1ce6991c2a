package analysis

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Rydhlnst/capstone-project/internal/common"
	"github.com/Rydhlnst/capstone-project/internal/youtube"
)

// ExtractionError signals that the analysis pipeline could not produce a
// result for the given source.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// MetadataAPI is the metadata half of the pipeline.
type MetadataAPI interface {
	VideoMetadata(ctx context.Context, videoID string) (*youtube.Metadata, error)
}

// TranscriptAPI is the transcript half of the pipeline.
type TranscriptAPI interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// Service composes metadata and transcript extraction into a single Result.
// Metadata failure fails the analysis; a missing transcript is tolerated.
type Service struct {
	metadata    MetadataAPI
	transcripts TranscriptAPI
	timeout     time.Duration
}

func NewService(metadata MetadataAPI, transcripts TranscriptAPI, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{metadata: metadata, transcripts: transcripts, timeout: timeout}
}

// AnalyzeURL extracts metadata and transcript for a YouTube URL.
func (s *Service) AnalyzeURL(ctx context.Context, rawURL string) (*Result, error) {
	videoID, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, &ExtractionError{Source: rawURL, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	meta, err := s.metadata.VideoMetadata(ctx, videoID)
	if err != nil {
		return nil, &ExtractionError{Source: rawURL, Err: err}
	}

	transcript := ""
	if s.transcripts != nil {
		transcript, err = s.transcripts.Fetch(ctx, videoID)
		if err != nil {
			log.Printf("analysis: transcript unavailable video=%s err=%v", videoID, err)
			transcript = ""
		}
	}

	return &Result{
		ID:           common.NewAnalysisID(),
		Title:        meta.Title,
		Description:  meta.Description,
		Duration:     youtube.FormatDuration(youtube.ParseDurationSeconds(meta.Duration)),
		ViewCount:    meta.ViewCount,
		LikeCount:    meta.LikeCount,
		ChannelTitle: meta.ChannelTitle,
		Transcript:   transcript,
		ThumbnailURL: meta.ThumbnailURL,
		SourceURL:    rawURL,
		AnalyzedAt:   time.Now(),
	}, nil
}

const maxTextTranscriptBytes = 1 << 20 // 1 MiB of uploaded text kept as transcript

// AnalyzeFile builds a Result from an uploaded file. Text uploads contribute
// their content as the transcript; other content types carry metadata only.
func (s *Service) AnalyzeFile(ctx context.Context, storedPath, originalName, contentType string, size int64) (*Result, error) {
	_ = ctx

	transcript := ""
	if strings.HasPrefix(contentType, "text/") {
		f, err := os.Open(storedPath)
		if err != nil {
			return nil, &ExtractionError{Source: originalName, Err: err}
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxTextTranscriptBytes))
		if err != nil {
			return nil, &ExtractionError{Source: originalName, Err: err}
		}
		transcript = string(data)
	}

	return &Result{
		ID:          common.NewAnalysisID(),
		Title:       originalName,
		Description: fmt.Sprintf("Uploaded file (%s, %d bytes)", contentType, size),
		Transcript:  transcript,
		SourceURL:   "upload://" + originalName,
		AnalyzedAt:  time.Now(),
	}, nil
}
