package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Rydhlnst/capstone-project/internal/analysis"
	"github.com/Rydhlnst/capstone-project/internal/config"
	"github.com/Rydhlnst/capstone-project/internal/store/database"
	"github.com/Rydhlnst/capstone-project/internal/store/rabbitmq"
	"github.com/Rydhlnst/capstone-project/internal/youtube"
)

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	cfg := config.Load()

	if cfg.DBDSN == "" {
		log.Fatalf("DB_DSN is required for the worker")
	}
	if cfg.RabbitURL == "" {
		log.Fatalf("RABBIT_URL is required for the worker")
	}
	if cfg.YouTubeAPIKey == "" {
		log.Fatalf("YOUTUBE_API_KEY is required for the worker")
	}

	gdb, err := database.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	repo := database.NewRepo(gdb)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ytClient, err := youtube.NewClient(ctx, cfg.YouTubeAPIKey)
	if err != nil {
		log.Fatalf("youtube client: %v", err)
	}
	transcripts := youtube.NewTranscriptFetcher(cfg.TranscriptLanguages...)
	analyzer := analysis.NewService(ytClient, transcripts, time.Duration(cfg.AnalyzeTimeoutSecs)*time.Second)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()
	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m rabbitmq.JobMessage
				if err := json.Unmarshal(d.Body, &m); err != nil || m.JobID == "" {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := handleJob(ctx, repo, analyzer, m.JobID); err != nil {
					log.Printf("worker=%d job %s failed cost=%s err=%v", workerID, m.JobID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed job=%s err=%v", workerID, m.JobID, err)
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

// handleJob runs one queued analysis to completion. The extraction result is
// persisted as a Video row and the job marked succeeded; any failure marks the
// job failed so the caller can see the error via GET /analyze/jobs/:job_id.
func handleJob(ctx context.Context, repo *database.Repo, analyzer *analysis.Service, jobID string) error {
	if err := repo.MarkJobRunning(ctx, jobID); err != nil {
		return err
	}

	job, err := repo.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}

	result, err := analyzer.AnalyzeURL(ctx, job.URL)
	if err != nil {
		_ = repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	video, err := database.VideoFromResult(result)
	if err != nil {
		_ = repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}
	if err := repo.UpsertVideo(ctx, video); err != nil {
		_ = repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}
	stored, err := repo.GetVideoByYouTubeID(ctx, video.YouTubeID)
	if err != nil {
		_ = repo.MarkJobFailed(ctx, jobID, err.Error())
		return err
	}

	return repo.MarkJobSucceeded(ctx, jobID, stored.ID)
}
