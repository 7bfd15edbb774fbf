package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JanciNeviemProste/jobsphere/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(docID uuid.UUID)
}

type worker struct {
	docRepo     repositories.DocumentRepository
	processor   DocumentProcessor
	jobQueue    chan uuid.UUID
	concurrency int
	wg          sync.WaitGroup
	stopChan    chan struct{}
	logger      *zap.Logger
}

func NewWorker(
	docRepo repositories.DocumentRepository,
	processor DocumentProcessor,
	concurrency int,
	logger *zap.Logger,
) Worker {
	return &worker{
		docRepo:     docRepo,
		processor:   processor,
		jobQueue:    make(chan uuid.UUID, 100),
		concurrency: concurrency,
		stopChan:    make(chan struct{}),
		logger:      logger,
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.logger.Info("starting worker pool", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	// The poller picks up documents left queued by a crash or restart.
	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.logger.Info("stopping worker pool")
	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("worker pool stopped")
}

// EnqueueJob implements Worker.
func (w *worker) EnqueueJob(docID uuid.UUID) {
	select {
	case w.jobQueue <- docID:
		w.logger.Debug("document enqueued", zap.String("document_id", docID.String()))
	case <-w.stopChan:
		w.logger.Warn("worker stopped, cannot enqueue document",
			zap.String("document_id", docID.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case docID := <-w.jobQueue:
			w.logger.Info("processing document",
				zap.Int("worker_id", workerID),
				zap.String("document_id", docID.String()))

			if err := w.processor.ProcessDocument(ctx, docID); err != nil {
				w.logger.Error("document processing failed",
					zap.Int("worker_id", workerID),
					zap.String("document_id", docID.String()),
					zap.Error(err))
			}
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ticker.C:
			pending, err := w.docRepo.FindPendingJobs(10)
			if err != nil {
				w.logger.Warn("failed to fetch pending documents", zap.Error(err))
				continue
			}

			for _, doc := range pending {
				w.EnqueueJob(doc.ID)
			}
		}
	}
}
