package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/study-crew/peer-assist-api/internal/dto"
	appErrors "github.com/study-crew/peer-assist-api/pkg/errors"
	"github.com/study-crew/peer-assist-api/pkg/export"
	"github.com/study-crew/peer-assist-api/pkg/jobs"
	"github.com/study-crew/peer-assist-api/pkg/storage"
)

type rosterReader interface {
	ListByAssistant(ctx context.Context, assistantID int64) ([]dto.RosterEntry, bool, error)
}

// ExportFormat identifies a supported schedule export encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered export bytes and response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders an assistant schedule as CSV or PDF.
type ExportService struct {
	roster rosterReader
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger

	archive    *storage.LocalStorage
	archiveTTL time.Duration
	queue      *jobs.Queue
}

func NewExportService(roster rosterReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		roster: roster,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

var scheduleHeaders = []string{"Course Code", "Course Name", "Day", "Start Time", "End Time", "Special"}

type archivePayload struct {
	Filename string
	Content  []byte
}

// EnableArchive keeps an on-disk copy of every rendered export. Archival runs
// on background workers and never blocks or fails the request path.
func (s *ExportService) EnableArchive(ctx context.Context, store *storage.LocalStorage, ttl time.Duration) {
	s.archive = store
	s.archiveTTL = ttl
	s.queue = jobs.NewQueue("export-archive", s.archiveExport, jobs.QueueConfig{
		Workers: 1,
		Retries: 2,
		Logger:  s.logger,
	})
	s.queue.Start(ctx)
}

// Close stops the background archive workers, draining in-flight jobs.
func (s *ExportService) Close() {
	if s.queue != nil {
		s.queue.Stop()
	}
}

func (s *ExportService) archiveExport(_ context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(archivePayload)
	if !ok {
		return fmt.Errorf("unexpected archive payload %T", job.Payload)
	}
	if _, err := s.archive.Save(payload.Filename, payload.Content); err != nil {
		return err
	}
	if s.archiveTTL > 0 {
		if _, err := s.archive.CleanupOlderThan(s.archiveTTL); err != nil {
			s.logger.Warn("export archive cleanup failed", zap.Error(err))
		}
	}
	return nil
}

func (s *ExportService) enqueueArchive(result *ExportResult) {
	if s.queue == nil {
		return
	}
	err := s.queue.Enqueue(jobs.Job{
		ID:      result.Filename,
		Type:    "archive",
		Payload: archivePayload{Filename: result.Filename, Content: result.Content},
	})
	if err != nil {
		s.logger.Warn("failed to queue export archive",
			zap.String("filename", result.Filename), zap.Error(err))
	}
}

// Schedule builds the assistant schedule dataset and renders it in the requested format.
func (s *ExportService) Schedule(ctx context.Context, assistantID int64, format ExportFormat) (*ExportResult, error) {
	entries, _, err := s.roster.ListByAssistant(ctx, assistantID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: scheduleHeaders}
	for _, entry := range entries {
		special := "no"
		if entry.Special {
			special = "yes"
		}
		if len(entry.Availability) == 0 {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Course Code": entry.CourseCode,
				"Course Name": entry.CourseName,
				"Special":     special,
			})
			continue
		}
		for _, window := range entry.Availability {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Course Code": entry.CourseCode,
				"Course Name": entry.CourseName,
				"Day":         string(window.Day),
				"Start Time":  window.StartTime.String(),
				"End Time":    window.EndTime.String(),
				"Special":     special,
			})
		}
	}

	switch ExportFormat(strings.ToLower(string(format))) {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		result := &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("schedule-%d.csv", assistantID),
		}
		s.enqueueArchive(result)
		return result, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Assistant Schedule")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		result := &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("schedule-%d.pdf", assistantID),
		}
		s.enqueueArchive(result)
		return result, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
