package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pavelanni/interviewer/internal/model"
)

// ExportInterviews builds the export document for archived interviews,
// optionally filtered by status.
func (s *Store) ExportInterviews(ctx context.Context, status model.SessionState) (model.InterviewExport, error) {
	records, err := s.ListInterviews(ctx, status)
	if err != nil {
		return model.InterviewExport{}, fmt.Errorf("list interviews: %w", err)
	}
	info, err := s.GetArchiveInfo()
	if err != nil {
		return model.InterviewExport{}, fmt.Errorf("archive info: %w", err)
	}
	if records == nil {
		records = []model.InterviewRecord{}
	}
	return model.InterviewExport{
		ExportedAt: time.Now().UTC(),
		Archive:    info,
		Count:      len(records),
		Interviews: records,
	}, nil
}
