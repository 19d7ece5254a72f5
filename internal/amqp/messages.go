package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"salesdash/internal/core"
	"salesdash/internal/export"
)

var ErrInvalidRequest = errors.New("invalid export request")

// ExportRequest asks a worker to write the rows selected by Filters to a file.
type ExportRequest struct {
	JobID       string          `json:"jobId"`
	Format      export.Format   `json:"format"`
	Filters     core.FilterSpec `json:"filters"`
	RequestedAt time.Time       `json:"requestedAt"`
	Source      string          `json:"source,omitempty"`
}

// NewExportRequest assigns a fresh job ID.
func NewExportRequest(format export.Format, filters core.FilterSpec, source string) *ExportRequest {
	return &ExportRequest{
		JobID:       uuid.NewString(),
		Format:      format,
		Filters:     filters.Clone(),
		RequestedAt: time.Now().UTC(),
		Source:      source,
	}
}

func (r *ExportRequest) Validate() error {
	if _, err := uuid.Parse(r.JobID); err != nil {
		return fmt.Errorf("%w: job id %q", ErrInvalidRequest, r.JobID)
	}
	if _, err := export.New(r.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := r.Filters.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

func (r *ExportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(r)
}

// ExportRequestFromJSON decodes and validates a message body.
func ExportRequestFromJSON(data []byte) (*ExportRequest, error) {
	var req ExportRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	if req.Filters.ChartType == "" {
		req.Filters.ChartType = core.ChartBar
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}
