package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/freight-orders/constants"
)

// Extraction is the stored outcome of processing one document.
type Extraction struct {
	ID             uuid.UUID                  `json:"id"`
	SourcePath     string                     `json:"source_path"`
	Filename       string                     `json:"filename"`
	Vendor         string                     `json:"vendor,omitempty"`
	Status         constants.ExtractionStatus `json:"status"`
	ErrorCode      string                     `json:"error_code,omitempty"`
	ErrorMessage   string                     `json:"error_message,omitempty"`
	OrderReference string                     `json:"order_reference,omitempty"`
	Record         json.RawMessage            `json:"record,omitempty"`
	DurationMS     int64                      `json:"duration_ms"`
	CreatedAt      time.Time                  `json:"created_at"`
}

// Parsed reports whether the extraction produced a validated order.
func (e *Extraction) Parsed() bool {
	return e.Status == constants.ExtractionStatusParsed
}
