package constants

// ExtractionStatus is the canonical status for rows in extractions.
type ExtractionStatus string

// Stable values (store these exact strings in DB).
const (
	ExtractionStatusParsed ExtractionStatus = "PARSED" // validated order record stored
	ExtractionStatusFailed ExtractionStatus = "FAILED" // terminal failure, error code stored
)
