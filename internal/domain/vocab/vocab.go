// Package vocab holds vocabulary backend metadata models.
package vocab

// Status is the availability of a vocabulary backend.
type Status string

const (
	// StatusOK indicates the backend answered the probe.
	StatusOK Status = "ok"
	// StatusUnavailable indicates the probe failed; the snapshot carries
	// empty languages and a zero document count.
	StatusUnavailable Status = "unavailable"
)

// Vocabulary is a health/metadata snapshot of one configured backend.
type Vocabulary struct {
	Identifier string   `json:"identifier"`
	Languages  []string `json:"languages"`
	DocCount   int      `json:"doc_count"`
	Status     Status   `json:"status"`
}

// Unavailable returns the degraded snapshot a failed probe reports.
func Unavailable(identifier string) Vocabulary {
	return Vocabulary{
		Identifier: identifier,
		Languages:  []string{},
		DocCount:   0,
		Status:     StatusUnavailable,
	}
}
