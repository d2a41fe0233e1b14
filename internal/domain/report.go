package domain

import (
	"encoding/json"
	"time"
)

const (
	StatusScheduled = "scheduled"
	StatusPublished = "published"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
)

const (
	ErrCodeAuthFailed       = "auth_failed"
	ErrCodeScheduleFailed   = "schedule_failed"
	ErrCodePublishFailed    = "publish_failed"
	ErrCodeCoversMismatch   = "covers_mismatch"
	ErrCodeThumbnailInvalid = "thumbnail_invalid"
	ErrCodeBadSchedule      = "bad_schedule_time"
	ErrCodeIOFailed         = "io_failed"
	ErrCodeConfigInvalid    = "config_invalid"
)

// RunReport é a saída externa estável (resultados em JSON no stdout não-TTY
// e base do resultados.txt).
type RunReport struct {
	DryRun bool `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Warnings acumula os avisos não-fatais do parser de lote, em ordem
	// de bloco.
	Warnings []string `json:"warnings"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Scheduled int `json:"scheduled"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type ItemResult struct {
	Titulo   string `json:"titulo"`
	Pregador string `json:"pregador"`
	Data     string `json:"data"`
	Horario  string `json:"horario"`
	Capa     string `json:"capa"`
	Link     string `json:"link"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize faz duas coisas:
// 1) tempos em UTC (JSON sai RFC3339 com sufixo Z)
// 2) summary calculado a partir dos items
//
// Ao contrário de ordenar, a ordem dos items é preservada: ela é o contrato
// de pareamento com as capas (índice N do lote = capa N).
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.Items == nil {
		r.Items = []ItemResult{}
	}

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusScheduled:
			s.Scheduled++
		case StatusPublished:
			s.Published++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	r.Summary = s
}

// MarshalJSON existe só para concentrar aqui qualquer futura decisão sobre a
// estabilidade da saída. Hoje apenas delega ao encoding/json.
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
