package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReport_Finalize_SummaryEOrdemEUTC(t *testing.T) {
	r := RunReport{
		DryRun:     true,
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", -4*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", -4*3600)),
		Items: []ItemResult{
			{Titulo: "B", Status: StatusFailed},
			{Titulo: "A", Status: StatusScheduled},
			{Titulo: "C", Status: StatusPublished},
			{Titulo: "D", Status: StatusSkipped},
		},
	}

	r.Finalize()

	// A ordem de entrada é o contrato de pareamento com as capas: não pode
	// ser reordenada no Finalize.
	require.Len(t, r.Items, 4)
	assert.Equal(t, "B", r.Items[0].Titulo)
	assert.Equal(t, "A", r.Items[1].Titulo)

	assert.Equal(t, ReportSummary{Scheduled: 1, Published: 1, Failed: 1, Skipped: 1}, r.Summary)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	// time.Time em UTC deve sair com sufixo 'Z'.
	assert.Contains(t, string(b), `"started_at":"2026-02-09T14:00:00Z"`)
	// Warnings nil vira lista vazia (nunca null no JSON externo).
	assert.Contains(t, string(b), `"warnings":[]`)
}

func TestTransmissao_Completa(t *testing.T) {
	tr := Transmissao{Titulo: "Culto", Pregador: "João", Data: "01/01/2030", Horario: "10:00"}
	assert.True(t, tr.Completa())

	tr.Horario = "   "
	assert.False(t, tr.Completa())
}

func TestTransmissao_Campos(t *testing.T) {
	tr := Transmissao{Titulo: "Culto", Pregador: "João", Data: "01/01/2030", Horario: "10:00"}
	assert.Equal(t, map[string]string{
		"titulo":   "Culto",
		"pregador": "João",
		"data":     "01/01/2030",
		"horario":  "10:00",
	}, tr.Campos())
}
