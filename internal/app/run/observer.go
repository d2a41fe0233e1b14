package run

import (
	"time"

	"github.com/nicolasddr/agendador-lives-youtube/internal/config"
	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
)

// Observer desacopla "progresso/fases/resultado por item" do pipeline.
//
// Restrições:
// - o pacote run só emite eventos; não escreve nada (o stdout carrega o
//   contrato JSON e não pode ser poluído)
// - as chamadas chegam sempre da mesma goroutine, na ordem dos items
type Observer interface {
	// OnStart é chamado no início de Agendar (o quanto antes, para o
	// operador ver resposta imediata).
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone é chamado ao fim de uma fase preparatória (estatísticas e
	// duração para uma linha de resumo).
	OnPhaseDone(nome string, campos map[string]any, dur time.Duration)
	// OnItemDone é chamado quando uma transmissão termina de ser processada.
	OnItemDone(idx, total int, item domain.ItemResult, dur time.Duration)
}
