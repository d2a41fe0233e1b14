package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nicolasddr/agendador-lives-youtube/internal/app/run"
	"github.com/nicolasddr/agendador-lives-youtube/internal/config"
	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI é a saída de progresso do terminal.
//
// Regras:
// - tudo vai para o stderr; o stdout carrega apenas o JSON do relatório
// - o pipeline só emite eventos; a decisão de exibição fica toda aqui
// - uma linha por transmissão, na ordem do lote
type progressUI struct {
	w io.Writer
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	modo := "agendamento"
	aviso := ""
	if eff.DryRun {
		modo = "dry-run"
		aviso = " (nada será enviado à API)"
	}

	fmt.Fprintf(p.w, "\n[%s] agendador run (%s)%s\n", time.Now().Format("15:04:05"), modo, aviso)
	fmt.Fprintln(p.w, "Configuração (efetiva):")
	fmt.Fprintf(p.w, "  organização: %s\n", eff.Organization)
	fmt.Fprintf(p.w, "  privacidade: %s\n", eff.Privacy)
	fmt.Fprintf(p.w, "  fuso: UTC%+d\n", eff.UTCOffsetHours)
	if eff.CoversDir != "" {
		fmt.Fprintf(p.w, "  capas: %s\n", eff.CoversDir)
	}
	if eff.TitleTemplate != "" {
		fmt.Fprintf(p.w, "  modelo de título: %s\n", eff.TitleTemplate)
	}
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnPhaseDone(nome string, campos map[string]any, dur time.Duration) {
	switch nome {
	case "capas":
		fmt.Fprintf(p.w, "capas: arquivos=%d transmissoes=%d (%s)\n",
			intField(campos, "capas"), intField(campos, "transmissoes"), formatShortDuration(dur))
	default:
		// Fase desconhecida também aparece (ajuda a depurar evolução).
		fmt.Fprintf(p.w, "%s (%s)\n", nome, formatShortDuration(dur))
	}
}

func (p *progressUI) OnItemDone(idx, total int, item domain.ItemResult, dur time.Duration) {
	switch item.Status {
	case domain.StatusFailed:
		fmt.Fprintf(p.w, "[%d/%d] %s FALHOU %s: %s (%s)\n",
			idx, total, tituloOuAncora(item), item.ErrorCode, truncate(item.ErrorMsg, 160), formatShortDuration(dur))
	case domain.StatusSkipped:
		fmt.Fprintf(p.w, "[%d/%d] %s OK (dry-run, nada enviado) (%s)\n",
			idx, total, tituloOuAncora(item), formatShortDuration(dur))
	case domain.StatusPublished:
		fmt.Fprintf(p.w, "[%d/%d] %s PÚBLICA %s (%s)\n",
			idx, total, tituloOuAncora(item), item.Link, formatShortDuration(dur))
	default:
		fmt.Fprintf(p.w, "[%d/%d] %s AGENDADA %s (%s)\n",
			idx, total, tituloOuAncora(item), item.Link, formatShortDuration(dur))
	}
}

func tituloOuAncora(item domain.ItemResult) string {
	if t := strings.TrimSpace(item.Titulo); t != "" {
		return t
	}
	// Itens sintéticos (pareamento, config) não têm título.
	return "<lote>"
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func intField(campos map[string]any, chave string) int {
	if campos == nil {
		return 0
	}
	switch x := campos[chave].(type) {
	case int:
		return x
	case int64:
		return int(x)
	default:
		return 0
	}
}
