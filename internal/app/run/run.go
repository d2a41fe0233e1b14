// Package run executa o pipeline de agendamento: parear capas, normalizar
// miniaturas, agendar transmissão por transmissão e, opcionalmente, tornar
// públicas as que foram agendadas.
package run

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast"
	"github.com/nicolasddr/agendador-lives-youtube/internal/capas"
	"github.com/nicolasddr/agendador-lives-youtube/internal/config"
	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
	"github.com/nicolasddr/agendador-lives-youtube/internal/infra/imgx"
)

// Entrada é o material já coletado e validado que o pipeline consome.
type Entrada struct {
	Transmissoes []domain.Transmissao
	// Avisos vem do parser de lote (blocos ignorados etc.) e entra no
	// relatório sem alteração.
	Avisos []string
	// Capas são os caminhos das imagens, já em ordem lexicográfica; vazio
	// significa "agendar sem miniatura".
	Capas []string
	// Privacidade sobrepõe a da configuração quando não vazia (a etapa de
	// confirmação interativa decide por aqui).
	Privacidade string
}

// Agendar processa as transmissões uma a uma, em ordem, e devolve o
// RunReport estável. Erros são rebaixados a falha de item sempre que
// possível: uma transmissão com problema não derruba as demais.
func Agendar(ctx context.Context, eff config.EffectiveConfig, in Entrada, be broadcast.Backend, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		DryRun:    eff.DryRun,
		StartedAt: started,
		Warnings:  append([]string(nil), in.Avisos...),
		Items:     make([]domain.ItemResult, 0, len(in.Transmissoes)),
	}

	transmissoes := in.Transmissoes
	if len(in.Capas) > 0 {
		inicioCapas := time.Now()
		pareadas, err := capas.Parear(in.Capas, transmissoes)
		if err != nil {
			// Pareamento é tudo-ou-nada: com as contagens divergindo não há
			// como saber qual capa pertence a qual transmissão.
			rr.Items = append(rr.Items, sinteticoFalho(domain.ErrCodeCoversMismatch, err.Error()))
			rr.FinishedAt = time.Now().UTC()
			rr.Finalize()
			return rr
		}
		transmissoes = pareadas
		if obs != nil {
			obs.OnPhaseDone("capas", map[string]any{
				"capas":        len(in.Capas),
				"transmissoes": len(transmissoes),
			}, time.Since(inicioCapas))
		}
	}

	privacidade := in.Privacidade
	if privacidade == "" {
		privacidade = eff.Privacy
	}

	for i, tr := range transmissoes {
		inicioItem := time.Now()
		item := agendarUma(ctx, eff, privacidade, tr, be)
		rr.Items = append(rr.Items, item)
		if obs != nil {
			obs.OnItemDone(i+1, len(transmissoes), item, time.Since(inicioItem))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// Publicar vira a privacidade das transmissões agendadas para "public",
// atualizando o relatório no lugar. Items que não estão em "scheduled" são
// deixados como estão.
func Publicar(ctx context.Context, rr *domain.RunReport, be broadcast.Backend, obs Observer) {
	total := 0
	for i := range rr.Items {
		if rr.Items[i].Status == domain.StatusScheduled {
			total++
		}
	}

	feitos := 0
	for i := range rr.Items {
		it := &rr.Items[i]
		if it.Status != domain.StatusScheduled {
			continue
		}

		inicioItem := time.Now()
		id := broadcast.VideoID(it.Link)
		if err := be.AtualizarPrivacidade(ctx, id, broadcast.PrivacidadePublica); err != nil {
			it.Status = domain.StatusFailed
			it.ErrorCode = domain.ErrCodePublishFailed
			it.ErrorMsg = fmt.Sprintf("publicação de %s: %v", id, err)
		} else {
			it.Status = domain.StatusPublished
		}

		feitos++
		if obs != nil {
			obs.OnItemDone(feitos, total, *it, time.Since(inicioItem))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
}

func agendarUma(ctx context.Context, eff config.EffectiveConfig, privacidade string, tr domain.Transmissao, be broadcast.Backend) domain.ItemResult {
	item := domain.ItemResult{
		Titulo:   tr.TituloFormatado,
		Pregador: tr.Pregador,
		Data:     tr.Data,
		Horario:  tr.Horario,
		Status:   domain.StatusScheduled, // sobrescrito em falha
	}
	if tr.Capa != "" {
		item.Capa = filepath.Base(tr.Capa)
	}

	inicio, err := broadcast.HorarioUTC(tr.Data, tr.Horario, eff.UTCOffsetHours)
	if err != nil {
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeBadSchedule
		item.ErrorMsg = fmt.Sprintf("data/horário inválidos (%s %s): %v", tr.Data, tr.Horario, err)
		return item
	}

	var capa []byte
	if tr.Capa != "" {
		b, err := os.ReadFile(tr.Capa)
		if err != nil {
			item.Status = domain.StatusFailed
			item.ErrorCode = domain.ErrCodeIOFailed
			item.ErrorMsg = fmt.Sprintf("leitura da capa: %v", err)
			return item
		}
		capa, err = imgx.MiniaturaJPEG(b)
		if err != nil {
			item.Status = domain.StatusFailed
			item.ErrorCode = domain.ErrCodeThumbnailInvalid
			item.ErrorMsg = fmt.Sprintf("capa %s: %v", item.Capa, err)
			return item
		}
	}

	// dry-run valida tudo (horário, capa) mas não toca a API.
	if eff.DryRun {
		item.Status = domain.StatusSkipped
		return item
	}

	res, err := be.Agendar(ctx, broadcast.Pedido{
		Titulo:      tr.TituloFormatado,
		Descricao:   tr.TextoDescricao,
		Inicio:      inicio,
		Privacidade: privacidade,
		Capa:        capa,
	})
	if err != nil {
		item.Status = domain.StatusFailed
		item.ErrorCode = domain.ErrCodeScheduleFailed
		item.ErrorMsg = err.Error()
		return item
	}

	item.Link = res.Link
	return item
}

func sinteticoFalho(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}
