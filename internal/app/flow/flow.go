// Package flow conduz a sessão interativa como uma máquina de estados
// explícita: coleta, revisão de títulos, seleção de capas, confirmação de
// privacidade, agendamento e publicação. O "reiniciar o processo" vira uma
// transição de volta à coleta, com limite, no lugar de reexecutar o
// programa inteiro.
package flow

import (
	"context"
	"errors"

	"github.com/nicolasddr/agendador-lives-youtube/internal/app/run"
	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast"
	"github.com/nicolasddr/agendador-lives-youtube/internal/config"
	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
)

// Estado identifica cada etapa da sessão.
type Estado string

const (
	EstadoColeta                 Estado = "coleta"
	EstadoRevisaoTitulos         Estado = "revisao_titulos"
	EstadoSelecaoCapas           Estado = "selecao_capas"
	EstadoConfirmacaoPrivacidade Estado = "confirmacao_privacidade"
	EstadoAgendamento            Estado = "agendamento"
	EstadoPublicacao             Estado = "publicacao"
	EstadoConcluido              Estado = "concluido"
	EstadoCancelado              Estado = "cancelado"
)

// ErrCancelado sinaliza que o operador desistiu no meio de uma pergunta.
// Não é tratado como erro de programa: a sessão termina em EstadoCancelado.
var ErrCancelado = errors.New("operação cancelada pelo operador")

// Prompter é a camada interativa. As implementações decidem COMO perguntar
// (terminal, testes com roteiro); o flow decide QUANDO.
type Prompter interface {
	// Coletar devolve as transmissões já enriquecidas (título formatado,
	// texto de descrição) e os avisos do parser de lote.
	Coletar(eff config.EffectiveConfig) ([]domain.Transmissao, []string, error)
	// RevisarTitulos apresenta os títulos formatados; aprovado=false volta
	// para a coleta.
	RevisarTitulos(transmissoes []domain.Transmissao) (aprovado bool, err error)
	// SelecionarCapas devolve os caminhos das capas em ordem de pareamento.
	// Vazio significa agendar sem miniaturas.
	SelecionarCapas(transmissoes []domain.Transmissao) ([]string, error)
	// ConfirmarPrivacidade devolve a privacidade escolhida; reiniciar=true
	// descarta tudo e recomeça da coleta.
	ConfirmarPrivacidade(padrao string) (privacidade string, reiniciar bool, err error)
	// ConfirmarPublicacao pergunta se as transmissões agendadas devem
	// virar públicas agora.
	ConfirmarPublicacao() (bool, error)
}

// Opcoes parametriza uma sessão.
type Opcoes struct {
	Eff     config.EffectiveConfig
	Prompt  Prompter
	Backend broadcast.Backend
	Obs     run.Observer

	// MaxReinicios limita as voltas à coleta (revisão reprovada ou
	// reinício pedido na privacidade). Zero usa o padrão.
	MaxReinicios int
}

const maxReiniciosPadrao = 3

// Resultado é o desfecho da sessão. Estados guarda o histórico de
// transições na ordem em que aconteceram.
type Resultado struct {
	Final   Estado
	Estados []Estado
	Report  domain.RunReport
}

// Executar roda a sessão até Concluido ou Cancelado. Cancelamento do
// operador (ErrCancelado) não é erro; qualquer outra falha do Prompter
// interrompe e sobe.
func Executar(ctx context.Context, o Opcoes) (Resultado, error) {
	res := Resultado{}
	maxReinicios := o.MaxReinicios
	if maxReinicios <= 0 {
		maxReinicios = maxReiniciosPadrao
	}

	entra := func(e Estado) { res.Estados = append(res.Estados, e) }
	cancela := func(err error) (Resultado, error) {
		entra(EstadoCancelado)
		res.Final = EstadoCancelado
		if errors.Is(err, ErrCancelado) {
			return res, nil
		}
		return res, err
	}

	var (
		transmissoes []domain.Transmissao
		avisos       []string
		capas        []string
		privacidade  string
	)

	reinicios := 0
coleta:
	for {
		entra(EstadoColeta)
		trs, avs, err := o.Prompt.Coletar(o.Eff)
		if err != nil {
			return cancela(err)
		}
		if len(trs) == 0 {
			// Nada coletado encerra a sessão (igual a desistir).
			return cancela(ErrCancelado)
		}
		transmissoes, avisos = trs, avs

		entra(EstadoRevisaoTitulos)
		aprovado, err := o.Prompt.RevisarTitulos(transmissoes)
		if err != nil {
			return cancela(err)
		}
		if !aprovado {
			reinicios++
			if reinicios > maxReinicios {
				return cancela(ErrCancelado)
			}
			continue
		}

		entra(EstadoSelecaoCapas)
		capas, err = o.Prompt.SelecionarCapas(transmissoes)
		if err != nil {
			return cancela(err)
		}

		entra(EstadoConfirmacaoPrivacidade)
		priv, reiniciar, err := o.Prompt.ConfirmarPrivacidade(o.Eff.Privacy)
		if err != nil {
			return cancela(err)
		}
		if reiniciar {
			reinicios++
			if reinicios > maxReinicios {
				return cancela(ErrCancelado)
			}
			continue
		}
		privacidade = priv
		break coleta
	}

	entra(EstadoAgendamento)
	res.Report = run.Agendar(ctx, o.Eff, run.Entrada{
		Transmissoes: transmissoes,
		Avisos:       avisos,
		Capas:        capas,
		Privacidade:  privacidade,
	}, o.Backend, o.Obs)

	if res.Report.Summary.Scheduled > 0 {
		publicar := o.Eff.Publicar
		if !publicar {
			var err error
			publicar, err = o.Prompt.ConfirmarPublicacao()
			if err != nil {
				return cancela(err)
			}
		}
		if publicar {
			entra(EstadoPublicacao)
			run.Publicar(ctx, &res.Report, o.Backend, o.Obs)
		}
	}

	entra(EstadoConcluido)
	res.Final = EstadoConcluido
	return res, nil
}
