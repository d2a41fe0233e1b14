// Package broadcast define a fronteira com o serviço remoto de agendamento.
//
// O pipeline só conhece a interface Backend e os tipos estáveis deste
// pacote; a implementação real (YouTube Data API) fica em broadcast/youtube
// e os testes usam um fake.
package broadcast

import (
	"context"
	"strings"
	"time"
)

// Status de privacidade aceitos pela API.
const (
	PrivacidadeNaoListada = "unlisted"
	PrivacidadePublica    = "public"
	PrivacidadePrivada    = "private"
)

// PrivacidadeValida informa se p é um status de privacidade conhecido.
func PrivacidadeValida(p string) bool {
	switch p {
	case PrivacidadeNaoListada, PrivacidadePublica, PrivacidadePrivada:
		return true
	default:
		return false
	}
}

// Pedido é tudo que o backend precisa para agendar uma transmissão.
// Capa já chega normalizada (JPEG dentro do limite); vazia significa
// "sem miniatura".
type Pedido struct {
	Titulo      string
	Descricao   string
	Inicio      time.Time
	Privacidade string
	Capa        []byte
}

// Resultado identifica a transmissão criada.
type Resultado struct {
	ID   string
	Link string
}

// Backend é o colaborador remoto de agendamento.
//
// Restrições:
// - chamadas sequenciais, uma transmissão por vez (a ordem dos pedidos é o
//   contrato de pareamento com as capas)
// - sem retry interno: falhou, o erro sobe
type Backend interface {
	Agendar(ctx context.Context, p Pedido) (Resultado, error)
	AtualizarPrivacidade(ctx context.Context, videoID, privacidade string) error
}

// VideoID extrai o ID a partir do link armazenado na transmissão
// (https://youtube.com/watch?v=<id>). Entrada sem "v=" é devolvida como
// está, assumindo que já é um ID.
func VideoID(link string) string {
	_, depois, ok := strings.Cut(link, "v=")
	if !ok {
		return link
	}
	if i := strings.IndexAny(depois, "&#"); i >= 0 {
		depois = depois[:i]
	}
	return depois
}

// HorarioUTC converte a dupla data (DD/MM/AAAA) + horário (HH:MM) para o
// instante UTC usado no scheduledStartTime.
//
// ATENÇÃO: a conversão aplica um deslocamento fixo de offsetHoras (padrão
// -4), ignorando horário de verão e variações regionais. Comportamento
// herdado e mantido de propósito: corrigir aqui mudaria o horário de
// transmissões já combinadas com a equipe.
// TODO: aceitar zona IANA (ex.: America/Manaus) na configuração no lugar do
// deslocamento fixo.
func HorarioUTC(data, horario string, offsetHoras int) (time.Time, error) {
	local, err := time.Parse("02/01/2006 15:04", strings.TrimSpace(data)+" "+strings.TrimSpace(horario))
	if err != nil {
		return time.Time{}, err
	}
	// local está em offsetHoras; UTC = local - offset.
	return local.Add(-time.Duration(offsetHoras) * time.Hour), nil
}
