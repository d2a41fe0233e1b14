// Package youtube implementa broadcast.Backend sobre a YouTube Data API v3.
//
// O agendamento de uma transmissão são quatro chamadas em sequência:
// liveBroadcasts.insert, liveStreams.insert, liveBroadcasts.bind e, havendo
// capa, thumbnails.set. Qualquer falha interrompe o pedido atual (sem
// retry) e sobe como *Error com a etapa que quebrou.
package youtube

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	yt "google.golang.org/api/youtube/v3"

	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast"
)

// Etapas usadas em *Error.
const (
	EtapaAuth      = "auth"
	EtapaBroadcast = "broadcast"
	EtapaStream    = "stream"
	EtapaBind      = "bind"
	EtapaThumbnail = "thumbnail"
	EtapaUpdate    = "update"
)

// Error carrega a etapa da API que falhou (para mensagem e relatório).
type Error struct {
	Etapa string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("API do YouTube falhou na etapa %s: %v", e.Etapa, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client é o backend real. Construa com New (faz o fluxo OAuth) e use uma
// instância por execução; o token é compartilhado entre as chamadas.
type Client struct {
	svc *yt.Service
	log zerolog.Logger
}

var _ broadcast.Backend = (*Client)(nil)

// Agendar cria a transmissão agendada e devolve o link de visualização.
func (c *Client) Agendar(ctx context.Context, p broadcast.Pedido) (broadcast.Resultado, error) {
	c.log.Debug().
		Str("titulo", p.Titulo).
		Time("inicio_utc", p.Inicio).
		Str("privacidade", p.Privacidade).
		Msg("criando transmissão")

	b := &yt.LiveBroadcast{
		Snippet: &yt.LiveBroadcastSnippet{
			Title:              p.Titulo,
			Description:        p.Descricao,
			ScheduledStartTime: p.Inicio.UTC().Format(time.RFC3339),
		},
		Status: &yt.LiveBroadcastStatus{
			PrivacyStatus: p.Privacidade,
		},
		ContentDetails: &yt.LiveBroadcastContentDetails{
			EnableAutoStart: true,
			EnableAutoStop:  true,
		},
	}
	criado, err := c.svc.LiveBroadcasts.Insert([]string{"snippet", "status", "contentDetails"}, b).
		Context(ctx).Do()
	if err != nil {
		return broadcast.Resultado{}, &Error{Etapa: EtapaBroadcast, Err: err}
	}

	stream := &yt.LiveStream{
		Snippet: &yt.LiveStreamSnippet{Title: p.Titulo},
		Cdn: &yt.CdnSettings{
			FrameRate:     "variable",
			IngestionType: "rtmp",
			Resolution:    "variable",
		},
	}
	streamCriado, err := c.svc.LiveStreams.Insert([]string{"snippet", "cdn"}, stream).
		Context(ctx).Do()
	if err != nil {
		return broadcast.Resultado{}, &Error{Etapa: EtapaStream, Err: err}
	}

	if _, err := c.svc.LiveBroadcasts.Bind(criado.Id, []string{"id", "contentDetails"}).
		StreamId(streamCriado.Id).Context(ctx).Do(); err != nil {
		return broadcast.Resultado{}, &Error{Etapa: EtapaBind, Err: err}
	}

	if len(p.Capa) > 0 {
		if _, err := c.svc.Thumbnails.Set(criado.Id).
			Media(bytes.NewReader(p.Capa)).Context(ctx).Do(); err != nil {
			return broadcast.Resultado{}, &Error{Etapa: EtapaThumbnail, Err: err}
		}
	}

	res := broadcast.Resultado{
		ID:   criado.Id,
		Link: "https://youtube.com/watch?v=" + criado.Id,
	}
	c.log.Info().Str("id", res.ID).Str("link", res.Link).Msg("transmissão agendada")
	return res, nil
}

// AtualizarPrivacidade muda o status de uma transmissão já agendada.
// Confere a existência antes do update para a mensagem de erro distinguir
// "não encontrada" de falha da API.
func (c *Client) AtualizarPrivacidade(ctx context.Context, videoID, privacidade string) error {
	lista, err := c.svc.LiveBroadcasts.List([]string{"status"}).
		Id(videoID).Context(ctx).Do()
	if err != nil {
		return &Error{Etapa: EtapaUpdate, Err: err}
	}
	if len(lista.Items) == 0 {
		return &Error{Etapa: EtapaUpdate, Err: fmt.Errorf("transmissão %s não encontrada", videoID)}
	}

	_, err = c.svc.LiveBroadcasts.Update([]string{"status"}, &yt.LiveBroadcast{
		Id:     videoID,
		Status: &yt.LiveBroadcastStatus{PrivacyStatus: privacidade},
	}).Context(ctx).Do()
	if err != nil {
		return &Error{Etapa: EtapaUpdate, Err: err}
	}

	c.log.Info().Str("id", videoID).Str("privacidade", privacidade).Msg("privacidade atualizada")
	return nil
}
