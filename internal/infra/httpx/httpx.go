// Package httpx fixa a política de rede das chamadas à API do YouTube:
// timeouts limitados e um limitador de vazão por trás do RoundTripper.
//
// Importante: limitar vazão NÃO é retry. Falhou, falhou; a decisão de
// repetir fica com o operador.
package httpx

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second

	// A API de agendamento é chamada uma transmissão por vez; o limite
	// existe só como higiene de quota (picos do bind + thumbnails.set).
	defaultRPS   = 4
	defaultBurst = 4
)

// Transport aplica o limitador antes de cada requisição. O Wait respeita o
// contexto da requisição: cancelou, não espera.
type Transport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("requisição nula")
	}
	if t.Base == nil {
		return nil, errors.New("transport base nulo")
	}
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.Base.RoundTrip(req)
}

// NewAPIClient constrói o client HTTP usado como base do serviço da API
// (inclusive pelo fluxo OAuth).
func NewAPIClient() *http.Client {
	base := &http.Transport{
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	}
	return &http.Client{
		Transport: &Transport{
			Base:    base,
			Limiter: rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
		},
		Timeout: defaultTimeout,
	}
}
