package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/nicolasddr/agendador-lives-youtube/internal/infra/fsx"
)

// Autorizador obtém o código de autorização junto ao operador: mostra a URL
// de consentimento e devolve o código colado de volta. A implementação de
// terminal fica em cmd/agendador.
type Autorizador func(authURL string) (codigo string, err error)

// Opcoes configura a construção do backend real.
type Opcoes struct {
	// ClientSecretsFile é o JSON OAuth de aplicativo desktop baixado do
	// console do Google.
	ClientSecretsFile string
	// TokenFile guarda o token entre execuções (criado na primeira).
	TokenFile string
	// Autorizar é chamado apenas quando não há token válido salvo.
	Autorizar Autorizador
	// HTTPClient, quando presente, vira a base de todas as chamadas
	// (inclusive o refresh do OAuth).
	HTTPClient *http.Client
	Log        zerolog.Logger
}

// New autentica e constrói o Client.
//
// Ordem de autenticação (a mesma do token.pickle de antigamente, agora em
// JSON): token salvo → refresh automático quando expirado → fluxo de
// consentimento interativo como último recurso. O token (re)obtido é sempre
// persistido de forma atômica.
func New(ctx context.Context, o Opcoes) (*Client, error) {
	secrets, err := os.ReadFile(o.ClientSecretsFile)
	if err != nil {
		return nil, &Error{Etapa: EtapaAuth, Err: fmt.Errorf(
			"arquivo de segredos do cliente %q: %w (baixe-o do console de desenvolvedores do Google)",
			o.ClientSecretsFile, err)}
	}

	conf, err := google.ConfigFromJSON(secrets, yt.YoutubeScope)
	if err != nil {
		return nil, &Error{Etapa: EtapaAuth, Err: fmt.Errorf("segredos do cliente inválidos: %w", err)}
	}

	if o.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.HTTPClient)
	}

	tok, ok, err := carregarToken(o.TokenFile)
	if err != nil {
		return nil, &Error{Etapa: EtapaAuth, Err: err}
	}
	if !ok {
		o.Log.Info().Msg("sem token salvo; iniciando fluxo de consentimento")
		if o.Autorizar == nil {
			return nil, &Error{Etapa: EtapaAuth, Err: fmt.Errorf(
				"sem token salvo em %q e sem autorizador interativo", o.TokenFile)}
		}
		url := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
		codigo, err := o.Autorizar(url)
		if err != nil {
			return nil, &Error{Etapa: EtapaAuth, Err: err}
		}
		tok, err = conf.Exchange(ctx, codigo)
		if err != nil {
			return nil, &Error{Etapa: EtapaAuth, Err: fmt.Errorf("troca do código de autorização: %w", err)}
		}
		if err := salvarToken(o.TokenFile, tok); err != nil {
			return nil, &Error{Etapa: EtapaAuth, Err: err}
		}
	}

	// ReuseTokenSource evita refresh desnecessário; o wrapper persiste o
	// token novo sempre que o refresh acontecer.
	ts := oauth2.ReuseTokenSource(tok, &tokenPersistente{
		src:     conf.TokenSource(ctx, tok),
		arquivo: o.TokenFile,
		ultimo:  tok.AccessToken,
		log:     o.Log,
	})

	svc, err := yt.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, &Error{Etapa: EtapaAuth, Err: err}
	}

	return &Client{svc: svc, log: o.Log}, nil
}

// tokenPersistente regrava o token em disco quando o refresh gera um novo.
type tokenPersistente struct {
	src     oauth2.TokenSource
	arquivo string
	ultimo  string
	log     zerolog.Logger
}

func (t *tokenPersistente) Token() (*oauth2.Token, error) {
	tok, err := t.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != t.ultimo {
		t.ultimo = tok.AccessToken
		if err := salvarToken(t.arquivo, tok); err != nil {
			// Falhar aqui só custaria um novo refresh na próxima execução.
			t.log.Warn().Err(err).Str("arquivo", t.arquivo).Msg("não foi possível salvar o token atualizado")
		} else {
			t.log.Debug().Str("arquivo", t.arquivo).Msg("token atualizado salvo")
		}
	}
	return tok, nil
}

func carregarToken(arquivo string) (*oauth2.Token, bool, error) {
	b, err := os.ReadFile(arquivo)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, false, fmt.Errorf("token salvo em %q está corrompido: %w", arquivo, err)
	}
	return &tok, true, nil
}

func salvarToken(arquivo string, tok *oauth2.Token) error {
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(arquivo), filepath.Base(arquivo), b)
}
