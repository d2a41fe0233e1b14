// Package config monta a configuração efetiva do agendador a partir de
// quatro fontes, nesta ordem de precedência: argumentos de linha de
// comando > variáveis de ambiente (incluindo .env) > agendador.yaml >
// padrões embutidos.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast"
)

const (
	// ErrCodeNotFound indica --config apontando para arquivo inexistente.
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid indica configuração ilegível ou campo fora do aceito.
	ErrCodeInvalid = "config_invalid"
)

const (
	DefaultConfigName    = "agendador.yaml"
	DefaultClientSecrets = "client_secret.json"
	DefaultTokenFile     = "token.json"
	DefaultReportFile    = "resultados.txt"
	DefaultOrganization  = "Igreja"
	// DefaultUTCOffset reproduz a conversão fixa UTC-4 herdada (ver
	// broadcast.HorarioUTC para o porquê de não "consertar" aqui).
	DefaultUTCOffset = -4
)

// CLIArgs traz só o que a linha de comando expõe, preservando a informação
// de "foi passado explicitamente"; sem isso, --privacidade public não
// conseguiria sobrepor privacy do arquivo.
type CLIArgs struct {
	ConfigPath string

	CoversDir string
	CoversSet bool

	BatchFile string
	BatchSet  bool

	Privacy    string
	PrivacySet bool

	ReportFile string
	ReportSet  bool

	Publish    bool
	PublishSet bool

	DryRun    bool
	DryRunSet bool
}

// FileConfig espelha o agendador.yaml.
type FileConfig struct {
	Organization      string `yaml:"organization"`
	ClientSecretsFile string `yaml:"client_secrets_file"`
	TokenFile         string `yaml:"token_file"`
	CoversDir         string `yaml:"covers_dir"`
	BatchFile         string `yaml:"batch_file"`
	ReportFile        string `yaml:"report_file"`
	Privacy           string `yaml:"privacy"`
	TitleTemplate     string `yaml:"title_template"`
	DescriptionText   string `yaml:"description_text"`
	UTCOffsetHours    *int   `yaml:"utc_offset_hours"`
	Publish           *bool  `yaml:"publish"`
}

// EffectiveConfig é a configuração final, já mesclada e validada. A
// implementação consome daqui e não refaz precedência nem defaults.
type EffectiveConfig struct {
	Organization      string
	ClientSecretsFile string
	TokenFile         string
	CoversDir         string
	BatchFile         string
	ReportFile        string
	Privacy           string
	TitleTemplate     string
	DescriptionText   string
	UTCOffsetHours    int
	Publicar          bool
	DryRun            bool
}

// Error é o erro estruturado da fase de configuração (com error_code).
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: arquivo de configuração %q não encontrado", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s: configuração %q inválida: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: configuração %q inválida", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code extrai o error_code; vazio quando err não é *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective descobre, lê e mescla a configuração.
//
// Descoberta (fixa):
// 1) --config dado: o arquivo precisa existir
// 2) sem --config: <cwd>/agendador.yaml é opcional
//
// Um <cwd>/.env, se existir, é carregado antes de ler as variáveis de
// ambiente (ORGANIZATION_NAME, CLIENT_SECRETS_FILE).
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	// Mesmo papel do load_dotenv: opcional e silencioso quando ausente.
	_ = godotenv.Load(filepath.Join(cwdAbs, ".env"))

	cfgPath := filepath.Join(cwdAbs, DefaultConfigName)
	obrigatorio := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		obrigatorio = true
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if obrigatorio && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}

	return merge(cwdAbs, cfgPath, cli, fc)
}

func merge(cwdAbs, cfgPath string, cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	organization := DefaultOrganization
	if v := strings.TrimSpace(fc.Organization); v != "" {
		organization = v
	}
	if v := strings.TrimSpace(os.Getenv("ORGANIZATION_NAME")); v != "" {
		organization = v
	}

	secrets := DefaultClientSecrets
	if v := strings.TrimSpace(fc.ClientSecretsFile); v != "" {
		secrets = v
	}
	if v := strings.TrimSpace(os.Getenv("CLIENT_SECRETS_FILE")); v != "" {
		secrets = v
	}

	token := DefaultTokenFile
	if v := strings.TrimSpace(fc.TokenFile); v != "" {
		token = v
	}

	// privacidade: CLI > arquivo > padrão "unlisted".
	privacy := broadcast.PrivacidadeNaoListada
	if cli.PrivacySet {
		privacy = cli.Privacy
	} else if v := strings.TrimSpace(fc.Privacy); v != "" {
		privacy = v
	}
	if !broadcast.PrivacidadeValida(privacy) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath,
			Err: fmt.Errorf("privacy deve ser unlisted, public ou private; veio %q", privacy)}
	}

	coversDir := strings.TrimSpace(fc.CoversDir)
	if cli.CoversSet {
		coversDir = cli.CoversDir
	}

	batchFile := strings.TrimSpace(fc.BatchFile)
	if cli.BatchSet {
		batchFile = cli.BatchFile
	}

	reportFile := DefaultReportFile
	if v := strings.TrimSpace(fc.ReportFile); v != "" {
		reportFile = v
	}
	if cli.ReportSet {
		reportFile = cli.ReportFile
	}

	offset := DefaultUTCOffset
	if fc.UTCOffsetHours != nil {
		offset = *fc.UTCOffsetHours
	}
	if offset < -12 || offset > 14 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath,
			Err: fmt.Errorf("utc_offset_hours fora do intervalo [-12, 14]: %d", offset)}
	}

	publicar := false
	if cli.PublishSet {
		publicar = cli.Publish
	} else if fc.Publish != nil {
		publicar = *fc.Publish
	}

	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	}

	return EffectiveConfig{
		Organization:      organization,
		ClientSecretsFile: absCleanFrom(cwdAbs, secrets),
		TokenFile:         absCleanFrom(cwdAbs, token),
		CoversDir:         absCleanFromOpcional(cwdAbs, coversDir),
		BatchFile:         absCleanFromOpcional(cwdAbs, batchFile),
		ReportFile:        absCleanFrom(cwdAbs, reportFile),
		Privacy:           privacy,
		TitleTemplate:     strings.TrimSpace(fc.TitleTemplate),
		DescriptionText:   strings.TrimSpace(fc.DescriptionText),
		UTCOffsetHours:    offset,
		Publicar:          publicar,
		DryRun:            dryRun,
	}, nil
}

// absCleanFrom transforma p em caminho absoluto e limpo, relativo a base
// quando necessário.
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if p == "" || p == "." {
		return base
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

func absCleanFromOpcional(base, p string) string {
	if strings.TrimSpace(p) == "" {
		return ""
	}
	return absCleanFrom(base, p)
}

// readFileConfig lê e decodifica o YAML. exists indica se o arquivo estava
// lá (ausência não é erro; o chamador decide).
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	// Campo desconhecido é quase sempre typo; melhor acusar do que ignorar.
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			// Arquivo vazio equivale a "sem configuração".
			return FileConfig{}, true, nil
		}
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
