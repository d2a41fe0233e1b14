package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nicolasddr/agendador-lives-youtube/internal/app/flow"
	"github.com/nicolasddr/agendador-lives-youtube/internal/app/run"
	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast"
	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast/youtube"
	"github.com/nicolasddr/agendador-lives-youtube/internal/config"
	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
	"github.com/nicolasddr/agendador-lives-youtube/internal/infra/fsx"
	"github.com/nicolasddr/agendador-lives-youtube/internal/infra/httpx"
	"github.com/nicolasddr/agendador-lives-youtube/internal/relatorio"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 || isHelp(args[0]) {
		printUsage()
		return
	}

	switch args[0] {
	case "run":
		if code := runCmd(args[1:]); code != 0 {
			os.Exit(code)
		}
	default:
		fmt.Fprintf(os.Stderr, "comando desconhecido: %q\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runCmd(args []string) int {
	for _, a := range args {
		if isHelp(a) {
			printRunUsage()
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "erro de argumento: %v\n\n", err)
		printRunUsage()
		return 2
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "leitura do diretório atual falhou: %v\n", err)
		return 1
	}

	eff, err := config.LoadEffective(cwd, ra.CLIArgs)
	if err != nil {
		emitReport(reportForConfigError(ra, err))
		return 1
	}

	log := newLogger(ra.Verbose)

	progressW, interactive := pickProgressWriter()
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	ctx := context.Background()

	var be broadcast.Backend
	if !eff.DryRun {
		// Autenticação acontece antes da sessão, como etapa própria: falhar
		// aqui não deve virar N falhas de item lá na frente.
		be, err = autenticar(ctx, eff, interactive, log)
		if err != nil {
			emitReport(reportForAuthError(eff, err))
			return 1
		}
	}

	var prompt flow.Prompter
	if interactive {
		prompt = newTerminalPrompter(os.Stdin, progressW, eff)
	} else {
		prompt = &autoPrompter{stdin: os.Stdin}
	}

	res, err := flow.Executar(ctx, flow.Opcoes{
		Eff:     eff,
		Prompt:  prompt,
		Backend: be,
		Obs:     obs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sessão interrompida: %v\n", err)
		return 1
	}
	if res.Final == flow.EstadoCancelado {
		fmt.Fprintln(os.Stderr, "Operação cancelada pelo operador.")
		return 0
	}

	rr := res.Report

	// resultados.txt só em execução de verdade; dry-run não escreve nada.
	if !eff.DryRun && len(rr.Items) > 0 {
		if err := writeReportFile(eff.ReportFile, rr); err != nil {
			fmt.Fprintf(os.Stderr, "escrita de %s falhou: %v\n", eff.ReportFile, err)
			emitReport(rr)
			return 1
		}
	}

	emitReport(rr)
	if interactive && !eff.DryRun && len(rr.Items) > 0 {
		fmt.Fprintf(progressW, "relatório: %s\n", eff.ReportFile)
	}
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

type runArgs struct {
	config.CLIArgs
	Verbose bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	valor := func(i *int, nome string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s precisa de um valor", nome)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--config":
			v, err := valor(&i, a)
			if err != nil {
				return runArgs{}, err
			}
			ra.ConfigPath = v
		case strings.HasPrefix(a, "--config="):
			ra.ConfigPath = strings.TrimPrefix(a, "--config=")
		case a == "--capas":
			v, err := valor(&i, a)
			if err != nil {
				return runArgs{}, err
			}
			ra.CoversDir, ra.CoversSet = v, true
		case strings.HasPrefix(a, "--capas="):
			ra.CoversDir, ra.CoversSet = strings.TrimPrefix(a, "--capas="), true
		case a == "--lote":
			v, err := valor(&i, a)
			if err != nil {
				return runArgs{}, err
			}
			ra.BatchFile, ra.BatchSet = v, true
		case strings.HasPrefix(a, "--lote="):
			ra.BatchFile, ra.BatchSet = strings.TrimPrefix(a, "--lote="), true
		case a == "--privacidade":
			v, err := valor(&i, a)
			if err != nil {
				return runArgs{}, err
			}
			ra.Privacy, ra.PrivacySet = v, true
		case strings.HasPrefix(a, "--privacidade="):
			ra.Privacy, ra.PrivacySet = strings.TrimPrefix(a, "--privacidade="), true
		case a == "--relatorio":
			v, err := valor(&i, a)
			if err != nil {
				return runArgs{}, err
			}
			ra.ReportFile, ra.ReportSet = v, true
		case strings.HasPrefix(a, "--relatorio="):
			ra.ReportFile, ra.ReportSet = strings.TrimPrefix(a, "--relatorio="), true
		case a == "--publicar":
			ra.Publish, ra.PublishSet = true, true
		case strings.HasPrefix(a, "--publicar="):
			b, err := parseBool(strings.TrimPrefix(a, "--publicar="), "--publicar")
			if err != nil {
				return runArgs{}, err
			}
			ra.Publish, ra.PublishSet = b, true
		case a == "--dry-run":
			ra.DryRun, ra.DryRunSet = true, true
		case strings.HasPrefix(a, "--dry-run="):
			b, err := parseBool(strings.TrimPrefix(a, "--dry-run="), "--dry-run")
			if err != nil {
				return runArgs{}, err
			}
			ra.DryRun, ra.DryRunSet = b, true
		case a == "--verbose" || a == "-v":
			ra.Verbose = true
		default:
			return runArgs{}, fmt.Errorf("argumento desconhecido %q", a)
		}
	}

	if ra.PrivacySet && !broadcast.PrivacidadeValida(ra.Privacy) {
		return runArgs{}, fmt.Errorf("--privacidade aceita unlisted, public ou private; veio %q", ra.Privacy)
	}

	return ra, nil
}

func parseBool(v, nome string) (bool, error) {
	switch v {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%s aceita true ou false; veio %q", nome, v)
	}
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage() {
	fmt.Fprint(os.Stdout, `Uso:
  agendador run [opções]

Comandos:
  run    agenda transmissões no YouTube (interativo num terminal; em
         pipeline, lê o lote de --lote ou do stdin e emite o relatório JSON)

Use "agendador run --help" para as opções.
`)
}

func printRunUsage() {
	fmt.Fprint(os.Stdout, `Uso:
  agendador run [opções]

Opções:
  --config ARQ         arquivo de configuração (padrão: agendador.yaml no diretório atual)
  --capas DIR          pasta com as capas (pareadas por ordem alfabética)
  --lote ARQ           arquivo de lote (blocos Título/Pregador/Data/Horário separados por linha em branco)
  --privacidade P      unlisted|public|private (padrão: unlisted)
  --publicar[=bool]    tornar públicas logo após agendar
  --relatorio ARQ      destino do resultados.txt (padrão: resultados.txt)
  --dry-run[=bool]     valida tudo sem chamar a API
  -v, --verbose        logs de depuração no stderr
  -h, --help           esta ajuda
`)
}

func newLogger(verbose bool) zerolog.Logger {
	nivel := zerolog.WarnLevel
	if verbose {
		nivel = zerolog.DebugLevel
	}
	var w io.Writer = os.Stderr
	if isTTY(os.Stderr) {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(nivel).With().Timestamp().Logger()
}

func autenticar(ctx context.Context, eff config.EffectiveConfig, interactive bool, log zerolog.Logger) (broadcast.Backend, error) {
	var autorizar youtube.Autorizador
	if interactive {
		autorizar = autorizadorTerminal(os.Stdin, os.Stderr)
	}
	// O limitador de chamadas cobre tudo que sai para a API, inclusive o
	// refresh do token.
	return youtube.New(ctx, youtube.Opcoes{
		ClientSecretsFile: eff.ClientSecretsFile,
		TokenFile:         eff.TokenFile,
		Autorizar:         autorizar,
		HTTPClient:        httpx.NewAPIClient(),
		Log:               log,
	})
}

func emitReport(rr domain.RunReport) {
	if isTTY(os.Stdout) {
		fmt.Fprintf(os.Stdout, "Concluído: scheduled=%d published=%d failed=%d skipped=%d\n",
			rr.Summary.Scheduled, rr.Summary.Published, rr.Summary.Failed, rr.Summary.Skipped,
		)
		for _, it := range rr.Items {
			if it.Status != domain.StatusFailed {
				continue
			}
			chave := it.Titulo
			if chave == "" {
				chave = "<config>"
			}
			fmt.Fprintf(os.Stderr, "%s %s: %s\n", chave, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	// stdout não-TTY: exatamente um RunReport JSON (todo o resto vai para o
	// stderr).
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(rr)
	fmt.Fprintf(os.Stderr, "Concluído: scheduled=%d published=%d failed=%d skipped=%d\n",
		rr.Summary.Scheduled, rr.Summary.Published, rr.Summary.Failed, rr.Summary.Skipped,
	)
}

func reportForConfigError(ra runArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	code := config.Code(err)
	if code == "" {
		code = domain.ErrCodeConfigInvalid
	}
	rr := domain.RunReport{
		DryRun:     ra.DryRunSet && ra.DryRun,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: code,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func reportForAuthError(eff config.EffectiveConfig, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		DryRun:     eff.DryRun,
		StartedAt:  now,
		FinishedAt: now,
		Items: []domain.ItemResult{{
			Status:    domain.StatusFailed,
			ErrorCode: domain.ErrCodeAuthFailed,
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(destino string, rr domain.RunReport) error {
	return fsx.WriteFileAtomicReplace(filepath.Dir(destino), filepath.Base(destino), relatorio.Render(rr))
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func pickProgressWriter() (io.Writer, bool) {
	// Interativo exige stdin de terminal (as perguntas bloqueiam); o
	// progresso vai para o stderr para não poluir o JSON do stdout.
	if isTTY(os.Stdin) && isTTY(os.Stderr) {
		return os.Stderr, true
	}
	return io.Discard, false
}
