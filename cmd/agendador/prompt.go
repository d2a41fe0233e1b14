package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicolasddr/agendador-lives-youtube/internal/app/flow"
	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast"
	"github.com/nicolasddr/agendador-lives-youtube/internal/capas"
	"github.com/nicolasddr/agendador-lives-youtube/internal/config"
	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
	"github.com/nicolasddr/agendador-lives-youtube/internal/lote"
	"github.com/nicolasddr/agendador-lives-youtube/internal/titulo"
)

// terminalPrompter implementa flow.Prompter sobre stdin/stderr. Todas as
// perguntas vão para o stderr: o stdout é reservado ao JSON do relatório.
type terminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
	eff config.EffectiveConfig

	// capasUsadas evita reusar --capas depois de uma recusa: na segunda
	// tentativa a pasta é perguntada de novo.
	capasUsadas bool
}

var _ flow.Prompter = (*terminalPrompter)(nil)

func newTerminalPrompter(in io.Reader, out io.Writer, eff config.EffectiveConfig) *terminalPrompter {
	return &terminalPrompter{
		in:  bufio.NewReader(in),
		out: out,
		eff: eff,
	}
}

func (p *terminalPrompter) Coletar(eff config.EffectiveConfig) ([]domain.Transmissao, []string, error) {
	fmt.Fprintln(p.out, "=== ENTRADA DE DADOS DAS TRANSMISSÕES ===")

	// Com --lote a coleta nem pergunta: o arquivo é a fonte.
	if eff.BatchFile != "" {
		b, err := os.ReadFile(eff.BatchFile)
		if err != nil {
			return nil, nil, fmt.Errorf("leitura do lote %s: %w", eff.BatchFile, err)
		}
		trs, avisos := lote.Parse(string(b), eff.DescriptionText, eff.TitleTemplate)
		p.resumo(trs)
		return trs, avisos, nil
	}

	fmt.Fprintln(p.out, "Escolha o modo de entrada:")
	fmt.Fprintln(p.out, "1. Entrada individual (interativa)")
	fmt.Fprintln(p.out, "2. Entrada em lote (colar texto com múltiplas transmissões)")
	modo, err := p.perguntar("\nEscolha uma opção (1 ou 2): ")
	if err != nil {
		return nil, nil, err
	}

	fmt.Fprintln(p.out, "\n=== TEXTO PERSONALIZADO PARA DESCRIÇÃO ===")
	fmt.Fprintln(p.out, "Texto adicionado à descrição de todas as transmissões (Enter para pular):")
	descricao, err := p.perguntar("")
	if err != nil {
		return nil, nil, err
	}
	if descricao == "" {
		descricao = eff.DescriptionText
	}

	var (
		trs    []domain.Transmissao
		avisos []string
	)
	switch modo {
	case "2":
		trs, avisos, err = p.coletarLote(eff, descricao)
	default:
		if modo != "1" {
			fmt.Fprintln(p.out, "Opção inválida. Usando modo interativo.")
		}
		trs, avisos, err = p.coletarIndividual(eff, descricao)
	}
	if err != nil {
		return nil, nil, err
	}

	p.resumo(trs)
	return trs, avisos, nil
}

func (p *terminalPrompter) coletarIndividual(eff config.EffectiveConfig, descricao string) ([]domain.Transmissao, []string, error) {
	fmt.Fprintln(p.out, "\nInsira os dados das transmissões (título vazio finaliza):")

	var (
		trs    []domain.Transmissao
		avisos []string
	)
	for {
		fmt.Fprintf(p.out, "\nTransmissão #%d\n", len(trs)+1)
		tituloCru, err := p.perguntar("Título: ")
		if err != nil {
			return nil, nil, err
		}
		if tituloCru == "" {
			if len(trs) == 0 {
				fmt.Fprintln(p.out, "Pelo menos uma transmissão deve ser informada.")
				continue
			}
			break
		}

		pregador, err := p.perguntar("Pregador: ")
		if err != nil {
			return nil, nil, err
		}
		data, err := p.perguntar("Data (DD/MM/AAAA): ")
		if err != nil {
			return nil, nil, err
		}
		horario, err := p.perguntar("Horário (HH:MM): ")
		if err != nil {
			return nil, nil, err
		}

		if pregador == "" || data == "" || horario == "" {
			fmt.Fprintln(p.out, "Todos os campos são obrigatórios. Tente novamente.")
			continue
		}

		t := domain.Transmissao{
			Titulo:         tituloCru,
			Pregador:       pregador,
			Data:           data,
			Horario:        horario,
			TextoDescricao: descricao,
			ModeloTitulo:   eff.TitleTemplate,
		}
		formatado, err := titulo.Expandir(eff.TitleTemplate, t.Campos())
		if err != nil {
			avisos = append(avisos, fmt.Sprintf("título de %q mantido sem formatação: %v", t.Titulo, err))
			formatado = t.Titulo
		}
		t.TituloFormatado = formatado
		trs = append(trs, t)
	}
	return trs, avisos, nil
}

func (p *terminalPrompter) coletarLote(eff config.EffectiveConfig, descricao string) ([]domain.Transmissao, []string, error) {
	fmt.Fprintln(p.out, "\nCole o texto com os dados das transmissões no formato:")
	fmt.Fprintln(p.out, "Título: [título da transmissão]")
	fmt.Fprintln(p.out, "Pregador: [nome do pregador]")
	fmt.Fprintln(p.out, "Data: [DD/MM/AAAA]")
	fmt.Fprintln(p.out, "Horário: [HH:MM]")
	fmt.Fprintln(p.out, "\nSepare cada transmissão com uma linha em branco.")
	fmt.Fprintln(p.out, "Finalize com uma linha contendo apenas um ponto (.) ou Ctrl+D.")
	fmt.Fprintln(p.out, "\n--- Cole seu texto abaixo ---")

	var linhas []string
	for {
		linha, err := p.in.ReadString('\n')
		linha = strings.TrimRight(linha, "\r\n")
		if strings.TrimSpace(linha) == "." {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if linha != "" {
					linhas = append(linhas, linha)
				}
				break
			}
			return nil, nil, err
		}
		linhas = append(linhas, linha)
	}

	trs, avisos := lote.Parse(strings.Join(linhas, "\n"), descricao, eff.TitleTemplate)
	for _, a := range avisos {
		fmt.Fprintf(p.out, "Aviso: %s\n", a)
	}
	return trs, avisos, nil
}

func (p *terminalPrompter) resumo(trs []domain.Transmissao) {
	if len(trs) == 0 {
		fmt.Fprintln(p.out, "\nNenhuma transmissão foi coletada.")
		return
	}
	fmt.Fprintf(p.out, "\nForam coletadas %d transmissões:\n", len(trs))
	for i, t := range trs {
		fmt.Fprintf(p.out, "%d. %s - %s %s\n", i+1, t.Titulo, t.Data, t.Horario)
	}
}

func (p *terminalPrompter) RevisarTitulos(trs []domain.Transmissao) (bool, error) {
	fmt.Fprintln(p.out, "\nTítulos que serão usados nas transmissões:")
	for i, t := range trs {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, t.TituloFormatado)
	}
	return p.perguntaSimNao("\nConfirma os títulos acima? (s/n): ")
}

func (p *terminalPrompter) SelecionarCapas(trs []domain.Transmissao) ([]string, error) {
	for {
		dir := ""
		if p.eff.CoversDir != "" && !p.capasUsadas {
			dir = p.eff.CoversDir
			p.capasUsadas = true
		} else {
			var err error
			dir, err = p.perguntar("\nInforme a pasta que contém as capas (Enter para agendar sem capas): ")
			if err != nil {
				return nil, err
			}
			if dir == "" {
				return nil, nil
			}
		}

		arquivos, err := capas.Escanear(dir)
		if err != nil {
			fmt.Fprintf(p.out, "Erro: %v\n", err)
			if err := p.tentarDeNovo(); err != nil {
				return nil, err
			}
			continue
		}
		if len(arquivos) != len(trs) {
			fmt.Fprintf(p.out, "Erro: o número de capas (%d) é diferente do número de transmissões (%d).\n",
				len(arquivos), len(trs))
			if err := p.tentarDeNovo(); err != nil {
				return nil, err
			}
			continue
		}

		fmt.Fprintln(p.out, "\nAssociação de capas às transmissões:")
		for i, a := range arquivos {
			fmt.Fprintf(p.out, "%d. %s -> %s\n", i+1, trs[i].Titulo, filepath.Base(a))
		}
		ok, err := p.perguntaSimNao("\nConfirma a associação acima? (s/n): ")
		if err != nil {
			return nil, err
		}
		if ok {
			return arquivos, nil
		}
		if err := p.tentarDeNovo(); err != nil {
			return nil, err
		}
	}
}

func (p *terminalPrompter) tentarDeNovo() error {
	ok, err := p.perguntaSimNao("Deseja tentar novamente? (s/n): ")
	if err != nil {
		return err
	}
	if !ok {
		return flow.ErrCancelado
	}
	return nil
}

func (p *terminalPrompter) ConfirmarPrivacidade(padrao string) (string, bool, error) {
	ok, err := p.perguntaSimNao(fmt.Sprintf(
		"\nDeseja agendar as transmissões como %s? (s/n): ", rotuloPrivacidade(padrao)))
	if err != nil {
		return "", false, err
	}
	if ok {
		return padrao, false, nil
	}

	reiniciar, err := p.perguntaSimNao("Deseja reiniciar o processo? (s/n): ")
	if err != nil {
		return "", false, err
	}
	if reiniciar {
		fmt.Fprintln(p.out, "\nReiniciando o processo...")
		return "", true, nil
	}

	fmt.Fprintln(p.out, "As transmissões serão agendadas como públicas.")
	return broadcast.PrivacidadePublica, false, nil
}

func (p *terminalPrompter) ConfirmarPublicacao() (bool, error) {
	return p.perguntaSimNao("\nDeseja tornar as transmissões públicas agora? (s/n): ")
}

func (p *terminalPrompter) perguntar(pergunta string) (string, error) {
	if pergunta != "" {
		fmt.Fprint(p.out, pergunta)
	}
	linha, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", flow.ErrCancelado
		}
		return "", err
	}
	return strings.TrimSpace(linha), nil
}

func (p *terminalPrompter) perguntaSimNao(pergunta string) (bool, error) {
	resp, err := p.perguntar(pergunta)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(resp, "s"), nil
}

func rotuloPrivacidade(p string) string {
	switch p {
	case broadcast.PrivacidadePublica:
		return "'públicas'"
	case broadcast.PrivacidadePrivada:
		return "'privadas'"
	default:
		return "'não listadas'"
	}
}

// autoPrompter atende sessões sem terminal (pipelines): o lote vem de
// --lote ou do stdin, as capas de --capas e todas as confirmações são
// respondidas pela configuração.
type autoPrompter struct {
	stdin io.Reader
	eff   config.EffectiveConfig
}

var _ flow.Prompter = (*autoPrompter)(nil)

func (p *autoPrompter) Coletar(eff config.EffectiveConfig) ([]domain.Transmissao, []string, error) {
	p.eff = eff

	var texto string
	if eff.BatchFile != "" {
		b, err := os.ReadFile(eff.BatchFile)
		if err != nil {
			return nil, nil, fmt.Errorf("leitura do lote %s: %w", eff.BatchFile, err)
		}
		texto = string(b)
	} else {
		b, err := io.ReadAll(p.stdin)
		if err != nil {
			return nil, nil, fmt.Errorf("leitura do lote no stdin: %w", err)
		}
		texto = string(b)
	}

	trs, avisos := lote.Parse(texto, eff.DescriptionText, eff.TitleTemplate)
	return trs, avisos, nil
}

func (p *autoPrompter) RevisarTitulos([]domain.Transmissao) (bool, error) { return true, nil }

func (p *autoPrompter) SelecionarCapas([]domain.Transmissao) ([]string, error) {
	if p.eff.CoversDir == "" {
		return nil, nil
	}
	// A divergência de contagem vira falha de item no pipeline; aqui não há
	// com quem negociar.
	return capas.Escanear(p.eff.CoversDir)
}

func (p *autoPrompter) ConfirmarPrivacidade(padrao string) (string, bool, error) {
	return padrao, false, nil
}

func (p *autoPrompter) ConfirmarPublicacao() (bool, error) { return false, nil }

// autorizadorTerminal conduz o consentimento OAuth: mostra a URL e espera o
// código colado de volta.
func autorizadorTerminal(in io.Reader, out io.Writer) func(string) (string, error) {
	r := bufio.NewReader(in)
	return func(authURL string) (string, error) {
		fmt.Fprintln(out, "\nAbra a URL abaixo no navegador e autorize o acesso:")
		fmt.Fprintln(out, authURL)
		fmt.Fprint(out, "\nCole o código de autorização: ")
		linha, err := r.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		codigo := strings.TrimSpace(linha)
		if codigo == "" {
			return "", errors.New("código de autorização vazio")
		}
		return codigo, nil
	}
}
