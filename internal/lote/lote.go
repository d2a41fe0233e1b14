// Package lote transforma o texto colado pelo operador em transmissões
// validadas.
//
// O formato é o mesmo aceito pela entrada em lote do terminal:
//
//	Título: Culto de Domingo
//	Pregador: Pr. Marcos
//	Data: 01/01/2030
//	Horário: 10:00
//
// com uma linha em branco separando cada transmissão. Blocos malformados
// nunca abortam o lote: viram avisos e o processamento continua.
package lote

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
	"github.com/nicolasddr/agendador-lives-youtube/internal/titulo"
)

// chaveCanonica normaliza a chave de uma linha "chave: valor" para o nome
// canônico do campo. Aceita grafias com e sem acento, em qualquer caixa.
// Chaves desconhecidas retornam "" (a linha é ignorada em silêncio).
func chaveCanonica(chave string) string {
	switch strings.ToLower(strings.TrimSpace(chave)) {
	case "título", "titulo":
		return domain.CampoTitulo
	case "pregador":
		return domain.CampoPregador
	case "data":
		return domain.CampoData
	case "horário", "horario":
		return domain.CampoHorario
	default:
		return ""
	}
}

// Parse separa texto em blocos (delimitados por linha em branco) e devolve
// as transmissões completas mais os avisos acumulados, em ordem de bloco.
//
// Contrato:
// - nunca retorna erro: bloco malformado vira aviso e é pulado
// - falha de expansão do título NÃO descarta a transmissão: cai no título
//   cru e gera aviso
// - texto sem nenhum bloco válido devolve lista vazia (o chamador decide se
//   isso é fatal)
func Parse(texto, textoDescricao, modeloTitulo string) ([]domain.Transmissao, []string) {
	transmissoes := make([]domain.Transmissao, 0, 8)
	avisos := make([]string, 0, 4)

	texto = strings.ReplaceAll(texto, "\r\n", "\n")
	for _, bloco := range strings.Split(texto, "\n\n") {
		if strings.TrimSpace(bloco) == "" {
			continue
		}

		dados := parseBloco(bloco)

		var faltando []string
		for _, campo := range domain.CamposObrigatorios {
			if strings.TrimSpace(dados[campo]) == "" {
				faltando = append(faltando, campo)
			}
		}
		if len(faltando) > 0 {
			aviso := fmt.Sprintf("transmissão ignorada por falta de campos: %s",
				strings.Join(faltando, ", "))
			if t := strings.TrimSpace(dados[domain.CampoTitulo]); t != "" {
				aviso += fmt.Sprintf(" (título: %q)", t)
			}
			avisos = append(avisos, aviso)
			continue
		}

		t := domain.Transmissao{
			Titulo:         dados[domain.CampoTitulo],
			Pregador:       dados[domain.CampoPregador],
			Data:           dados[domain.CampoData],
			Horario:        dados[domain.CampoHorario],
			TextoDescricao: textoDescricao,
			ModeloTitulo:   modeloTitulo,
		}

		formatado, err := titulo.Expandir(modeloTitulo, t.Campos())
		if err != nil {
			// Modelo ruim não derruba a transmissão: mantém o título cru.
			var te *titulo.Error
			if errors.As(err, &te) {
				avisos = append(avisos, fmt.Sprintf(
					"título de %q mantido sem formatação: %v", t.Titulo, err))
			} else {
				avisos = append(avisos, fmt.Sprintf(
					"falha ao formatar título de %q: %v", t.Titulo, err))
			}
			formatado = t.Titulo
		}
		t.TituloFormatado = formatado

		transmissoes = append(transmissoes, t)
	}

	return transmissoes, avisos
}

// parseBloco lê as linhas "chave: valor" de um bloco. Linhas em branco,
// linhas sem ':' e chaves desconhecidas são ignoradas (não são erro).
// A última ocorrência de uma chave repetida vence.
func parseBloco(bloco string) map[string]string {
	dados := map[string]string{}
	for _, linha := range strings.Split(bloco, "\n") {
		if strings.TrimSpace(linha) == "" {
			continue
		}
		chave, valor, ok := strings.Cut(linha, ":")
		if !ok {
			continue
		}
		campo := chaveCanonica(chave)
		if campo == "" {
			continue
		}
		dados[campo] = strings.TrimSpace(valor)
	}
	return dados
}
