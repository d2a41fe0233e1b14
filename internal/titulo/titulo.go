// Package titulo expande o modelo de título de uma transmissão.
//
// Um modelo é um texto livre com placeholders no formato {nome}; cada nome
// precisa existir no mapa de campos no momento da expansão. Não há suporte a
// chaves aninhadas nem a escape de '{'.
package titulo

import (
	"fmt"
	"strings"
)

// ModeloPadrao é usado quando o lote não define um modelo próprio.
const ModeloPadrao = "{titulo} - {pregador} - {data} - {horario}"

// Error indica que o modelo referencia placeholders sem campo correspondente.
// Faltando preserva a ordem de primeira aparição no modelo, sem duplicatas.
type Error struct {
	Faltando []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("modelo de título referencia campos inexistentes: %s",
		strings.Join(e.Faltando, ", "))
}

// Expandir substitui todos os placeholders de modelo pelos valores de campos.
//
// Regras:
// - modelo vazio (após trim) usa ModeloPadrao
// - qualquer placeholder sem campo correspondente falha com *Error antes de
//   substituir qualquer coisa
// - a substituição é feita em uma única passada: se um valor contém algo no
//   formato {nome}, esse texto entra literal e NÃO é re-expandido
//
// Função pura: não há efeitos colaterais sobre os argumentos.
func Expandir(modelo string, campos map[string]string) (string, error) {
	if strings.TrimSpace(modelo) == "" {
		modelo = ModeloPadrao
	}

	var faltando []string
	visto := map[string]struct{}{}
	for _, nome := range placeholders(modelo) {
		if _, ok := campos[nome]; ok {
			continue
		}
		if _, ok := visto[nome]; ok {
			continue
		}
		visto[nome] = struct{}{}
		faltando = append(faltando, nome)
	}
	if len(faltando) > 0 {
		return "", &Error{Faltando: faltando}
	}

	var out strings.Builder
	out.Grow(len(modelo))
	resto := modelo
	for {
		i := strings.IndexByte(resto, '{')
		if i < 0 {
			out.WriteString(resto)
			return out.String(), nil
		}
		j := strings.IndexByte(resto[i:], '}')
		if j < 0 {
			// '{' sem fechamento: texto literal até o fim.
			out.WriteString(resto)
			return out.String(), nil
		}
		nome := resto[i+1 : i+j]
		out.WriteString(resto[:i])
		if v, ok := campos[nome]; ok && nome != "" {
			out.WriteString(v)
		} else {
			// "{}" e afins não são placeholders: permanecem literais.
			out.WriteString(resto[i : i+j+1])
		}
		resto = resto[i+j+1:]
	}
}

// placeholders extrai os nomes na ordem de aparição (com repetições; o
// chamador deduplica). Um nome é o trecho máximo entre um '{' e o próximo
// '}'; o par "{}" vazio não conta como placeholder.
func placeholders(modelo string) []string {
	var nomes []string
	resto := modelo
	for {
		i := strings.IndexByte(resto, '{')
		if i < 0 {
			return nomes
		}
		resto = resto[i+1:]
		j := strings.IndexByte(resto, '}')
		if j < 0 {
			return nomes
		}
		if nome := resto[:j]; nome != "" {
			nomes = append(nomes, nome)
		}
		resto = resto[j+1:]
	}
}
