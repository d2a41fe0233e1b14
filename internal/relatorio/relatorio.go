// Package relatorio gera o resultados.txt: o registro em texto plano que o
// operador guarda/compartilha depois do agendamento.
package relatorio

import (
	"bytes"
	"fmt"

	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
)

// Render produz o conteúdo do arquivo. Determinístico: mesma entrada, mesmos
// bytes (o arquivo costuma ser conferido no diff de um dia para o outro).
func Render(rr domain.RunReport) []byte {
	var b bytes.Buffer

	b.WriteString("=== RESULTADO DO AGENDAMENTO DE TRANSMISSÕES ===\n\n")

	for i, it := range rr.Items {
		fmt.Fprintf(&b, "Transmissão #%d\n", i+1)
		fmt.Fprintf(&b, "Título: %s\n", it.Titulo)
		fmt.Fprintf(&b, "Pregador: %s\n", it.Pregador)
		fmt.Fprintf(&b, "Data: %s\n", it.Data)
		fmt.Fprintf(&b, "Horário: %s\n", it.Horario)
		fmt.Fprintf(&b, "Link: %s\n", valorOuTraco(it.Link))
		fmt.Fprintf(&b, "Status: %s\n", it.Status)
		if it.Status == domain.StatusFailed {
			fmt.Fprintf(&b, "Erro: %s\n", it.ErrorMsg)
		}
		b.WriteString("\n")
	}

	if len(rr.Warnings) > 0 {
		b.WriteString("Avisos:\n")
		for _, a := range rr.Warnings {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}

	if rr.Summary.Failed == 0 {
		b.WriteString("Processo concluído com sucesso!\n")
	} else {
		fmt.Fprintf(&b, "Processo concluído com %d falha(s).\n", rr.Summary.Failed)
	}

	return b.Bytes()
}

func valorOuTraco(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
