package lote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blocoCompleto = `Título: Culto de Domingo
Pregador: Pr. Marcos
Data: 01/01/2030
Horário: 10:00`

func TestParse_Vazio(t *testing.T) {
	ts, avisos := Parse("", "", "")
	assert.Empty(t, ts)
	assert.Empty(t, avisos)
}

func TestParse_BlocoCompletoComModeloPadrao(t *testing.T) {
	ts, avisos := Parse(blocoCompleto, "", "")
	require.Len(t, ts, 1)
	assert.Empty(t, avisos)

	tr := ts[0]
	assert.Equal(t, "Culto de Domingo", tr.Titulo)
	assert.Equal(t, "Pr. Marcos", tr.Pregador)
	assert.Equal(t, "01/01/2030", tr.Data)
	assert.Equal(t, "10:00", tr.Horario)
	// Sem modelo compartilhado: o padrão é aplicado.
	assert.Equal(t, "Culto de Domingo - Pr. Marcos - 01/01/2030 - 10:00", tr.TituloFormatado)
}

func TestParse_BlocoIncompletoViraAviso(t *testing.T) {
	texto := blocoCompleto + "\n\n" + `Título: Vigília
Pregador: Pr. Pedro
Data: 02/01/2030`

	ts, avisos := Parse(texto, "", "")

	// Bloco 1 aceito; bloco 2 (sem horário) pulado sem abortar o lote.
	require.Len(t, ts, 1)
	assert.Equal(t, "Culto de Domingo", ts[0].Titulo)

	require.Len(t, avisos, 1)
	assert.Contains(t, avisos[0], "horario")
	assert.Contains(t, avisos[0], "Vigília")
}

func TestParse_AvisoListaTodosOsCamposFaltantes(t *testing.T) {
	ts, avisos := Parse("Data: 01/01/2030", "", "")
	assert.Empty(t, ts)
	require.Len(t, avisos, 1)
	// Ordem canônica dos campos.
	assert.Contains(t, avisos[0], "titulo, pregador, horario")
	// Sem título conhecido, o aviso não inventa um.
	assert.NotContains(t, avisos[0], "título:")
}

func TestParse_ChavesSemAcentoEEmCaixaAlta(t *testing.T) {
	texto := `TITULO: Culto
PREGADOR: João
DATA: 01/01/2030
HORARIO: 19:30`

	ts, avisos := Parse(texto, "", "")
	require.Len(t, ts, 1)
	assert.Empty(t, avisos)
	assert.Equal(t, "19:30", ts[0].Horario)
}

func TestParse_LinhasIrrelevantesSaoIgnoradas(t *testing.T) {
	// Linha sem ':' e chave desconhecida ("Local") não são erro; e o valor
	// de "Horário" contém ':'; só o primeiro separa chave/valor.
	texto := `Título: Culto
anotação qualquer
Local: Templo Central
Pregador: João
Data: 01/01/2030
Horário: 10:00`

	ts, avisos := Parse(texto, "", "")
	require.Len(t, ts, 1)
	assert.Empty(t, avisos)
	assert.Equal(t, "10:00", ts[0].Horario)
}

func TestParse_AnexaDescricaoEModeloCompartilhados(t *testing.T) {
	ts, avisos := Parse(blocoCompleto, "Participe conosco!", "{titulo} ({data})")
	require.Len(t, ts, 1)
	assert.Empty(t, avisos)

	assert.Equal(t, "Participe conosco!", ts[0].TextoDescricao)
	assert.Equal(t, "{titulo} ({data})", ts[0].ModeloTitulo)
	assert.Equal(t, "Culto de Domingo (01/01/2030)", ts[0].TituloFormatado)
}

func TestParse_ModeloRuimCaiNoTituloCru(t *testing.T) {
	ts, avisos := Parse(blocoCompleto, "", "{titulo} - {inexistente}")

	// A transmissão é aceita mesmo assim.
	require.Len(t, ts, 1)
	assert.Equal(t, "Culto de Domingo", ts[0].TituloFormatado)

	require.Len(t, avisos, 1)
	assert.Contains(t, avisos[0], "inexistente")
	assert.Contains(t, avisos[0], "Culto de Domingo")
}

func TestParse_VariosBlocosEmOrdem(t *testing.T) {
	texto := `Título: A
Pregador: P1
Data: 01/01/2030
Horário: 08:00

Título: B
Pregador: P2
Data: 01/01/2030
Horário: 10:00

Título: C
Pregador: P3
Data: 01/01/2030
Horário: 19:00`

	ts, avisos := Parse(texto, "", "")
	require.Len(t, ts, 3)
	assert.Empty(t, avisos)
	assert.Equal(t, "A", ts[0].Titulo)
	assert.Equal(t, "B", ts[1].Titulo)
	assert.Equal(t, "C", ts[2].Titulo)
}

func TestParse_CRLFEBlocosComEspacos(t *testing.T) {
	texto := "Título: Culto\r\nPregador: João\r\nData: 01/01/2030\r\nHorário: 10:00\r\n\r\n   \r\n"
	ts, avisos := Parse(texto, "", "")
	require.Len(t, ts, 1)
	assert.Empty(t, avisos)
}

func TestParse_SoAvisosSemBlocoValido(t *testing.T) {
	texto := "Título: X\n\nTítulo: Y"
	ts, avisos := Parse(texto, "", "")
	assert.Empty(t, ts)
	assert.Len(t, avisos, 2)
}
