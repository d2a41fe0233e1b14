package domain

import "strings"

// Chaves canônicas dos campos obrigatórios de uma transmissão.
// São também os nomes de placeholder aceitos no modelo de título.
const (
	CampoTitulo   = "titulo"
	CampoPregador = "pregador"
	CampoData     = "data"
	CampoHorario  = "horario"
)

// CamposObrigatorios lista os campos obrigatórios em ordem canônica
// (a mesma ordem usada em avisos e no modelo de título padrão).
var CamposObrigatorios = []string{CampoTitulo, CampoPregador, CampoData, CampoHorario}

// Transmissao é a única entidade de domínio: uma live a ser agendada.
//
// Restrições:
// - Data no formato externo DD/MM/AAAA; Horario no formato HH:MM
// - TituloFormatado só é calculado a partir de uma transmissão completa
// - Link só é preenchido após o agendamento remoto ter sucesso
type Transmissao struct {
	Titulo   string
	Pregador string
	Data     string
	Horario  string

	// TextoDescricao e ModeloTitulo são compartilhados por todo o lote.
	TextoDescricao string
	ModeloTitulo   string

	// Derivados.
	TituloFormatado string
	Capa            string // caminho do arquivo de capa (pareado por índice)
	Link            string
}

// Completa informa se os quatro campos obrigatórios estão preenchidos.
func (t Transmissao) Completa() bool {
	return strings.TrimSpace(t.Titulo) != "" &&
		strings.TrimSpace(t.Pregador) != "" &&
		strings.TrimSpace(t.Data) != "" &&
		strings.TrimSpace(t.Horario) != ""
}

// Campos devolve o mapa de substituição usado na expansão do modelo de
// título. As chaves são as canônicas (sem acento).
func (t Transmissao) Campos() map[string]string {
	return map[string]string{
		CampoTitulo:   t.Titulo,
		CampoPregador: t.Pregador,
		CampoData:     t.Data,
		CampoHorario:  t.Horario,
	}
}
