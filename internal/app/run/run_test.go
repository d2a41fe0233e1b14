package run

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasddr/agendador-lives-youtube/internal/broadcast"
	"github.com/nicolasddr/agendador-lives-youtube/internal/config"
	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
)

// backendFalso registra os pedidos e devolve respostas programadas.
type backendFalso struct {
	pedidos []broadcast.Pedido
	erroEm  map[string]error // por título

	privacidades map[string]string // videoID -> privacidade
	erroPublicar error
}

func (b *backendFalso) Agendar(_ context.Context, p broadcast.Pedido) (broadcast.Resultado, error) {
	b.pedidos = append(b.pedidos, p)
	if err := b.erroEm[p.Titulo]; err != nil {
		return broadcast.Resultado{}, err
	}
	id := "vid" + string(rune('0'+len(b.pedidos)))
	return broadcast.Resultado{ID: id, Link: "https://youtube.com/watch?v=" + id}, nil
}

func (b *backendFalso) AtualizarPrivacidade(_ context.Context, videoID, privacidade string) error {
	if b.erroPublicar != nil {
		return b.erroPublicar
	}
	if b.privacidades == nil {
		b.privacidades = map[string]string{}
	}
	b.privacidades[videoID] = privacidade
	return nil
}

func capaJPEG(t *testing.T, dir, nome string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))

	caminho := filepath.Join(dir, nome)
	require.NoError(t, os.WriteFile(caminho, buf.Bytes(), 0o644))
	return caminho
}

func transmissao(titulo, pregador, data, horario string) domain.Transmissao {
	return domain.Transmissao{
		Titulo:          titulo,
		Pregador:        pregador,
		Data:            data,
		Horario:         horario,
		TituloFormatado: titulo + " - " + pregador + " - " + data + " - " + horario,
		TextoDescricao:  "Transmissão ao vivo.",
	}
}

func TestAgendar_DuasTransmissoesComCapas(t *testing.T) {
	dir := t.TempDir()
	c1 := capaJPEG(t, dir, "01.jpg")
	c2 := capaJPEG(t, dir, "02.jpg")

	be := &backendFalso{}
	rr := Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "01/09/2026", "19:00"),
			transmissao("Vigília", "Pr. Ana", "05/09/2026", "22:00"),
		},
		Capas:       []string{c1, c2},
		Privacidade: broadcast.PrivacidadeNaoListada,
	}, be, nil)

	require.Len(t, rr.Items, 2)
	assert.Equal(t, domain.StatusScheduled, rr.Items[0].Status)
	assert.Equal(t, domain.StatusScheduled, rr.Items[1].Status)
	assert.Equal(t, "https://youtube.com/watch?v=vid1", rr.Items[0].Link)
	assert.Equal(t, "01.jpg", rr.Items[0].Capa)
	assert.Equal(t, "02.jpg", rr.Items[1].Capa)
	assert.Equal(t, 2, rr.Summary.Scheduled)

	require.Len(t, be.pedidos, 2)
	p := be.pedidos[0]
	assert.Equal(t, "Culto - Pr. João - 01/09/2026 - 19:00", p.Titulo)
	assert.Equal(t, broadcast.PrivacidadeNaoListada, p.Privacidade)
	assert.NotEmpty(t, p.Capa)
	// 19:00 em UTC-4 é 23:00 UTC.
	assert.Equal(t, time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC), p.Inicio)
}

func TestAgendar_CapasDivergentesAbortamComItemSintetico(t *testing.T) {
	dir := t.TempDir()
	c1 := capaJPEG(t, dir, "01.jpg")

	be := &backendFalso{}
	rr := Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "01/09/2026", "19:00"),
			transmissao("Vigília", "Pr. Ana", "05/09/2026", "22:00"),
		},
		Capas: []string{c1},
	}, be, nil)

	require.Len(t, rr.Items, 1)
	assert.Equal(t, domain.StatusFailed, rr.Items[0].Status)
	assert.Equal(t, domain.ErrCodeCoversMismatch, rr.Items[0].ErrorCode)
	assert.Empty(t, be.pedidos, "nenhuma transmissão deve ser agendada sem pareamento")
}

func TestAgendar_HorarioInvalidoNaoDerrubaAsDemais(t *testing.T) {
	be := &backendFalso{}
	rr := Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "31/02/2026", "19:00"),
			transmissao("Vigília", "Pr. Ana", "05/09/2026", "22:00"),
		},
	}, be, nil)

	require.Len(t, rr.Items, 2)
	assert.Equal(t, domain.StatusFailed, rr.Items[0].Status)
	assert.Equal(t, domain.ErrCodeBadSchedule, rr.Items[0].ErrorCode)
	assert.Equal(t, domain.StatusScheduled, rr.Items[1].Status)
	assert.Len(t, be.pedidos, 1)
}

func TestAgendar_CapaIlegivelOuInvalida(t *testing.T) {
	dir := t.TempDir()
	ruim := filepath.Join(dir, "ruim.jpg")
	require.NoError(t, os.WriteFile(ruim, []byte("não é imagem"), 0o644))

	be := &backendFalso{}
	rr := Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "01/09/2026", "19:00"),
		},
		Capas: []string{ruim},
	}, be, nil)

	require.Len(t, rr.Items, 1)
	assert.Equal(t, domain.ErrCodeThumbnailInvalid, rr.Items[0].ErrorCode)
	assert.Empty(t, be.pedidos)

	rr = Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "01/09/2026", "19:00"),
		},
		Capas: []string{filepath.Join(dir, "inexistente.jpg")},
	}, be, nil)

	require.Len(t, rr.Items, 1)
	assert.Equal(t, domain.ErrCodeIOFailed, rr.Items[0].ErrorCode)
}

func TestAgendar_DryRunValidaSemChamarBackend(t *testing.T) {
	dir := t.TempDir()
	c1 := capaJPEG(t, dir, "01.jpg")

	be := &backendFalso{}
	rr := Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4, DryRun: true}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "01/09/2026", "19:00"),
			transmissao("Errada", "Pr. Ana", "31/02/2026", "22:00"),
		},
		Capas: []string{c1, c1},
	}, be, nil)

	require.Len(t, rr.Items, 2)
	assert.True(t, rr.DryRun)
	assert.Equal(t, domain.StatusSkipped, rr.Items[0].Status)
	// Validações continuam valendo no dry-run.
	assert.Equal(t, domain.ErrCodeBadSchedule, rr.Items[1].ErrorCode)
	assert.Empty(t, be.pedidos)
}

func TestAgendar_FalhaDoBackendViraFalhaDeItem(t *testing.T) {
	be := &backendFalso{erroEm: map[string]error{
		"Culto - Pr. João - 01/09/2026 - 19:00": errors.New("etapa broadcast: HTTP 403"),
	}}
	rr := Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "01/09/2026", "19:00"),
			transmissao("Vigília", "Pr. Ana", "05/09/2026", "22:00"),
		},
	}, be, nil)

	require.Len(t, rr.Items, 2)
	assert.Equal(t, domain.ErrCodeScheduleFailed, rr.Items[0].ErrorCode)
	assert.Contains(t, rr.Items[0].ErrorMsg, "HTTP 403")
	assert.Equal(t, domain.StatusScheduled, rr.Items[1].Status)
	assert.Equal(t, 1, rr.Summary.Failed)
	assert.Equal(t, 1, rr.Summary.Scheduled)
}

func TestAgendar_AvisosDoLoteEntramNoRelatorio(t *testing.T) {
	rr := Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Avisos: []string{"transmissão ignorada por falta de campos: horario"},
	}, &backendFalso{}, nil)

	assert.Equal(t, []string{"transmissão ignorada por falta de campos: horario"}, rr.Warnings)
	assert.Empty(t, rr.Items)
}

func TestPublicar_ViraApenasAsAgendadas(t *testing.T) {
	be := &backendFalso{}
	rr := domain.RunReport{
		Items: []domain.ItemResult{
			{Titulo: "Culto", Link: "https://youtube.com/watch?v=abc", Status: domain.StatusScheduled},
			{Titulo: "Quebrada", Status: domain.StatusFailed, ErrorCode: domain.ErrCodeBadSchedule},
		},
	}
	rr.Finalize()

	Publicar(context.Background(), &rr, be, nil)

	assert.Equal(t, domain.StatusPublished, rr.Items[0].Status)
	assert.Equal(t, domain.StatusFailed, rr.Items[1].Status)
	assert.Equal(t, broadcast.PrivacidadePublica, be.privacidades["abc"])
	assert.Equal(t, 1, rr.Summary.Published)
	assert.Equal(t, 0, rr.Summary.Scheduled)
}

func TestPublicar_FalhaMarcaPublishFailed(t *testing.T) {
	be := &backendFalso{erroPublicar: errors.New("HTTP 500")}
	rr := domain.RunReport{
		Items: []domain.ItemResult{
			{Titulo: "Culto", Link: "https://youtube.com/watch?v=abc", Status: domain.StatusScheduled},
		},
	}
	rr.Finalize()

	Publicar(context.Background(), &rr, be, nil)

	assert.Equal(t, domain.StatusFailed, rr.Items[0].Status)
	assert.Equal(t, domain.ErrCodePublishFailed, rr.Items[0].ErrorCode)
	assert.Contains(t, rr.Items[0].ErrorMsg, "abc")
}

// observadorGravador guarda os eventos para inspeção.
type observadorGravador struct {
	starts int
	fases  []string
	items  []int
}

func (o *observadorGravador) OnStart(config.EffectiveConfig) { o.starts++ }
func (o *observadorGravador) OnPhaseDone(nome string, _ map[string]any, _ time.Duration) {
	o.fases = append(o.fases, nome)
}
func (o *observadorGravador) OnItemDone(idx, _ int, _ domain.ItemResult, _ time.Duration) {
	o.items = append(o.items, idx)
}

func TestAgendar_EmiteEventosNaOrdem(t *testing.T) {
	dir := t.TempDir()
	c1 := capaJPEG(t, dir, "01.jpg")

	obs := &observadorGravador{}
	Agendar(context.Background(), config.EffectiveConfig{UTCOffsetHours: -4}, Entrada{
		Transmissoes: []domain.Transmissao{
			transmissao("Culto", "Pr. João", "01/09/2026", "19:00"),
		},
		Capas: []string{c1},
	}, &backendFalso{}, obs)

	assert.Equal(t, 1, obs.starts)
	assert.Equal(t, []string{"capas"}, obs.fases)
	assert.Equal(t, []int{1}, obs.items)
}
