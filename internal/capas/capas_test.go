package capas

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
)

func criaArquivos(t *testing.T, dir string, nomes ...string) {
	t.Helper()
	for _, n := range nomes {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644))
	}
}

func TestEscanear_OrdenaEFiltraPorExtensao(t *testing.T) {
	dir := t.TempDir()
	criaArquivos(t, dir, "02.jpg", "01.png", "03.JPEG", "notas.txt", "capa.webp")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "10.png"), 0o755))

	got, err := Escanear(dir)
	require.NoError(t, err)

	// Ordem lexicográfica; extensão é case-insensitive; txt/webp e
	// subdiretórios ficam de fora.
	require.Len(t, got, 3)
	assert.Equal(t, filepath.Join(dir, "01.png"), got[0])
	assert.Equal(t, filepath.Join(dir, "02.jpg"), got[1])
	assert.Equal(t, filepath.Join(dir, "03.JPEG"), got[2])
}

func TestEscanear_PastaInexistente(t *testing.T) {
	_, err := Escanear(filepath.Join(t.TempDir(), "nao-existe"))
	require.Error(t, err)

	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestParear_PorIndice(t *testing.T) {
	ts := []domain.Transmissao{{Titulo: "A"}, {Titulo: "B"}}
	arquivos := []string{"/capas/01.png", "/capas/02.png"}

	got, err := Parear(arquivos, ts)
	require.NoError(t, err)
	assert.Equal(t, "/capas/01.png", got[0].Capa)
	assert.Equal(t, "/capas/02.png", got[1].Capa)

	// A entrada não pode ser mutada (Parear devolve cópia).
	assert.Empty(t, ts[0].Capa)
}

func TestParear_ContagemDiferente(t *testing.T) {
	ts := []domain.Transmissao{{Titulo: "A"}, {Titulo: "B"}}

	_, err := Parear([]string{"/capas/01.png"}, ts)
	require.Error(t, err)

	var me *MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, 1, me.Capas)
	assert.Equal(t, 2, me.Transmissoes)
	assert.Equal(t, []string{"01.png"}, me.Arquivos)
}
