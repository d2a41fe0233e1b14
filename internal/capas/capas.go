// Package capas descobre os arquivos de capa e os associa às transmissões.
//
// O contrato é posicional: os arquivos são ordenados lexicograficamente e a
// capa N vai para a transmissão N. A quantidade de capas precisa ser
// exatamente a quantidade de transmissões.
package capas

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nicolasddr/agendador-lives-youtube/internal/domain"
)

// NotFoundError indica que a pasta de capas não existe.
type NotFoundError struct {
	Dir string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pasta de capas %q não encontrada", e.Dir)
}

// MismatchError indica que a contagem de capas difere da de transmissões.
// Arquivos lista o que foi encontrado, para o operador conferir a pasta.
type MismatchError struct {
	Capas        int
	Transmissoes int
	Arquivos     []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("número de capas (%d) difere do número de transmissões (%d); arquivos encontrados: %s",
		e.Capas, e.Transmissoes, strings.Join(e.Arquivos, ", "))
}

// Escanear lista os arquivos de imagem de dir (sem recursão), em ordem
// lexicográfica estável. Só png/jpg/jpeg contam; o resto é ignorado.
func Escanear(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{Dir: dir}
		}
		return nil, err
	}

	arquivos := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !isImagemExt(strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		arquivos = append(arquivos, filepath.Join(dir, e.Name()))
	}

	// ReadDir já ordena por nome, mas a ordenação é contrato aqui; não
	// dependemos de comportamento implícito.
	sort.Strings(arquivos)
	return arquivos, nil
}

func isImagemExt(ext string) bool {
	switch ext {
	case ".png", ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// Parear devolve uma cópia das transmissões com a capa atribuída por
// índice. Falha com *MismatchError quando as contagens divergem.
func Parear(arquivos []string, transmissoes []domain.Transmissao) ([]domain.Transmissao, error) {
	if len(arquivos) != len(transmissoes) {
		nomes := make([]string, 0, len(arquivos))
		for _, a := range arquivos {
			nomes = append(nomes, filepath.Base(a))
		}
		return nil, &MismatchError{
			Capas:        len(arquivos),
			Transmissoes: len(transmissoes),
			Arquivos:     nomes,
		}
	}

	out := append([]domain.Transmissao(nil), transmissoes...)
	for i := range out {
		out[i].Capa = arquivos[i]
	}
	return out, nil
}
