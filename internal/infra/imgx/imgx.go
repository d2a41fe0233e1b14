// Package imgx normaliza as capas para o formato aceito pelo
// thumbnails.set da API (JPEG/PNG, até 2 MB).
package imgx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // registra o decoder PNG (capa nem sempre é jpeg)
)

// maxBytes é o limite do upload de miniatura imposto pela API.
const maxBytes = 2 << 20

// MiniaturaJPEG valida a capa e devolve os bytes prontos para upload.
//
// Regras:
// - entrada precisa decodificar como JPEG ou PNG
// - JPEG dentro do limite passa intacto (não recomprimir sem necessidade)
// - PNG (ou JPEG acima do limite) é reencodado como JPEG
// - se mesmo reencodada a imagem passar de 2 MB, falha
func MiniaturaJPEG(capa []byte) ([]byte, error) {
	if len(capa) == 0 {
		return nil, errors.New("capa vazia")
	}

	img, formato, err := image.Decode(bytes.NewReader(capa))
	if err != nil {
		return nil, fmt.Errorf("capa não é uma imagem válida: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, errors.New("imagem com dimensões inválidas")
	}

	if formato == "jpeg" && len(capa) <= maxBytes {
		return capa, nil
	}

	var out bytes.Buffer
	// Qualidade 90: suficiente para miniatura, ajuda a caber no limite.
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	if out.Len() > maxBytes {
		return nil, fmt.Errorf("capa excede o limite de 2 MB mesmo reencodada (%d bytes)", out.Len())
	}
	return out.Bytes(), nil
}
