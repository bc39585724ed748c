package testpdf

import (
	"bytes"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Encrypt returns data encrypted by pdfcpu with AES of the given key length
func Encrypt(data []byte, userPW, ownerPW string, keyLength int) ([]byte, error) {
	api.DisableConfigDir()

	conf := model.NewAESConfiguration(userPW, ownerPW, keyLength)
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.Encrypt(bytes.NewReader(data), &buf, conf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
