package card

import (
	"bytes"

	"github.com/go-pdf/fpdf"

	dErrors "capela/pkg/domain-errors"
)

// Physical card size in millimeters (ISO/IEC 7810 ID-1).
const (
	pageWidthMM  = 85.6
	pageHeightMM = 54.0
)

// BuildPDF packages the rendered front and back PNGs into a two-page PDF at
// physical card size, each side full-bleed.
func BuildPDF(front, back []byte) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: pageWidthMM, Ht: pageHeightMM},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, side := range []struct {
		name string
		data []byte
	}{
		{"front", front},
		{"back", back},
	} {
		pdf.AddPage()
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(side.name, opts, bytes.NewReader(side.data))
		pdf.ImageOptions(side.name, 0, 0, pageWidthMM, pageHeightMM, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao gerar o PDF da credencial")
	}
	return buf.Bytes(), nil
}
