package card

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// fontSet holds the two bold faces the card layout was designed against:
// 26px for the front name line, 24px for every other field.
type fontSet struct {
	nameFace  font.Face
	labelFace font.Face
}

func loadFonts() (*fontSet, error) {
	ft, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded bold font: %w", err)
	}

	nameFace, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: 26, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("build 26px face: %w", err)
	}
	labelFace, err := opentype.NewFace(ft, &opentype.FaceOptions{Size: 24, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("build 24px face: %w", err)
	}

	return &fontSet{nameFace: nameFace, labelFace: labelFace}, nil
}
