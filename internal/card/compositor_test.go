package card

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"capela/internal/credential/models"
	"capela/pkg/dates"
	dErrors "capela/pkg/domain-errors"
	"capela/pkg/requestcontext"
)

// memLoader serves templates from memory so tests need no artwork on disk.
type memLoader struct {
	images map[string]image.Image
}

func (l *memLoader) Load(_ context.Context, name string) (image.Image, error) {
	img, ok := l.images[name]
	if !ok {
		return nil, errors.New("template not found: " + name)
	}
	return img, nil
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func pngBase64(img image.Image) string {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

type CompositorSuite struct {
	suite.Suite
	compositor *Compositor
}

func TestCompositorSuite(t *testing.T) {
	suite.Run(t, new(CompositorSuite))
}

func (s *CompositorSuite) SetupTest() {
	loader := &memLoader{images: map[string]image.Image{
		TemplateFront: solidImage(1100, 700, color.White),
		TemplateBack:  solidImage(1100, 700, color.White),
	}}

	var err error
	s.compositor, err = NewCompositor(loader, nil, nil)
	s.Require().NoError(err)
}

func (s *CompositorSuite) record() *models.CredentialRecord {
	return &models.CredentialRecord{
		ID:               "joao_da_silva_sao_paulo",
		FullName:         "João da Silva",
		BirthDate:        dates.CalendarDate{Year: 1980, Month: time.May, Day: 10},
		MotherName:       "Maria da Silva",
		FatherName:       "José da Silva",
		CPF:              "123.321.123-12",
		RG:               "12.321.432-0",
		BirthCity:        "Campinas",
		CreatedAt:        time.Date(2024, time.January, 15, 10, 0, 0, 0, time.Local),
		RegistrationDate: dates.CalendarDate{Year: 2024, Month: time.January, Day: 15},
		ExpirationDate:   dates.CalendarDate{Year: 2028, Month: time.January, Day: 15},
	}
}

func (s *CompositorSuite) decodeRender(data []byte) image.Image {
	img, err := png.Decode(bytes.NewReader(data))
	s.Require().NoError(err)
	return img
}

func (s *CompositorSuite) TestRenderFrontWithoutPhoto() {
	out, err := s.compositor.RenderFront(context.Background(), s.record())
	s.Require().NoError(err)

	img := s.decodeRender(out)
	s.Equal(1100, img.Bounds().Dx())
	s.Equal(700, img.Bounds().Dy())

	// The photo frame must stay untouched when the record carries no photo.
	for _, pt := range []image.Point{
		{photoX, photoY},
		{photoX + photoW - 1, photoY + photoH - 1},
		{photoX + photoW/2, photoY + photoH/2},
	} {
		r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
		s.Equal(uint32(0xffff), r)
		s.Equal(uint32(0xffff), g)
		s.Equal(uint32(0xffff), b)
	}
}

func (s *CompositorSuite) TestRenderFrontFillsPhotoFrame() {
	rec := s.record()
	rec.PhotoB64 = pngBase64(solidImage(300, 400, color.RGBA{R: 200, A: 255}))
	rec.PhotoMime = "image/png"

	out, err := s.compositor.RenderFront(context.Background(), rec)
	s.Require().NoError(err)
	img := s.decodeRender(out)

	// Every corner of the frame is covered by the scaled photo.
	for _, pt := range []image.Point{
		{photoX, photoY},
		{photoX + photoW - 1, photoY},
		{photoX, photoY + photoH - 1},
		{photoX + photoW - 1, photoY + photoH - 1},
		{photoX + photoW/2, photoY + photoH/2},
	} {
		r, g, _, _ := img.At(pt.X, pt.Y).RGBA()
		s.Greater(r, uint32(0x8000), "photo red channel at %v", pt)
		s.Less(g, uint32(0x8000), "photo green channel at %v", pt)
	}

	// One pixel past the frame the template shows through.
	r, g, b, _ := img.At(photoX+photoW, photoY).RGBA()
	s.Equal(uint32(0xffff), r)
	s.Equal(uint32(0xffff), g)
	s.Equal(uint32(0xffff), b)
}

func (s *CompositorSuite) TestRenderFrontDrawsText() {
	out, err := s.compositor.RenderFront(context.Background(), s.record())
	s.Require().NoError(err)
	img := s.decodeRender(out)

	s.Positive(countDarkPixels(img, image.Rect(frontNameX, frontNameY-30, frontNameX+400, frontNameY+8)))
	s.Positive(countDarkPixels(img, image.Rect(frontRoleX, frontRoleY-28, frontRoleX+300, frontRoleY+8)))
}

func (s *CompositorSuite) TestRenderFrontInvalidPhoto() {
	rec := s.record()
	rec.PhotoB64 = "not-base64!!"

	_, err := s.compositor.RenderFront(context.Background(), rec)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *CompositorSuite) TestRenderBack() {
	out, err := s.compositor.RenderBack(context.Background(), s.record())
	s.Require().NoError(err)
	img := s.decodeRender(out)

	s.Equal(1100, img.Bounds().Dx())

	// Each printed field leaves ink around its anchor.
	for _, anchor := range []image.Point{
		{backRGX, backRGY},
		{backCPFX, backCPFY},
		{backIssueX, backIssueY},
		{backBirthCityX, backBirthCityY},
		{backBirthDateX, backBirthDateY},
		{backMotherX, backMotherY},
		{backFatherX, backFatherY},
		{backExpirationX, backExpirationY},
	} {
		region := image.Rect(anchor.X, anchor.Y-28, anchor.X+260, anchor.Y+8)
		s.Positive(countDarkPixels(img, region), "no text near %v", anchor)
	}
}

func (s *CompositorSuite) TestRenderBackIssueDateFallsBackToRequestTime() {
	rec := s.record()
	rec.CreatedAt = time.Time{}

	ctx := requestcontext.WithTime(context.Background(), time.Date(2025, time.March, 3, 9, 0, 0, 0, time.Local))
	out, err := s.compositor.RenderBack(ctx, rec)
	s.Require().NoError(err)
	img := s.decodeRender(out)
	s.Positive(countDarkPixels(img, image.Rect(backIssueX, backIssueY-28, backIssueX+260, backIssueY+8)))
}

func (s *CompositorSuite) TestMissingTemplateFailsWholeRender() {
	compositor, err := NewCompositor(&memLoader{images: map[string]image.Image{}}, nil, nil)
	s.Require().NoError(err)

	_, err = compositor.RenderFront(context.Background(), s.record())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *CompositorSuite) TestScaleToFill() {
	s.Run("exact frame size", func() {
		scaled := scaleToFill(solidImage(300, 400, color.RGBA{B: 255, A: 255}), photoW, photoH)
		s.Equal(photoW, scaled.Bounds().Dx())
		s.Equal(photoH, scaled.Bounds().Dy())
	})

	s.Run("wide source is center-cropped", func() {
		scaled := scaleToFill(solidImage(800, 200, color.RGBA{B: 255, A: 255}), photoW, photoH)
		s.Equal(photoW, scaled.Bounds().Dx())
		s.Equal(photoH, scaled.Bounds().Dy())
	})
}

func (s *CompositorSuite) TestBuildPDF() {
	front, err := s.compositor.RenderFront(context.Background(), s.record())
	s.Require().NoError(err)
	back, err := s.compositor.RenderBack(context.Background(), s.record())
	s.Require().NoError(err)

	pdf, err := BuildPDF(front, back)
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func countDarkPixels(img image.Image, region image.Rectangle) int {
	count := 0
	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			if r < 0x4000 && g < 0x4000 && b < 0x4000 {
				count++
			}
		}
	}
	return count
}
