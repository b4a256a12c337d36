// Package card renders the two-sided credential card: template images
// overlaid with record data at fixed coordinates, plus the print-ready PDF.
package card

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"log/slog"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"capela/internal/credential/models"
	"capela/internal/platform/metrics"
	"capela/pkg/dates"
	dErrors "capela/pkg/domain-errors"
	"capela/pkg/requestcontext"
)

// Layout coordinates, measured on the template artwork. Text coordinates are
// the left edge of the baseline, matching the artwork's printed guide lines.
const (
	frontNameX, frontNameY = 246, 395
	frontRoleX, frontRoleY = 246, 477

	photoX, photoY = 794, 288
	photoW, photoH = 153, 205

	backRGX, backRGY                 = 51, 224
	backCPFX, backCPFY               = 331, 224
	backIssueX, backIssueY           = 521, 224
	backBirthCityX, backBirthCityY   = 51, 299
	backBirthDateX, backBirthDateY   = 521, 299
	backMotherX, backMotherY         = 51, 376
	backFatherX, backFatherY         = 51, 413
	backExpirationX, backExpirationY = 714, 399
)

// frontRoleLabel is the printed office title, fixed for every record.
const frontRoleLabel = "Capelão"

// Compositor renders card sides from a record and the template artwork.
type Compositor struct {
	assets  AssetLoader
	fonts   *fontSet
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewCompositor builds a Compositor. The asset loader is required; logger
// and metrics may be nil in tests.
func NewCompositor(assets AssetLoader, logger *slog.Logger, m *metrics.Metrics) (*Compositor, error) {
	if assets == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "asset loader is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	fonts, err := loadFonts()
	if err != nil {
		return nil, err
	}
	return &Compositor{assets: assets, fonts: fonts, logger: logger, metrics: m}, nil
}

// RenderFront composites the front side: full name, the fixed role label and
// the photo scaled to fill its frame. Any template or photo failure fails
// the whole render; there is no partial card.
func (c *Compositor) RenderFront(ctx context.Context, rec *models.CredentialRecord) ([]byte, error) {
	tmpl, err := c.assets.Load(ctx, TemplateFront)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao carregar modelo da credencial")
	}

	dc := gg.NewContextForImage(tmpl)
	dc.SetColor(color.Black)

	dc.SetFontFace(c.fonts.nameFace)
	dc.DrawString(rec.FullName, frontNameX, frontNameY)

	dc.SetFontFace(c.fonts.labelFace)
	dc.DrawString(frontRoleLabel, frontRoleX, frontRoleY)

	if rec.PhotoB64 != "" {
		photo, err := decodePhoto(rec.PhotoB64)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "falha ao decodificar a foto da credencial")
		}
		dc.DrawImage(scaleToFill(photo, photoW, photoH), photoX, photoY)
	}

	out, err := encodePNG(dc)
	if err != nil {
		return nil, err
	}
	c.metrics.IncrementCardRendered("front")
	return out, nil
}

// RenderBack composites the back side: identity fields and lifecycle dates
// at their printed positions. The issue date falls back to the request time
// when the record predates creation timestamps.
func (c *Compositor) RenderBack(ctx context.Context, rec *models.CredentialRecord) ([]byte, error) {
	tmpl, err := c.assets.Load(ctx, TemplateBack)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao carregar modelo da credencial")
	}

	issueDate := dates.FormatDisplayValue(rec.CreatedAt)
	if issueDate == "" {
		issueDate = dates.FromTime(requestcontext.Now(ctx)).FormatDisplay()
	}

	dc := gg.NewContextForImage(tmpl)
	dc.SetColor(color.Black)
	dc.SetFontFace(c.fonts.labelFace)

	dc.DrawString(rec.RG, backRGX, backRGY)
	dc.DrawString(rec.CPF, backCPFX, backCPFY)
	dc.DrawString(issueDate, backIssueX, backIssueY)
	dc.DrawString(rec.BirthCity, backBirthCityX, backBirthCityY)
	dc.DrawString(rec.BirthDate.FormatDisplay(), backBirthDateX, backBirthDateY)
	dc.DrawString(rec.MotherName, backMotherX, backMotherY)
	dc.DrawString(rec.FatherName, backFatherX, backFatherY)
	dc.DrawString(rec.ExpirationDate.FormatDisplay(), backExpirationX, backExpirationY)

	out, err := encodePNG(dc)
	if err != nil {
		return nil, err
	}
	c.metrics.IncrementCardRendered("back")
	return out, nil
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "falha ao gerar a imagem da credencial")
	}
	return buf.Bytes(), nil
}

func decodePhoto(b64 string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	return img, nil
}

// scaleToFill scales src to cover a w by h frame, cropping the overflow
// around the center so the photo is never letterboxed or distorted.
func scaleToFill(src image.Image, w, h int) image.Image {
	sb := src.Bounds()
	srcW, srcH := sb.Dx(), sb.Dy()

	crop := sb
	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(w) / float64(h)
	if srcAspect > dstAspect {
		cropW := int(float64(srcH) * dstAspect)
		x0 := sb.Min.X + (srcW-cropW)/2
		crop = image.Rect(x0, sb.Min.Y, x0+cropW, sb.Max.Y)
	} else if srcAspect < dstAspect {
		cropH := int(float64(srcW) / dstAspect)
		y0 := sb.Min.Y + (srcH-cropH)/2
		crop = image.Rect(sb.Min.X, y0, sb.Max.X, y0+cropH)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, crop, xdraw.Src, nil)
	return dst
}
