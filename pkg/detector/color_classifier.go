package detector

import (
	"Durian-Scanner/domain"
	"fmt"
	"image"
	"io"
	"math"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/gift"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	colorSampleWidth = 64
	minSaturation    = 0.12
	minValue         = 0.08
)

type (
	ColorClassifier interface {
		Classify(imagePath string) (domain.ColorResult, error)
	}

	hsvColorClassifier struct {
		filter *gift.GIFT
	}

	colorClass struct {
		color    string
		ripeness string
	}
)

var (
	classBrown  = colorClass{color: "Brown", ripeness: "Overripe"}
	classGolden = colorClass{color: "Golden Yellow", ripeness: "Ripe"}
	classYellow = colorClass{color: "Yellow-Green", ripeness: "Nearly Ripe"}
	classGreen  = colorClass{color: "Green", ripeness: "Unripe"}
	classOther  = colorClass{color: "Unknown", ripeness: "Undetermined"}
)

// NewColorClassifier returns the hue-vote heuristic used to label husk
// color. Images are downsampled before voting.
func NewColorClassifier() ColorClassifier {
	return &hsvColorClassifier{
		filter: gift.New(gift.Resize(colorSampleWidth, 0, gift.BoxResampling)),
	}
}

func (c *hsvColorClassifier) Classify(imagePath string) (domain.ColorResult, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return domain.ColorResult{}, fmt.Errorf("open image: %w", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return domain.ColorResult{}, fmt.Errorf("decode image: %w", err)
	}
	if err := domain.CheckImageDimensions(cfg.Width, cfg.Height); err != nil {
		return domain.ColorResult{}, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return domain.ColorResult{}, fmt.Errorf("rewind image: %w", err)
	}

	src, _, err := image.Decode(file)
	if err != nil {
		return domain.ColorResult{}, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewNRGBA(c.filter.Bounds(src.Bounds()))
	c.filter.Draw(dst, src)

	votes := make(map[colorClass]int)
	var sumR, sumG, sumB float64
	var counted int

	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			px := dst.NRGBAAt(x, y)
			if px.A == 0 {
				continue
			}
			r, g, bl := float64(px.R)/255, float64(px.G)/255, float64(px.B)/255
			h, s, v := rgbToHSV(r, g, bl)
			// near-gray and near-black pixels are background or shadow
			if s < minSaturation || v < minValue {
				continue
			}
			votes[classifyHue(h, v)]++
			sumR += r
			sumG += g
			sumB += bl
			counted++
		}
	}

	if counted == 0 {
		return domain.ColorResult{
			Color:    classOther.color,
			Ripeness: classOther.ripeness,
		}, domain.ErrColorUndetermined
	}

	winner, best := classOther, 0
	for _, class := range []colorClass{classGreen, classYellow, classGolden, classBrown, classOther} {
		if votes[class] > best {
			winner, best = class, votes[class]
		}
	}

	meanR, meanG, meanB := sumR/float64(counted), sumG/float64(counted), sumB/float64(counted)
	h, s, v := rgbToHSV(meanR, meanG, meanB)

	return domain.ColorResult{
		Color:      winner.color,
		Ripeness:   winner.ripeness,
		Confidence: round2(float64(best) / float64(counted)),
		MeanHex:    fmt.Sprintf("#%02x%02x%02x", to8(meanR), to8(meanG), to8(meanB)),
		Hue:        round2(h),
		Saturation: round2(s),
		Value:      round2(v),
	}, nil
}

func classifyHue(h, v float64) colorClass {
	switch {
	case h < 30 || (h < 45 && v < 0.35):
		return classBrown
	case h < 50:
		return classGolden
	case h < 75:
		return classYellow
	case h < 170:
		return classGreen
	default:
		return classOther
	}
}

// rgbToHSV takes channels in [0,1] and returns hue in degrees.
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min
	v = max
	if max > 0 {
		s = delta / max
	}
	if delta == 0 {
		return 0, s, v
	}
	switch max {
	case r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s, v
}

func to8(f float64) uint8 {
	return uint8(math.Round(f * 255))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
