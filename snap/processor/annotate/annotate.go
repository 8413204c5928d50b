package annotate

import (
	"context"
	"image"
	"image/color"
	"slices"
	"sync"

	"github.com/allape/snapcat/helper"
	"github.com/allape/snapcat/snap/marker"
	"github.com/allape/snapcat/snap/processor"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	fontOnce sync.Once
	font     *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		font, fontErr = truetype.Parse(goregular.TTF)
	})
	return font, fontErr
}

type Options struct {
	FontSize   float64
	Background color.Color
	Foreground color.Color
}

// Processor stamps the metadata onto a copy of the screenshot and passes it on to next.
type Processor struct {
	next    processor.Processor
	options Options
}

func New(next processor.Processor, options *Options) *Processor {
	if options == nil {
		options = &Options{}
	}

	o := *options
	if o.FontSize == 0 {
		o.FontSize = 24
	}
	if o.Background == nil {
		o.Background = color.RGBA{A: 160}
	}
	if o.Foreground == nil {
		o.Foreground = color.White
	}

	return &Processor{
		next:    next,
		options: o,
	}
}

func (p *Processor) Name() string {
	return "annotate>" + processor.Name(p.next)
}

func (p *Processor) Process(ctx context.Context, img *image.RGBA, meta marker.Metadata) error {
	annotated, err := Annotate(img, meta, p.options)
	if err != nil {
		return err
	}
	return p.next.Process(ctx, annotated, meta)
}

func (p *Processor) Finish() error {
	return p.next.Finish()
}

// Annotate draws one key=value line per entry on a banner at the bottom of a copy of img.
func Annotate(img *image.RGBA, meta marker.Metadata, options Options) (*image.RGBA, error) {
	dst := helper.Clone(img)
	if len(meta) == 0 {
		return dst, nil
	}

	f, err := loadFont()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	size := dst.Bounds().Size()
	width, height := float64(size.X), float64(size.Y)

	padding := options.FontSize / 2
	lineHeight := options.FontSize * 1.4
	bannerHeight := lineHeight*float64(len(keys)) + padding*2

	dc := gg.NewContextForRGBA(dst)

	dc.SetColor(options.Background)
	dc.DrawRectangle(0, height-bannerHeight, width, bannerHeight)
	dc.Fill()

	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: options.FontSize}))
	dc.SetColor(options.Foreground)

	top := height - bannerHeight + padding
	for i, key := range keys {
		y := top + lineHeight*(float64(i)+0.5)
		dc.DrawStringAnchored(key+"="+meta[key], padding, y, 0, 0.5)
	}

	return dst, nil
}
