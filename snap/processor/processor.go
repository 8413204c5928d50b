package processor

import (
	"context"
	"fmt"
	"image"

	"github.com/allape/snapcat/snap/marker"
)

// Processor consumes captured screenshots.
// The image is shared with the other processors of the same capture, copy it before keeping or modifying it.
// meta is a copy owned by the processor.
type Processor interface {
	Process(ctx context.Context, img *image.RGBA, meta marker.Metadata) error
	// Finish releases held resources, it is called once at shutdown even when nothing was captured.
	Finish() error
}

type Namer interface {
	Name() string
}

// Name returns a label for p used in logs and errors.
func Name(p Processor) string {
	if n, ok := p.(Namer); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", p)
}

// Func adapts a function into a Processor without a shutdown hook.
type Func func(ctx context.Context, img *image.RGBA, meta marker.Metadata) error

func (f Func) Process(ctx context.Context, img *image.RGBA, meta marker.Metadata) error {
	return f(ctx, img, meta)
}

func (f Func) Finish() error {
	return nil
}
