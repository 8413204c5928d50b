package snap

import (
	"context"
	"errors"
	"fmt"
	"image"
	"maps"
	"slices"

	"github.com/allape/snapcat/snap/device"
	"github.com/allape/snapcat/snap/frame"
	"github.com/allape/snapcat/snap/marker"
	"github.com/allape/snapcat/snap/processor"
)

var ErrCapture = errors.New("capture failed")

type ProcessorError struct {
	Index int
	Name  string
	Err   error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor #%d %s: %v", e.Index, e.Name, e.Err)
}

func (e *ProcessorError) Unwrap() error {
	return e.Err
}

// Dispatcher captures a screenshot for a marker line and fans it out to the processors.
type Dispatcher struct {
	device     device.Device
	processors []processor.Processor
}

func NewDispatcher(dev device.Device, processors ...processor.Processor) *Dispatcher {
	return &Dispatcher{
		device:     dev,
		processors: slices.Clone(processors),
	}
}

// Dispatch takes one screenshot and hands it to every processor in order.
// A failing processor does not keep the others from running, all failures are joined.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) error {
	raw, err := d.device.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCapture, d.device.Serial(), err)
	}
	if raw == nil {
		return fmt.Errorf("%w: %s: no frame", ErrCapture, d.device.Serial())
	}

	img, decodeErr := frame.Decode(raw)
	meta := marker.Parse(line)

	if decodeErr != nil {
		return decodeErr
	}

	l.Verbose().Println("captured", img.Bounds().Size(), "for", marker.Format(meta))

	var errs []error
	for index, p := range d.processors {
		err := d.process(ctx, index, p, img, meta)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (d *Dispatcher) process(ctx context.Context, index int, p processor.Processor, img *image.RGBA, meta marker.Metadata) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ProcessorError{Index: index, Name: processor.Name(p), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	err = p.Process(ctx, img, maps.Clone(meta))
	if err != nil {
		return &ProcessorError{Index: index, Name: processor.Name(p), Err: err}
	}

	return nil
}

// Finish calls every shutdown hook even if some of them fail.
func (d *Dispatcher) Finish() error {
	var errs []error
	for index, p := range d.processors {
		err := d.finish(index, p)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) finish(index int, p processor.Processor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ProcessorError{Index: index, Name: processor.Name(p), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	err = p.Finish()
	if err != nil {
		return &ProcessorError{Index: index, Name: processor.Name(p), Err: err}
	}

	return nil
}
