package serialport

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/allape/gogger"
	"github.com/allape/snapcat/snap/marker"
	"go.bug.st/serial"
)

var l = gogger.New("snap.processor.serialport")

const DefaultBaud = 9600

type Opener func(name string, mode *serial.Mode) (io.WriteCloser, error)

func OpenSerial(name string, mode *serial.Mode) (io.WriteCloser, error) {
	return serial.Open(name, mode)
}

// Processor announces every screenshot as one line on a serial port,
// e.g. to drive an external recorder or indicator.
//
//	snapcat {name=home} 1080x1920
type Processor struct {
	Port string
	Baud int
	Open Opener

	locker sync.Mutex
	writer io.WriteCloser
}

func New(port string, baud int) *Processor {
	if baud == 0 {
		baud = DefaultBaud
	}
	return &Processor{
		Port: port,
		Baud: baud,
		Open: OpenSerial,
	}
}

func (p *Processor) Name() string {
	return "serialport:" + p.Port
}

func (p *Processor) open() error {
	if p.writer != nil {
		return nil
	}

	writer, err := p.Open(p.Port, &serial.Mode{BaudRate: p.Baud})
	if err != nil {
		return err
	}

	l.Info().Println("opened", p.Port, "at", p.Baud)
	p.writer = writer

	return nil
}

func (p *Processor) closePort() error {
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}

func Line(img image.Image, meta marker.Metadata) string {
	size := img.Bounds().Size()
	return fmt.Sprintf("snapcat %s %dx%d\n", marker.Format(meta), size.X, size.Y)
}

func (p *Processor) Process(_ context.Context, img *image.RGBA, meta marker.Metadata) error {
	p.locker.Lock()
	defer p.locker.Unlock()

	err := p.open()
	if err != nil {
		return err
	}

	_, err = p.writer.Write([]byte(Line(img, meta)))
	if err != nil {
		// reopen on next screenshot
		_ = p.closePort()
		return err
	}

	return nil
}

func (p *Processor) Finish() error {
	p.locker.Lock()
	defer p.locker.Unlock()
	return p.closePort()
}
