package save

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/allape/gogger"
	"github.com/allape/snapcat/snap/marker"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
)

var l = gogger.New("snap.processor.save")

const DefaultNameKey = "name"

// Processor writes every screenshot as <dir>/<name>.png next to a <name>.toml holding its metadata.
type Processor struct {
	Dir     string
	NameKey string

	locker sync.Mutex
	count  int
}

func New(dir string) *Processor {
	return &Processor{
		Dir:     dir,
		NameKey: DefaultNameKey,
	}
}

func (p *Processor) Name() string {
	return "save:" + p.Dir
}

// FileName keeps letters, digits, '-', '_' and '.' and replaces everything else with '_'.
func FileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	return strings.TrimLeft(name, ".")
}

func (p *Processor) Process(_ context.Context, img *image.RGBA, meta marker.Metadata) error {
	p.locker.Lock()
	defer p.locker.Unlock()

	err := os.MkdirAll(p.Dir, 0755)
	if err != nil {
		return err
	}

	name := FileName(meta[p.NameKey])
	if name == "" {
		name = uuid.NewString()
	}

	base := filepath.Join(p.Dir, name)

	err = writePNG(base+".png", img)
	if err != nil {
		return err
	}

	sidecar, err := toml.Marshal(map[string]string(meta))
	if err != nil {
		return err
	}

	err = os.WriteFile(base+".toml", sidecar, 0644)
	if err != nil {
		return err
	}

	p.count++
	l.Info().Println("saved", base+".png")

	return nil
}

func writePNG(name string, img image.Image) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}

	err = png.Encode(file, img)
	if err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func (p *Processor) Finish() error {
	p.locker.Lock()
	defer p.locker.Unlock()

	l.Info().Println("saved", p.count, "screenshot(s) to", p.Dir)
	return nil
}
