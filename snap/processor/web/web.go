package web

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/allape/gogger"
	"github.com/allape/snapcat/helper"
	"github.com/allape/snapcat/snap/marker"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var l = gogger.New("snap.processor.web")

const (
	DefaultWebsocketPath = "/ws"
	writeTimeout         = 5 * time.Second
	shutdownTimeout      = 5 * time.Second
)

// Snapshot describes the latest screenshot, it is what /latest.json returns and what websocket clients receive.
type Snapshot struct {
	Sequence   uint64          `json:"sequence"`
	CapturedAt time.Time       `json:"capturedAt"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Changed    bool            `json:"changed"`
	Metadata   marker.Metadata `json:"metadata"`
}

type Options struct {
	Cors          bool
	WebsocketPath string
}

type client struct {
	conn   *websocket.Conn
	locker sync.Mutex
}

func (c *client) send(v any) error {
	c.locker.Lock()
	defer c.locker.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *client) close() {
	c.locker.Lock()
	defer c.locker.Unlock()
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
		time.Now().Add(writeTimeout),
	)
	_ = c.conn.Close()
}

// Processor keeps the latest screenshot and serves it over HTTP, pushing a Snapshot to websocket clients on every capture.
type Processor struct {
	engine   *gin.Engine
	upgrader websocket.Upgrader

	locker   sync.RWMutex
	latest   *image.RGBA
	snapshot *Snapshot

	clientsLocker sync.Mutex
	clients       map[*client]struct{}
	finished      bool
}

func New(options *Options) *Processor {
	if options == nil {
		options = &Options{}
	}
	if options.WebsocketPath == "" {
		options.WebsocketPath = DefaultWebsocketPath
	}

	gin.SetMode(gin.ReleaseMode)

	p := &Processor{
		engine:  gin.New(),
		clients: map[*client]struct{}{},
	}

	p.engine.Use(gin.Recovery())

	if options.Cors {
		p.engine.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet},
		}))
		p.upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	}

	p.engine.GET("/latest.png", p.handlePNG)
	p.engine.GET("/latest.json", p.handleJSON)
	p.engine.GET(options.WebsocketPath, p.handleWebsocket)

	return p
}

func (p *Processor) Name() string {
	return "web"
}

func (p *Processor) Handler() http.Handler {
	return p.engine
}

// ListenAndServe serves until ctx is done.
func (p *Processor) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: p.engine,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.ListenAndServe()
	}()

	l.Info().Println("serving screenshots on", addr)

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		return err
	}

	err = <-errChan
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (p *Processor) Process(_ context.Context, img *image.RGBA, meta marker.Metadata) error {
	latest := helper.Clone(img)

	p.locker.Lock()
	snapshot := &Snapshot{
		CapturedAt: time.Now(),
		Width:      latest.Bounds().Dx(),
		Height:     latest.Bounds().Dy(),
		Changed:    p.latest == nil || helper.Changed(p.latest, latest, helper.DefaultSliceCount),
		Metadata:   meta,
	}
	if p.snapshot != nil {
		snapshot.Sequence = p.snapshot.Sequence
	}
	snapshot.Sequence++
	p.latest = latest
	p.snapshot = snapshot
	p.locker.Unlock()

	p.broadcast(snapshot)

	return nil
}

func (p *Processor) broadcast(snapshot *Snapshot) {
	p.clientsLocker.Lock()
	clients := make([]*client, 0, len(p.clients))
	for c := range p.clients {
		clients = append(clients, c)
	}
	p.clientsLocker.Unlock()

	for _, c := range clients {
		err := c.send(snapshot)
		if err != nil {
			l.Warn().Println("drop websocket client:", err)
			p.unregister(c)
			c.close()
		}
	}
}

func (p *Processor) current() (*image.RGBA, *Snapshot) {
	p.locker.RLock()
	defer p.locker.RUnlock()
	return p.latest, p.snapshot
}

func (p *Processor) handlePNG(c *gin.Context) {
	latest, _ := p.current()
	if latest == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no screenshot yet"})
		return
	}

	buffer := bytes.NewBuffer(nil)
	err := png.Encode(buffer, latest)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "image/png", buffer.Bytes())
}

func (p *Processor) handleJSON(c *gin.Context) {
	_, snapshot := p.current()
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no screenshot yet"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (p *Processor) register(c *client) bool {
	p.clientsLocker.Lock()
	defer p.clientsLocker.Unlock()
	if p.finished {
		return false
	}
	p.clients[c] = struct{}{}
	return true
}

func (p *Processor) unregister(c *client) {
	p.clientsLocker.Lock()
	defer p.clientsLocker.Unlock()
	delete(p.clients, c)
}

func (p *Processor) handleWebsocket(c *gin.Context) {
	conn, err := p.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		l.Warn().Println("upgrade:", err)
		return
	}

	cl := &client{conn: conn}
	if !p.register(cl) {
		cl.close()
		return
	}
	defer func() {
		p.unregister(cl)
		_ = conn.Close()
	}()

	if _, snapshot := p.current(); snapshot != nil {
		err = cl.send(snapshot)
		if err != nil {
			return
		}
	}

	// only close frames are expected from clients
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Finish disconnects every websocket client, the HTTP server is stopped through ListenAndServe's context.
func (p *Processor) Finish() error {
	p.clientsLocker.Lock()
	p.finished = true
	clients := p.clients
	p.clients = map[*client]struct{}{}
	p.clientsLocker.Unlock()

	for c := range clients {
		c.close()
	}

	return nil
}
