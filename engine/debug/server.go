package debug

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	xdraw "golang.org/x/image/draw"

	"github.com/spaghettifunk/volren/engine/core"
)

// maxPreviewEdge caps the streamed frame size; larger frames are scaled down
// before encoding.
const maxPreviewEdge = 512

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Volren</title><style>body{background:#111;margin:0}img{display:block;margin:2em auto}</style></head>
<body>
<img id="frame" alt="waiting for frames...">
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.binaryType = "blob";
ws.onmessage = (ev) => {
	const img = document.getElementById("frame");
	const url = URL.createObjectURL(ev.data);
	img.onload = () => URL.revokeObjectURL(url);
	img.src = url;
};
</script>
</body>
</html>`

// Server streams the latest composited frame as PNG over a websocket, so a
// headless session can be inspected from a browser.
type Server struct {
	addr     string
	upgrader websocket.Upgrader
	http     *http.Server

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
	frame   []byte // last encoded PNG
}

func NewServer(addr string) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.http = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start serves in the background and returns immediately.
func (s *Server) Start() {
	go func() {
		core.LogInfo("debug frame server listening on http://%s", s.addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			core.LogWarn("debug frame server: %v", err)
		}
	}()
}

func (s *Server) serveHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		core.LogWarn("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.mu.Lock()
	s.clients[conn] = connMutex
	frame := s.frame
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	// hand the newest frame to late joiners right away
	if frame != nil {
		connMutex.Lock()
		err = conn.WriteMessage(websocket.BinaryMessage, frame)
		connMutex.Unlock()
		if err != nil {
			return
		}
	}

	// drain control messages until the peer goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish encodes the frame and broadcasts it to every connected client.
// Frames larger than the preview cap are downscaled first.
func (s *Server) Publish(img image.Image) {
	img = downscale(img)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		core.LogWarn("frame encode: %v", err)
		return
	}
	frame := buf.Bytes()

	s.mu.Lock()
	s.frame = frame
	conns := make(map[*websocket.Conn]*sync.Mutex, len(s.clients))
	for c, m := range s.clients {
		conns[c] = m
	}
	s.mu.Unlock()

	var failed []*websocket.Conn
	for conn, mutex := range conns {
		mutex.Lock()
		err := conn.WriteMessage(websocket.BinaryMessage, frame)
		mutex.Unlock()
		if err != nil {
			conn.Close()
			failed = append(failed, conn)
		}
	}
	if len(failed) > 0 {
		s.mu.Lock()
		for _, conn := range failed {
			delete(s.clients, conn)
		}
		s.mu.Unlock()
	}
}

func downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxPreviewEdge && h <= maxPreviewEdge {
		return img
	}
	scale := float64(maxPreviewEdge) / float64(w)
	if h > w {
		scale = float64(maxPreviewEdge) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

func (s *Server) Close() error {
	s.mu.Lock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
