package ws

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The game client is served from the same process; cross-origin websocket
	// access is not restricted beyond that.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SetupRouter sets up the Gin router: the websocket endpoint plus the static
// game client.
func SetupRouter(srv *Services, staticDir string) *gin.Engine {
	router := gin.Default()

	router.GET("/ws", func(c *gin.Context) {
		ServeWS(srv, c.Writer, c.Request)
	})

	if staticDir != "" {
		index := filepath.Join(staticDir, "index.html")
		router.NoRoute(func(c *gin.Context) {
			c.File(index)
		})
	}

	return router
}

// ServeWS upgrades an HTTP request and runs the connection until its
// transport closes. Each connection gets its own context; closing the link
// cancels all pending work tied to it.
func ServeWS(srv *Services, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		srv.Log.Warn("websocket upgrade failed", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := newConn(conn, srv, cancel)
	go c.writePump(ctx)
	go c.readPump(ctx)
}
