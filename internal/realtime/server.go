package realtime

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// ServeWS upgrades the request and starts the connection's pumps. A "token"
// query parameter is handled as an immediate authenticate event.
func (c *Channel) ServeWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     c.origins.check,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	session, err := c.connect(r.RemoteAddr, 2)
	if err != nil {
		log.Printf("Rejecting connection from %s: %v", r.RemoteAddr, err)
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		_ = conn.Close()
		return
	}
	log.Printf("Client connected from %s (session %s)", r.RemoteAddr, session.ID)

	if token := r.URL.Query().Get("token"); token != "" {
		if !c.Authenticate(session, token) {
			c.Disconnect(session)
		}
	}

	cl := &client{conn: conn, session: session, channel: c}
	go func() {
		defer c.wg.Done()
		cl.writePump()
	}()
	go func() {
		defer c.wg.Done()
		cl.readPump()
	}()
}
