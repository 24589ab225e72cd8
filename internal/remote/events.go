package remote

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

const writeTimeout = 5 * time.Second

// event is one message on the event stream.
type event struct {
	Client string         `json:"client"`
	Seq    int            `json:"seq"`
	Status statusResponse `json:"status"`
}

// handleEvents streams a status message after every controller change,
// starting with the current status.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Debug("Websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	client := uuid.NewString()
	logger := s.log.With("client", client)
	logger.Debug("Event stream opened")

	// Nothing is expected from the client; reading only notices its close.
	ctx := conn.CloseRead(r.Context())

	snapshots, unsubscribe := s.ctrl.Subscribe()
	defer unsubscribe()

	seq := 0
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Event stream closed")
			return
		case snap, ok := <-snapshots:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "controller closed")
				return
			}
			seq++
			if err := s.send(ctx, conn, event{Client: client, Seq: seq, Status: fromSnapshot(snap)}); err != nil {
				logger.Debug("Event write failed", "err", err)
				return
			}
		}
	}
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, ev event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
