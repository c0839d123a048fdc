package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"taprush/internal/sessions"
	"taprush/internal/wshub"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
)

const wsSendBuffer = 16

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("[WS] Accept error: %v\n", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := &wshub.Client{
		ID:   uuid.New().String(),
		Conn: conn,
		Send: make(chan []byte, wsSendBuffer),
	}

	st := sess.Runner.Snapshot()
	initial, err := json.Marshal(wshub.ServerMessage{Type: wshub.MsgState, ClientID: client.ID, State: &st})
	if err != nil {
		log.Printf("[WS] Marshal error: %v\n", err)
		return
	}
	client.Send <- initial

	sess.Hub.Register(client)
	defer sess.Hub.Unregister(client.ID)
	log.Printf("[WS] Client %s joined session %s\n", client.ID, sess.Code)

	go client.WritePump(ctx)
	go func() {
		select {
		case <-sess.Closed():
			cancel()
		case <-ctx.Done():
		}
	}()

	s.readPump(ctx, sess, conn)
	conn.Close(websocket.StatusNormalClosure, "")
}

// readPump applies client commands to the session until the socket closes.
func (s *Server) readPump(ctx context.Context, sess *sessions.Session, conn *websocket.Conn) {
	for {
		var msg wshub.ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				log.Printf("[WS] Read error: %v\n", err)
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case wshub.MsgStart:
			sess.Runner.Start()
		case wshub.MsgReset:
			sess.Runner.Reset()
		case wshub.MsgTap:
			sess.Runner.Tap(msg.TargetID, msg.Point())
		default:
			log.Printf("[WS] Unknown message type %q\n", msg.Type)
		}
	}
}
