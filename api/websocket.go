package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/fredseries/internal/client"
	"github.com/seenimoa/fredseries/internal/errs"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origin policy is enforced by the CORS middleware
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed between messages from the peer.
	readWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// WSMessage is a message sent over WebSocket connections.
//
// Client to server: "get" (Data is a SeriesRequest) and "ping".
// Server to client: "stage", "result", "error" and "pong".
type WSMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// WSStage reports a pipeline transition for a streamed request.
type WSStage struct {
	RequestID string       `json:"request_id"`
	Stage     client.Stage `json:"stage"`
}

// inbound mirrors WSMessage with Data left undecoded.
type inbound struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// handleWebSocket upgrades the connection and serves series requests over
// it, streaming every stage transition before the final result. Requests
// on one connection run one at a time.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	send := func(msg WSMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(msg)
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			if send(WSMessage{Type: "error", Data: APIResponse{Error: "invalid message: " + err.Error()}}) != nil {
				return
			}
			continue
		}

		switch msg.Type {
		case "ping":
			err = send(WSMessage{Type: "pong"})
		case "get":
			err = s.streamSeries(r, msg.Data, send)
		default:
			err = send(WSMessage{Type: "error", Data: APIResponse{Error: "unknown message type: " + msg.Type}})
		}
		if err != nil {
			return
		}
	}
}

// streamSeries runs one request, sending a "stage" message per transition
// and a closing "result" or "error". The returned error is a write failure.
func (s *Server) streamSeries(r *http.Request, body map[string]any, send func(WSMessage) error) error {
	source, _ := body["source"].(string)
	f, err := s.registry.Get(source)
	if err != nil {
		return send(WSMessage{Type: "error", Data: APIResponse{Error: err.Error()}})
	}

	// The hook runs synchronously on this goroutine, so writes stay serialized.
	var writeErr error
	hook := client.WithStageHook(func(id string, st client.Stage) {
		if writeErr == nil {
			writeErr = send(WSMessage{Type: "stage", Data: WSStage{RequestID: id, Stage: st}})
		}
	})
	c := client.New(f, s.log, append(append([]client.Option{}, s.opts...), hook)...)

	res, err := c.GetSeries(r.Context(), client.Params{
		SeriesID:  body["series_id"],
		Dates:     body["dates"],
		StartDate: body["start_date"],
		EndDate:   body["end_date"],
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		return send(WSMessage{Type: "error", Data: APIResponse{Error: err.Error(), Kind: string(errs.KindOf(err))}})
	}
	return send(WSMessage{Type: "result", Data: APIResponse{Success: true, Data: res}})
}
