package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/deepdoc/internal/retriever"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "ask"
	SessionID string `json:"session_id"` // empty for new sessions
	Question  string `json:"question"`
	Marks     int    `json:"marks"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type       string  `json:"type"` // "answer" or "error"
	SessionID  string  `json:"session_id"`
	Answer     string  `json:"answer,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	ChunksUsed int     `json:"chunks_used,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// handleWebSocket serves an interactive question session. Sessions are
// ephemeral: the ID only groups messages on one connection and nothing is
// persisted beyond the usual history table.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sessionID := uuid.NewString()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, sessionID, "invalid message format")
			continue
		}
		if req.SessionID != "" {
			sessionID = req.SessionID
		}

		switch req.Type {
		case "ask":
			s.handleWSAsk(conn, r, sessionID, req)
		default:
			s.sendWSError(conn, sessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleWSAsk(conn *websocket.Conn, r *http.Request, sessionID string, req wsRequest) {
	if req.Question == "" {
		s.sendWSError(conn, sessionID, "question is required")
		return
	}

	ctx := r.Context()
	marks := retriever.ClampMarks(req.Marks)

	results, err := s.retriever.Retrieve(ctx, req.Question, marks)
	if err != nil {
		s.sendWSError(conn, sessionID, "retrieval failed")
		return
	}

	ans, err := s.synth.Synthesize(ctx, req.Question, results, marks)
	if err != nil {
		s.sendWSError(conn, sessionID, "could not generate an answer")
		return
	}

	s.sendWS(conn, wsResponse{
		Type:       "answer",
		SessionID:  sessionID,
		Answer:     ans.Text,
		Confidence: ans.Confidence,
		ChunksUsed: ans.ChunksUsed,
	})
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.log.Warn("websocket write failed", zap.Error(err))
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, message string) {
	s.sendWS(conn, wsResponse{Type: "error", SessionID: sessionID, Error: message})
}
