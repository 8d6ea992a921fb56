package server

import (
	"encoding/json"
	"net/http"
)

// wsRequest is one compute request over the websocket. The id is echoed back
// so clients can match responses to requests.
type wsRequest struct {
	ID        string `json:"id,omitempty"`
	Indicator string `json:"indicator"`
	computeRequest
}

type wsResponse struct {
	ID     string           `json:"id,omitempty"`
	Result *computeResponse `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// handleWebSocket serves compute requests over a websocket: the client sends
// wsRequest messages and receives one wsResponse per request.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	s.logger.Info().Str("remote", r.RemoteAddr).Msg("WebSocket connection established")

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.logger.Debug().Err(err).Msg("WebSocket read error")
			break
		}

		var req wsRequest
		resp := wsResponse{}
		if err := json.Unmarshal(payload, &req); err != nil {
			resp.Error = "invalid request: " + err.Error()
		} else {
			resp.ID = req.ID
			result, err := s.compute(r.Context(), req.Indicator, &req.computeRequest)
			if err != nil {
				resp.Error = err.Error()
			} else {
				resp.Result = result
			}
		}

		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Debug().Err(err).Msg("WebSocket write error")
			break
		}
	}

	s.logger.Info().Str("remote", r.RemoteAddr).Msg("WebSocket connection closed")
}
