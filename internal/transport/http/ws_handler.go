package http

import (
	"encoding/json"
	"log"
	"net/http"

	"gatebank/internal/answers"
	"gatebank/internal/domain"
	"github.com/gorilla/websocket"
)

// WSHandler streams progress updates and grades submissions over one
// websocket connection.
type WSHandler struct {
	handler  *Handler
	upgrader websocket.Upgrader
}

func NewWSHandler(handler *Handler) *WSHandler {
	return &WSHandler{
		handler: handler,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type submitPayload struct {
	UID    string   `json:"uid"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

type submitResult struct {
	UID    string            `json:"uid"`
	Result domain.EvalResult `json:"result"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and bridges the progress subscription
// and the submission flow onto the socket. Writes go through a single
// goroutine; gorilla connections do not allow concurrent writers.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.handler.tracker.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "progress", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "submit":
			var payload submitPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid submit payload"}}
				continue
			}
			q, err := h.handler.bank.GetByUID(payload.UID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "question not found"}}
				continue
			}
			record := h.handler.answers.LookupQuestion(q)
			result := answers.Evaluate(record, answers.Submission{Value: payload.Value, Values: payload.Values})
			if result.Status == domain.EvalEvaluated && result.Correct {
				if err := h.handler.tracker.MarkSolved(r.Context(), q.UID); err != nil {
					log.Printf("mark solved %s: %v", q.UID, err)
				}
			}
			send <- outboundMessage[any]{Type: "submitResult", Payload: submitResult{UID: q.UID, Result: result}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
