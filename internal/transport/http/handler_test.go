package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gatebank/internal/answers"
	"gatebank/internal/bank"
	"gatebank/internal/domain"
	"gatebank/internal/infra/memory"
	"gatebank/internal/progress"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *progress.Tracker) {
	t.Helper()

	bankSvc, err := bank.NewService([]domain.CanonicalQuestion{
		{
			UID: "go:1", Title: "Q1", Subject: "Databases", SubjectSlug: "databases",
			Exam: domain.ExamMeta{Year: 2024, YearSetKey: "2024-s1"},
			Type: domain.TypeMCQ,
		},
		{
			UID: "go:2", Title: "Q2", Subject: "Algorithms", SubjectSlug: "algorithms",
			Exam: domain.ExamMeta{Year: 2020, YearSetKey: "2020-s0"},
			Type: domain.TypeNAT,
		},
	})
	if err != nil {
		t.Fatalf("bank: %v", err)
	}

	store := answers.NewStore()
	store.AddRecord("go:1", domain.AnswerRecord{
		Type:   domain.AnswerMCQ,
		Answer: domain.AnswerValue{Options: []string{"B"}},
	})

	tracker, err := progress.NewTracker(context.Background(), memory.NewProgressStore(0))
	if err != nil {
		t.Fatalf("tracker: %v", err)
	}
	tracker.SetTotal(bankSvc.Len())

	handler := NewHandler(bankSvc, store, tracker)
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/ws", NewWSHandler(handler).ServeWS)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, tracker
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func postJSON(t *testing.T, url string, body any, out any) int {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)
	if status := getJSON(t, server.URL+"/healthz", nil); status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
}

func TestQuestionsWithFilter(t *testing.T) {
	server, _ := newTestServer(t)

	var resp questionsResponse
	getJSON(t, server.URL+"/questions", &resp)
	if resp.Total != 2 || resp.Count != 2 {
		t.Fatalf("unexpected unfiltered response %+v", resp)
	}

	getJSON(t, server.URL+"/questions?subjects=databases", &resp)
	if resp.Count != 1 || resp.Questions[0].UID != "go:1" {
		t.Fatalf("unexpected filtered response %+v", resp)
	}
}

func TestQuestionByUID(t *testing.T) {
	server, _ := newTestServer(t)

	var q domain.CanonicalQuestion
	if status := getJSON(t, server.URL+"/questions/go:1", &q); status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if q.UID != "go:1" {
		t.Fatalf("unexpected question %+v", q)
	}
	if status := getJSON(t, server.URL+"/questions/go:404", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestFacets(t *testing.T) {
	server, _ := newTestServer(t)

	var facets bank.Facets
	getJSON(t, server.URL+"/facets", &facets)
	if facets.MinYear != 2020 || facets.MaxYear != 2024 {
		t.Fatalf("unexpected facets %+v", facets)
	}
}

func TestEvaluateMarksSolved(t *testing.T) {
	server, tracker := newTestServer(t)

	var resp evaluateResponse
	status := postJSON(t, server.URL+"/evaluate", evaluateRequest{UID: "go:1", Value: "b"}, &resp)
	if status != http.StatusOK {
		t.Fatalf("unexpected status %d", status)
	}
	if !resp.Result.Correct || resp.Result.Status != domain.EvalEvaluated {
		t.Fatalf("unexpected result %+v", resp)
	}
	if !tracker.IsSolved("go:1") {
		t.Fatal("correct evaluation must mark the question solved")
	}
}

func TestEvaluateMissingAnswer(t *testing.T) {
	server, _ := newTestServer(t)

	var resp evaluateResponse
	postJSON(t, server.URL+"/evaluate", evaluateRequest{UID: "go:2", Value: "5"}, &resp)
	if resp.Result.Status != domain.EvalMissing {
		t.Fatalf("expected missing_answer, got %+v", resp)
	}
}

func TestProgressToggleAndSnapshot(t *testing.T) {
	server, _ := newTestServer(t)

	var toggled map[string]any
	status := postJSON(t, server.URL+"/progress/bookmark", toggleRequest{UID: "go:1"}, &toggled)
	if status != http.StatusOK || toggled["on"] != true {
		t.Fatalf("unexpected toggle response %d %+v", status, toggled)
	}

	if status := postJSON(t, server.URL+"/progress/solved", toggleRequest{UID: "go:404"}, nil); status != http.StatusNotFound {
		t.Fatalf("unknown uid must 404, got %d", status)
	}

	var snap progress.Snapshot
	getJSON(t, server.URL+"/progress", &snap)
	if snap.BookmarkCount != 1 || snap.Total != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestExportImportEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	postJSON(t, server.URL+"/progress/solved", toggleRequest{UID: "go:1"}, nil)

	resp, err := http.Get(server.URL + "/progress/export")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()
	var exported progress.State
	if err := json.NewDecoder(resp.Body).Decode(&exported); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(exported.Solved) != 1 {
		t.Fatalf("unexpected export %+v", exported)
	}

	payload, _ := json.Marshal(exported)
	importResp, err := http.Post(server.URL+"/progress/import?mode=replace", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer importResp.Body.Close()
	if importResp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected import status %d", importResp.StatusCode)
	}

	badResp, err := http.Post(server.URL+"/progress/import", "application/json", bytes.NewReader([]byte("{bad")))
	if err != nil {
		t.Fatalf("bad import: %v", err)
	}
	defer badResp.Body.Close()
	if badResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid payload must 400, got %d", badResp.StatusCode)
	}
}

func TestWebSocketSubmitFlow(t *testing.T) {
	server, _ := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial progress snapshot arrives first.
	msgType, _ := readNext(conn, t, "progress")
	if msgType != "progress" {
		t.Fatalf("expected progress, got %s", msgType)
	}

	submit := map[string]any{
		"type": "submit",
		"payload": map[string]any{
			"uid":   "go:1",
			"value": "B",
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}

	resultSeen := false
	progressSeen := false
	for i := 0; i < 3; i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "submitResult":
			resultSeen = true
			result, _ := payload["result"].(map[string]any)
			if result["correct"] != true {
				t.Fatalf("expected correct submission, got %+v", payload)
			}
		case "progress":
			progressSeen = true
		}
		if resultSeen && progressSeen {
			break
		}
	}
	if !resultSeen || !progressSeen {
		t.Fatalf("expected submitResult and progress, got result=%v progress=%v", resultSeen, progressSeen)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
