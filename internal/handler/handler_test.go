package handler

import (
	"bytes"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/interviewer/internal/evaluate"
	"github.com/pavelanni/interviewer/internal/i18n"
	"github.com/pavelanni/interviewer/internal/interview"
	"github.com/pavelanni/interviewer/internal/question"
)

func newTestServer(t *testing.T) (*httptest.Server, *interview.Engine) {
	t.Helper()
	if err := i18n.Init("en"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}
	synth := question.NewSynthesizer(nil, nil, 0, question.WithRand(rand.New(rand.NewPCG(1, 1))))
	builder := question.NewBuilder(synth, nil, question.WithRand(rand.New(rand.NewPCG(2, 2))))
	engine := interview.NewEngine(interview.NewMemoryRepository(), builder,
		evaluate.NewEvaluator(nil, 2), evaluate.NewAggregator(nil), nil)

	h, err := New(engine)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	r.Use(i18n.Middleware("en"))
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, engine
}

func do(t *testing.T, method, url string, body any, header map[string]string) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return resp, out.Bytes()
}

func startInterview(t *testing.T, srv *httptest.Server) startResponse {
	t.Helper()
	resp, body := do(t, http.MethodPost, srv.URL+"/api/interviews",
		startRequest{TargetRole: "Software Engineer", ExperienceLevel: "entry"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start: status %d: %s", resp.StatusCode, body)
	}
	var started startResponse
	if err := json.Unmarshal(body, &started); err != nil {
		t.Fatal(err)
	}
	return started
}

func TestStartHidesReferenceAnswers(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/interviews",
		startRequest{TargetRole: "Software Engineer", ExperienceLevel: "Entry"}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	if bytes.Contains(body, []byte("correct_answer")) {
		t.Error("start response leaks reference answers")
	}
	var started startResponse
	if err := json.Unmarshal(body, &started); err != nil {
		t.Fatal(err)
	}
	if started.SessionID == "" || started.CurrentRound != 1 || len(started.Questions) != 20 {
		t.Errorf("started = %+v", started)
	}
	if started.Round.TotalQuestions != 20 || started.Round.TimeLimitSeconds != 600 || started.Round.PassingScore != 70 {
		t.Errorf("round = %+v", started.Round)
	}
	if !strings.Contains(started.Message, "20 questions in this round.") {
		t.Errorf("message = %q", started.Message)
	}
}

func TestStartValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown level", startRequest{TargetRole: "Software Engineer", ExperienceLevel: "guru"}},
		{"missing role", startRequest{ExperienceLevel: "mid"}},
		{"not json", "plain string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, srv.URL+"/api/interviews", tt.body, nil)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d: %s", resp.StatusCode, body)
			}
		})
	}
}

func TestSubmitAdvanceAndFail(t *testing.T) {
	srv, engine := newTestServer(t)
	started := startInterview(t, srv)
	url := srv.URL + "/api/interviews/" + started.SessionID

	pending, _, err := engine.Pending(started.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	var req submitRequest
	for _, q := range pending {
		req.Answers = append(req.Answers, answerRequest{QuestionID: q.ID, UserAnswer: q.Reference, TimeSpent: 5})
	}
	resp, body := do(t, http.MethodPost, url+"/rounds", req, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: %d %s", resp.StatusCode, body)
	}
	var advanced submitResponse
	if err := json.Unmarshal(body, &advanced); err != nil {
		t.Fatal(err)
	}
	if advanced.Status != "advanced" || advanced.NextRound == nil || advanced.NextRound.Number != 2 {
		t.Fatalf("advanced = %+v", advanced)
	}
	if advanced.PreviousScore == nil || *advanced.PreviousScore != 100 || len(advanced.Questions) != 15 {
		t.Errorf("advanced = %+v", advanced)
	}

	resp, body = do(t, http.MethodGet, url, nil, nil)
	var st statusResponse
	if err := json.Unmarshal(body, &st); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d %s", resp.StatusCode, body)
	}
	if st.State != "awaiting_round_2" || st.CurrentRound != 2 || st.CompletedRounds != 1 || st.IsComplete {
		t.Errorf("status = %+v", st)
	}

	resp, body = do(t, http.MethodGet, url+"/questions", nil, nil)
	var pend pendingResponse
	if err := json.Unmarshal(body, &pend); err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("pending: %d %s", resp.StatusCode, body)
	}
	if pend.Round.Number != 2 || len(pend.Questions) != 15 {
		t.Errorf("pending = %+v", pend)
	}

	req = submitRequest{TimeSpent: 321}
	for _, q := range pend.Questions {
		req.Answers = append(req.Answers, answerRequest{QuestionID: q.ID, UserAnswer: ""})
	}
	resp, body = do(t, http.MethodPost, url+"/rounds", req, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit round 2: %d %s", resp.StatusCode, body)
	}
	var failed submitResponse
	if err := json.Unmarshal(body, &failed); err != nil {
		t.Fatal(err)
	}
	if failed.Status != "failed" || failed.Score != 0 || failed.PassingScore == nil || *failed.PassingScore != 70 {
		t.Fatalf("failed = %+v", failed)
	}
	if failed.Feedback == nil || len(failed.Feedback.Recommendations) == 0 ||
		!strings.HasPrefix(failed.Feedback.Recommendations[0].Text, "Focus on ") {
		t.Errorf("feedback = %+v", failed.Feedback)
	}
	if failed.Feedback.TimeSpent["round_2"] != 321 {
		t.Errorf("time spent = %v", failed.Feedback.TimeSpent)
	}

	resp, _ = do(t, http.MethodPost, url+"/rounds", req, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("submit after failure: %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, url+"/questions", nil, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("pending after failure: %d", resp.StatusCode)
	}
}

func TestErrorsAreLocalized(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/interviews/unknown", nil, nil)
	if resp.StatusCode != http.StatusNotFound || !bytes.Contains(body, []byte("Interview session not found.")) {
		t.Errorf("english: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodGet, srv.URL+"/api/interviews/unknown", nil,
		map[string]string{"Accept-Language": "ru-RU,ru;q=0.9"})
	var msg map[string]string
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound || msg["error"] != "Сессия собеседования не найдена." {
		t.Errorf("russian: %d %q", resp.StatusCode, msg["error"])
	}
}

func TestSubmitMismatchAndClose(t *testing.T) {
	srv, _ := newTestServer(t)
	started := startInterview(t, srv)
	url := srv.URL + "/api/interviews/" + started.SessionID

	resp, _ := do(t, http.MethodPost, url+"/rounds", submitRequest{}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty submission: %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodDelete, url, nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("close: %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, url, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status after close: %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/interviews/never/rounds", submitRequest{
		Answers: []answerRequest{{QuestionID: "x", UserAnswer: "y"}},
	}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("submit to unknown session: %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", nil, nil)
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"ok"`)) {
		t.Errorf("healthz: %d %s", resp.StatusCode, body)
	}
}
