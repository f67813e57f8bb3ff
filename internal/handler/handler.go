package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/interviewer/internal/i18n"
	"github.com/pavelanni/interviewer/internal/interview"
	"github.com/pavelanni/interviewer/internal/model"
)

// Handler maps the interview engine onto a JSON API.
type Handler struct {
	engine *interview.Engine
}

// New creates a new Handler.
func New(e *interview.Engine) (*Handler, error) {
	if e == nil {
		return nil, errors.New("handler: nil engine")
	}
	return &Handler{engine: e}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Route("/api/interviews", func(r chi.Router) {
		r.Post("/", h.handleStart)
		r.Get("/{sessionID}", h.handleStatus)
		r.Delete("/{sessionID}", h.handleClose)
		r.Get("/{sessionID}/questions", h.handlePending)
		r.Post("/{sessionID}/rounds", h.handleSubmit)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrInvalidRequest"))
		return
	}
	level, err := model.ParseExperienceLevel(req.ExperienceLevel)
	if err != nil {
		Error(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrInvalidRequest"))
		return
	}

	started, err := h.engine.Start(r.Context(), req.TargetRole, level)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	msg := i18n.Td(ctx, "InterviewStarted", map[string]any{
		"Role": req.TargetRole, "Level": level, "Name": started.Round.Name,
	}) + " " + i18n.Tp(ctx, "RoundQuestions", len(started.Questions))

	JSON(w, http.StatusCreated, startResponse{
		SessionID:    started.SessionID,
		CurrentRound: started.Round.Number,
		Round:        newRoundView(started.Round),
		Questions:    newQuestionViews(started.Questions),
		Message:      msg,
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var req submitRequest
	if err := decode(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, i18n.T(r.Context(), "ErrInvalidRequest"))
		return
	}
	answers := make([]interview.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = interview.Answer{QuestionID: a.QuestionID, UserAnswer: a.UserAnswer, TimeSpent: a.TimeSpent}
	}

	out, err := h.engine.SubmitRound(r.Context(), id, answers, req.TimeSpent)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	ctx := r.Context()
	resp := submitResponse{
		Status: string(out.Status),
		Round:  out.Round,
		Score:  out.Score,
	}
	switch out.Status {
	case interview.OutcomeFailed:
		passing := out.PassingScore
		resp.PassingScore = &passing
		resp.Feedback = localizeFeedback(r, out.Feedback)
		resp.Message = i18n.Td(ctx, "RoundFailed", map[string]any{
			"Round": out.Round, "Score": out.Score, "Passing": out.PassingScore,
		})
	case interview.OutcomeCompleted:
		resp.Feedback = localizeFeedback(r, out.Feedback)
		resp.Message = i18n.Td(ctx, "InterviewCompleted", map[string]any{"Score": out.Feedback.Score})
	case interview.OutcomeAdvanced:
		next := newRoundView(out.NextRound)
		prev := out.PreviousScore
		resp.NextRound = &next
		resp.Questions = newQuestionViews(out.Questions)
		resp.PreviousScore = &prev
		resp.Message = i18n.Td(ctx, "RoundAdvanced", map[string]any{
			"Round": out.Round, "Score": out.Score, "Next": out.NextRound.Number,
		}) + " " + i18n.Tp(ctx, "RoundQuestions", len(out.Questions))
	}
	JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.engine.Status(chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, statusResponse{
		SessionID:       st.SessionID,
		TargetRole:      st.TargetRole,
		ExperienceLevel: st.Level,
		State:           st.State,
		CurrentRound:    st.CurrentRound,
		IsComplete:      st.Complete,
		CompletedRounds: st.CompletedRounds,
		StartedAt:       st.StartedAt,
	})
}

func (h *Handler) handlePending(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	qs, round, err := h.engine.Pending(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, pendingResponse{
		SessionID: id,
		Round:     newRoundView(round),
		Questions: newQuestionViews(qs),
	})
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Close(chi.URLParam(r, "sessionID")); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps engine errors onto status codes and localized messages.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		Error(w, http.StatusNotFound, i18n.T(ctx, "ErrSessionNotFound"))
	case errors.Is(err, interview.ErrSessionAlreadyComplete):
		Error(w, http.StatusConflict, i18n.T(ctx, "ErrSessionComplete"))
	case errors.Is(err, interview.ErrRoundMismatch):
		Error(w, http.StatusBadRequest, i18n.T(ctx, "ErrRoundMismatch"))
	case errors.Is(err, interview.ErrInvalidRequest):
		Error(w, http.StatusBadRequest, i18n.T(ctx, "ErrInvalidRequest"))
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		Error(w, http.StatusInternalServerError, i18n.T(ctx, "ErrInternal"))
	}
}

var recommendationIDs = map[model.RecommendationKind]string{
	model.RecommendFundamentals: "RecommendFundamentals",
	model.RecommendPractice:     "RecommendPractice",
	model.RecommendStrongest:    "RecommendStrongest",
	model.RecommendConsider:     "RecommendConsider",
}

// localizeFeedback returns a copy of fb with recommendation lines in the request language.
func localizeFeedback(r *http.Request, fb *model.Feedback) *model.Feedback {
	if fb == nil {
		return nil
	}
	out := *fb
	out.Recommendations = make([]model.Recommendation, len(fb.Recommendations))
	for i, rec := range fb.Recommendations {
		if id, ok := recommendationIDs[rec.Kind]; ok {
			rec.Text = i18n.Td(r.Context(), id, map[string]any{"Topic": rec.Topic})
		}
		out.Recommendations[i] = rec
	}
	return &out
}
