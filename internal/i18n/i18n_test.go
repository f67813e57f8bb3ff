package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "ErrSessionNotFound")
	if got != "Interview session not found." {
		t.Errorf("T(ErrSessionNotFound) = %q", got)
	}

	got = Td(ctx, "RecommendFundamentals", map[string]any{"Topic": "SQL"})
	if got != "Focus on SQL fundamentals" {
		t.Errorf("Td(RecommendFundamentals) = %q", got)
	}
}

func TestTranslateRussian(t *testing.T) {
	ctx := initLang(t, "ru")

	got := T(ctx, "ErrSessionComplete")
	if got != "Это собеседование уже завершено." {
		t.Errorf("T(ErrSessionComplete) = %q", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "RoundQuestions", 1); got != "1 question in this round." {
		t.Errorf("Tp(RoundQuestions, 1) = %q", got)
	}
	if got := Tp(ctx, "RoundQuestions", 20); got != "20 questions in this round." {
		t.Errorf("Tp(RoundQuestions, 20) = %q", got)
	}

	ctx = initLang(t, "ru")
	if got := Tp(ctx, "RoundQuestions", 3); got != "3 вопроса в этом раунде." {
		t.Errorf("Tp(RoundQuestions, 3) = %q", got)
	}
	if got := Tp(ctx, "RoundQuestions", 15); got != "15 вопросов в этом раунде." {
		t.Errorf("Tp(RoundQuestions, 15) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "RoundFailed", map[string]any{"Round": 2, "Score": 46.67, "Passing": 70})
	if got != "Round 2 not passed: 46.67% (passing score 70%)." {
		t.Errorf("Td(RoundFailed) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestNegotiate(t *testing.T) {
	initLang(t, "en")

	tests := []struct {
		accept string
		want   string
	}{
		{"ru-RU,ru;q=0.9,en;q=0.8", "ru"},
		{"en-GB", "en"},
		{"de-DE", "en"},
		{"", "en"},
		{";;;", "en"},
	}
	for _, tt := range tests {
		if got := Negotiate(tt.accept, "en"); got != tt.want {
			t.Errorf("Negotiate(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	initLang(t, "en")

	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "ErrInvalidRequest")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ru")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got != "Некорректный запрос." {
		t.Errorf("localized message = %q", got)
	}
	if rec.Header().Get("Content-Language") != "ru" {
		t.Errorf("Content-Language = %q", rec.Header().Get("Content-Language"))
	}
}
