package question

import (
	"testing"

	"github.com/pavelanni/interviewer/internal/model"
)

func TestDefaultBankCoversEveryType(t *testing.T) {
	seen := make(map[string]bool)
	for _, tmpl := range defaultTemplates {
		if tmpl.Topic == "" {
			t.Errorf("template %q has no topic", tmpl.Prompt)
		}
		if tmpl.Reference == "" {
			t.Errorf("template %q has no reference answer", tmpl.Prompt)
		}
		if _, err := model.NewVariant(tmpl.Type, tmpl.Options); err != nil {
			t.Errorf("template %q: %v", tmpl.Prompt, err)
		}
		if tmpl.Type == model.TypeMultipleChoice {
			found := false
			for _, o := range tmpl.Options {
				if o == tmpl.Reference {
					found = true
				}
			}
			if !found {
				t.Errorf("template %q: reference %q is not an option", tmpl.Prompt, tmpl.Reference)
			}
		}
		h := ContentHash(tmpl.Prompt)
		if seen[h] {
			t.Errorf("duplicate template %q", tmpl.Prompt)
		}
		seen[h] = true
	}
	for _, qt := range allTypes {
		if len(DefaultBank.byType[qt]) == 0 {
			t.Errorf("no fallback template for %s", qt)
		}
	}
}

func TestNewBankRequiresEveryType(t *testing.T) {
	_, err := NewBank([]Template{{Type: model.TypeTheory, Prompt: "p", Reference: "r"}})
	if err == nil {
		t.Fatal("expected error for bank missing types")
	}
}

func TestBankPickPrefersUnused(t *testing.T) {
	first := func(int) int { return 0 }
	candidates := DefaultBank.byType[model.TypeCodingProblem]

	got := DefaultBank.Pick(model.TypeCodingProblem, first, nil)
	if got.Prompt != candidates[0].Prompt {
		t.Errorf("Pick without filter = %q, want first template", got.Prompt)
	}

	usedFirst := func(h string) bool { return h == ContentHash(candidates[0].Prompt) }
	got = DefaultBank.Pick(model.TypeCodingProblem, first, usedFirst)
	if got.Prompt != candidates[1].Prompt {
		t.Errorf("Pick = %q, want second template", got.Prompt)
	}

	allUsed := func(string) bool { return true }
	got = DefaultBank.Pick(model.TypeCodingProblem, first, allUsed)
	if got.Prompt != candidates[0].Prompt {
		t.Errorf("Pick with all used = %q, want start template", got.Prompt)
	}
}

func TestContentHash(t *testing.T) {
	a := ContentHash("What is  a Stack?")
	b := ContentHash("what is a stack?\n")
	if a != b {
		t.Errorf("hashes differ for case/whitespace variants: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("hash length = %d, want 16", len(a))
	}
	if ContentHash("What is a queue?") == a {
		t.Error("different prompts share a hash")
	}
}
