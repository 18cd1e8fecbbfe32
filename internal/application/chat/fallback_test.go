package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFallbackResponder_Deterministic(t *testing.T) {
	f := NewFallbackResponder()

	first := f.Respond("Je cherche un forfait pas cher", nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, f.Respond("Je cherche un forfait pas cher", nil))
	}
	assert.Equal(t, fallbackRules[0].answer, first)
}

func TestFallbackResponder_Rules(t *testing.T) {
	f := NewFallbackResponder()

	tests := []struct {
		name string
		text string
		rule string
	}{
		{"cheap plan", "Un forfait économique ?", "cheap_plan"},
		{"data volume", "Combien de Go pour regarder des vidéos", "data_volume"},
		{"international", "Je pars à l'étranger cet été", "international"},
		{"fiber", "Suis-je éligible à la fibre ?", "fiber_adsl"},
		{"tv", "Je veux la télévision avec ma box", "fiber_adsl"},
		{"tv only", "Quelles chaînes TV sont incluses", "tv"},
		{"commitment", "Y a-t-il un engagement ?", "commitment"},
		{"brands", "Le nouvel iPhone est-il disponible", "brands"},
		{"how it works", "Comment ça marche ?", "how_it_works"},
		{"how to compare", "Comment choisir ?", "how_to_compare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, ruleAnswer(tt.rule), f.Respond(tt.text, nil))
		})
	}
}

func TestFallbackResponder_Generic(t *testing.T) {
	f := NewFallbackResponder()
	assert.Equal(t, GenericMessage, f.Respond("Bonjour", nil))
	assert.Equal(t, GenericMessage, f.Respond("", nil))
	// 关键词必须整词命中
	assert.Equal(t, GenericMessage, f.Respond("Gorille", nil))
}

func TestFallbackResponder_Repetition(t *testing.T) {
	f := NewFallbackResponder()

	history := []string{
		"Bonjour",
		"quel est le meilleur forfait pas cher",
		"c'est quoi le meilleur forfait pas cher",
	}
	assert.Equal(t, RepetitionMessage, f.Respond(history[2], history))

	// 只比较最后两条
	history = append(history, "et pour la fibre ?")
	assert.NotEqual(t, RepetitionMessage, f.Respond(history[3], history))
}

func TestIsRepetition(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  bool
	}{
		{"empty", nil, false},
		{"single", []string{"forfait pas cher"}, false},
		{"identical", []string{"Forfait pas cher !", "forfait pas cher"}, true},
		{"accents folded", []string{"téléphone économique", "telephone economique"}, true},
		{"different", []string{"forfait pas cher", "box fibre rapide"}, false},
		{"both empty", []string{"?", "!"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRepetition(tt.texts))
		})
	}
}

func TestJaccard(t *testing.T) {
	a := wordSet("quel est le meilleur forfait pas cher")
	b := wordSet("c'est quoi le meilleur forfait pas cher")
	assert.InDelta(t, 5.0/7.0, Jaccard(a, b), 1e-9)
	assert.Greater(t, Jaccard(a, b), RepetitionThreshold)

	assert.Equal(t, 0.0, Jaccard(map[string]struct{}{}, map[string]struct{}{}))
}
