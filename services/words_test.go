package services

import "testing"

func TestDominantWord(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string // empty means nil
	}{
		{name: "no texts", texts: nil},
		{name: "only short tokens", texts: []string{"a an to", "ok"}},
		{name: "most frequent wins", texts: []string{"calm then tired", "tired again"}, want: "tired"},
		{name: "ties go to first encountered", texts: []string{"river stone", "stone river"}, want: "river"},
		{name: "case folded", texts: []string{"Calm", "CALM", "rest"}, want: "calm"},
		{name: "punctuation splits tokens", texts: []string{"work,work;sleep"}, want: "work"},
		{name: "digits split tokens", texts: []string{"day2day off"}, want: "day"},
		{name: "filler words are skipped", texts: []string{"I feel feel feel okay"}, want: "okay"},
		{name: "pronouns and auxiliaries are skipped", texts: []string{"they were they were rested"}, want: "rested"},
		{name: "ordinary adverbs still count", texts: []string{"really really much better"}, want: "really"},
		{name: "articles still count", texts: []string{"the sea and the sky"}, want: "the"},
		{name: "unicode letters", texts: []string{"müde und müde"}, want: "müde"},
	}

	for _, test := range tests {
		test := test // capture range variable
		t.Run(test.name, func(t *testing.T) {
			// Act
			got := dominantWord(test.texts)

			// Assert
			if test.want == "" {
				if got != nil {
					t.Errorf("dominantWord() = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != test.want {
				t.Errorf("dominantWord() = %v, want %q", got, test.want)
			}
		})
	}
}

func TestFirstWord(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{text: "Today was fine", want: "today"},
		{text: "  \"Honestly,\" tired", want: "honestly"},
		{text: "", want: ""},
		{text: "...", want: ""},
		{text: "3rd day", want: "3rd"},
	}

	for _, test := range tests {
		test := test // capture range variable
		t.Run(test.text, func(t *testing.T) {
			if got := firstWord(test.text); got != test.want {
				t.Errorf("firstWord(%q) = %q, want %q", test.text, got, test.want)
			}
		})
	}
}

func TestHasRepetition(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    bool
	}{
		{name: "fewer than three answers", answers: []string{"today a", "today b"}, want: false},
		{name: "three distinct openings", answers: []string{"one", "two", "three"}, want: false},
		{name: "same opening three times", answers: []string{"Today fine", "today tired", "TODAY ok"}, want: true},
		{name: "punctuation ignored", answers: []string{"today,", "today!", "today."}, want: true},
		{name: "empty openings ignored", answers: []string{"...", "today a", "today b"}, want: false},
	}

	for _, test := range tests {
		test := test // capture range variable
		t.Run(test.name, func(t *testing.T) {
			if got := hasRepetition(test.answers); got != test.want {
				t.Errorf("hasRepetition() = %v, want %v", got, test.want)
			}
		})
	}
}
