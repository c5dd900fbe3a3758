package domain

// UnresolvedAnswer stands in for the correct answer when the source label does not
// match any option.
const UnresolvedAnswer = "Unknown"

// Option is one answer choice. Labels are assigned by position ("A", "B", ...).
type Option struct {
	Label string
	Text  string
}

// QuestionRecord is a single question extracted from a source document.
type QuestionRecord struct {
	Question     string
	Options      []Option
	CorrectLabel string
	Explanation  string
}

// CorrectOption resolves CorrectLabel within Options.
func (q QuestionRecord) CorrectOption() (Option, bool) {
	for _, opt := range q.Options {
		if opt.Label == q.CorrectLabel {
			return opt, true
		}
	}
	return Option{}, false
}

// CorrectAnswer returns the text of the correct option or UnresolvedAnswer.
func (q QuestionRecord) CorrectAnswer() string {
	if opt, ok := q.CorrectOption(); ok {
		return opt.Text
	}
	return UnresolvedAnswer
}

// OptionLabel returns the positional label for the i-th option: 0 -> "A", 25 -> "Z", 26 -> "AA".
func OptionLabel(i int) string {
	if i < 0 {
		return ""
	}
	label := ""
	for {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
		if i < 0 {
			return label
		}
	}
}

// TranslatedText keeps a translated field together with its source.
// Translated is false when the original was retained as a fallback.
type TranslatedText struct {
	Text       string
	Original   string
	Translated bool
}

// Untranslated wraps text that was not sent to (or not accepted from) the translator.
func Untranslated(text string) TranslatedText {
	return TranslatedText{Text: text, Original: text}
}

// TranslatedOption is an Option whose text went through the translator.
type TranslatedOption struct {
	Label string
	Text  TranslatedText
}

// TranslatedQuestionRecord mirrors QuestionRecord with every text field translated.
type TranslatedQuestionRecord struct {
	Question      TranslatedText
	Options       []TranslatedOption
	CorrectLabel  string
	CorrectAnswer TranslatedText
	Resolved      bool
	Explanation   TranslatedText
}

// FallbackCount reports how many fields kept their original text.
func (r TranslatedQuestionRecord) FallbackCount() int {
	count := 0
	for _, f := range r.fields() {
		if !f.Translated {
			count++
		}
	}
	return count
}

func (r TranslatedQuestionRecord) fields() []TranslatedText {
	out := make([]TranslatedText, 0, len(r.Options)+3)
	out = append(out, r.Question)
	for _, opt := range r.Options {
		out = append(out, opt.Text)
	}
	return append(out, r.CorrectAnswer, r.Explanation)
}
