package chat

import (
	"strings"
)

const (
	kbTitleWeight    = 3
	kbBodyWeight     = 1
	kbMaxExcerptRune = 700
)

type knowledgeSection struct {
	Title string
	Body  string
}

var kbStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "you": {}, "your": {}, "are": {},
	"what": {}, "how": {}, "can": {}, "with": {}, "about": {}, "have": {},
	"this": {}, "that": {}, "will": {}, "does": {}, "tell": {},
	"как": {}, "что": {}, "это": {}, "или": {}, "для": {}, "про": {},
	"есть": {}, "мне": {}, "вас": {}, "ваш": {}, "ваши": {}, "можно": {},
	"расскажите": {}, "скажите": {}, "пожалуйста": {},
}

// splitKnowledgeSections breaks a markdown document on "## " headings.
// Text before the first heading is dropped.
func splitKnowledgeSections(doc string) []knowledgeSection {
	var sections []knowledgeSection
	var current *knowledgeSection
	for _, line := range strings.Split(doc, "\n") {
		if title, ok := strings.CutPrefix(line, "## "); ok {
			if current != nil {
				current.Body = strings.TrimSpace(current.Body)
				sections = append(sections, *current)
			}
			current = &knowledgeSection{Title: strings.TrimSpace(title)}
			continue
		}
		if current != nil {
			current.Body += line + "\n"
		}
	}
	if current != nil {
		current.Body = strings.TrimSpace(current.Body)
		sections = append(sections, *current)
	}
	return sections
}

// kbTokens lowercases, strips punctuation and drops short words and
// stopwords. Works for both Latin and Cyrillic text.
func kbTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 3 {
			continue
		}
		if _, stop := kbStopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r >= 'а' && r <= 'я', r == 'ё':
		return true
	}
	return false
}

func scoreSection(sec knowledgeSection, tokens []string) int {
	title := strings.ToLower(sec.Title)
	body := strings.ToLower(sec.Body)
	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += kbTitleWeight
		}
		if strings.Contains(body, tok) {
			score += kbBodyWeight
		}
	}
	return score
}

// MatchKnowledge scores the document's sections against the question and
// returns an excerpt of the best one. False when nothing scores at all.
func MatchKnowledge(doc, question, lang string) (string, bool) {
	tokens := kbTokens(question)
	if len(tokens) == 0 {
		return "", false
	}
	sections := splitKnowledgeSections(doc)
	best := -1
	bestScore := 0
	for i, sec := range sections {
		if s := scoreSection(sec, tokens); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return "", false
	}
	return formatKnowledgeExcerpt(sections[best], lang), true
}

func formatKnowledgeExcerpt(sec knowledgeSection, lang string) string {
	body := sec.Body
	if runes := []rune(body); len(runes) > kbMaxExcerptRune {
		body = strings.TrimSpace(string(runes[:kbMaxExcerptRune])) + "…"
	}
	lead := "Here is what I know about " + sec.Title + ":"
	if lang == "ru" {
		lead = "Вот что я знаю по теме «" + sec.Title + "»:"
	}
	return lead + "\n\n" + body
}
