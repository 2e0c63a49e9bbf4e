package chat

import (
	"regexp"
	"strings"
)

// The extractor turns free-text chat messages into partial lead drafts.
// Strategies run in a fixed order per field: labeled "field: value" pairs
// win over freeform regex matches, which win over keyword heuristics.
// A field with no confident match stays empty; nothing is ever guessed.

const messageFallbackMaxRunes = 500

// ---------- package-level compiled regexes ----------

var (
	labeledNameRE    = labeledFieldRE(`name|имя`)
	labeledEmailRE   = labeledFieldRE(`e-?mail|почта|мейл|мэйл`)
	labeledPhoneRE   = labeledFieldRE(`phone|tel(?:ephone)?|whatsapp|telegram|телефон|номер|вотсап|телеграм`)
	labeledServiceRE = labeledFieldRE(`service|program|course|услуга|программа|курс|сервис`)
	labeledMessageRE = labeledFieldRE(`message|goal|comment|сообщение|цель|комментарий|запрос`)

	freeformEmailRE = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	freeformPhoneRE = regexp.MustCompile(`(?:\+|00)[0-9][0-9\s\-().]{6,23}`)

	introNameREs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bmy name is\s+([\p{L}][\p{L}' -]{1,60})`),
		regexp.MustCompile(`(?i)\bi am\s+([\p{L}][\p{L}' -]{1,60})`),
		regexp.MustCompile(`(?i)\bi'm\s+([\p{L}][\p{L}' -]{1,60})`),
		regexp.MustCompile(`(?i)меня зовут\s+([\p{L}][\p{L}' -]{1,60})`),
		regexp.MustCompile(`(?i)мо[её] имя\s+([\p{L}][\p{L}' -]{1,60})`),
	}

	segmentSplitRE = regexp.MustCompile(`[,;\n]`)
	digitRE        = regexp.MustCompile(`[0-9]`)
)

// labeledFieldRE matches "label: value" or "label - value" anchored at the
// start of the input or right after a comma/semicolon/newline. The value
// runs until the next comma, semicolon or newline.
func labeledFieldRE(labels string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[,;\n])\s*(?:` + labels + `)\s*[:\-–—]\s*([^,;\n]+)`)
}

// ---------- service catalog ----------

// servicePatterns maps catalog slugs to bilingual trigger substrings.
// Ordered; the first matching keyword wins, no scoring.
var servicePatterns = []struct {
	slug     string
	keywords []string
}{
	{"brain-charge", []string{"brain", "зарядк", "мозг"}},
	{"resources-club", []string{"resource", "club", "ресурс", "клуб"}},
	{"intensive-mom-dad", []string{"intensive", "интенсив", "мама", "папа", "mom", "mama", "papa", "dad"}},
	{"reboot", []string{"reboot", "перезагруз"}},
	{"mentorship", []string{"mentor", "наставни"}},
	{"consultation", []string{"consult", "консульта"}},
}

// consultationIntentKeywords signal a wish to book regardless of whether any
// contact field was supplied.
var consultationIntentKeywords = []string{
	"book", "consult", "appointment", "callback", "sign me up",
	"запис", "консульта", "перезвон", "назнач",
}

// ExtractLeadFields produces a best-effort partial lead draft from a single
// free-text message. Deterministic: identical input yields identical output.
func ExtractLeadFields(input string) LeadDraft {
	draft := LeadDraft{
		Name:    extractName(input),
		Email:   extractEmail(input),
		Phone:   extractPhone(input),
		Service: extractService(input),
		Message: extractLabeledValue(labeledMessageRE, input),
	}

	// Short "everything in one breath" submissions keep the whole text as
	// the message once at least one contact field was recognized.
	if draft.Message == "" && draft.HasContactData() {
		trimmed := strings.TrimSpace(input)
		if len([]rune(trimmed)) <= messageFallbackMaxRunes {
			draft.Message = trimmed
		}
	}

	return draft
}

// DetectConsultationIntent reports booking intent from bilingual keywords,
// independent of any extracted field.
func DetectConsultationIntent(input string) bool {
	lower := strings.ToLower(input)
	for _, kw := range consultationIntentKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DetectServiceKeyword matches the message against the program catalog and
// returns the first matching slug, or empty.
func DetectServiceKeyword(input string) string {
	lower := strings.ToLower(input)
	for _, sp := range servicePatterns {
		for _, kw := range sp.keywords {
			if strings.Contains(lower, kw) {
				return sp.slug
			}
		}
	}
	return ""
}

func extractLabeledValue(re *regexp.Regexp, input string) string {
	m := re.FindStringSubmatch(input)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func extractEmail(input string) string {
	if v := extractLabeledValue(labeledEmailRE, input); v != "" {
		if IsValidEmail(v) {
			return strings.ToLower(v)
		}
		if m := freeformEmailRE.FindString(v); m != "" {
			return strings.ToLower(m)
		}
		return ""
	}
	if m := freeformEmailRE.FindString(input); m != "" && IsValidEmail(m) {
		return strings.ToLower(m)
	}
	return ""
}

func extractPhone(input string) string {
	if v := extractLabeledValue(labeledPhoneRE, input); v != "" {
		return NormalizePhone(v)
	}
	// Scan all plus/00-prefixed candidates; the first that normalizes wins.
	for _, candidate := range freeformPhoneRE.FindAllString(input, -1) {
		if normalized := NormalizePhone(candidate); normalized != "" {
			return normalized
		}
	}
	return ""
}

func extractName(input string) string {
	if v := extractLabeledValue(labeledNameRE, input); v != "" {
		return NormalizeName(v)
	}
	for _, re := range introNameREs {
		if m := re.FindStringSubmatch(input); m != nil {
			if name := NormalizeName(trimNameClause(m[1])); name != "" {
				return name
			}
		}
	}
	return nameFromSegments(input)
}

// trimNameClause cuts an introduction capture before a follow-on clause
// ("my name is John Doe and my email is ...").
func trimNameClause(raw string) string {
	lower := strings.ToLower(raw)
	for _, sep := range []string{" and ", " my ", " и ", " мой ", " моя "} {
		if idx := strings.Index(lower, sep); idx > 0 {
			raw = raw[:idx]
			lower = lower[:idx]
		}
	}
	words := strings.Fields(raw)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, " ")
}

// nameFromSegments handles the advertised "Name, email, phone" one-liner:
// when the message carries an email or phone, a short all-letter segment of
// two to four words is taken as the name.
func nameFromSegments(input string) string {
	if freeformEmailRE.FindString(input) == "" && extractPhone(input) == "" {
		return ""
	}
	for _, segment := range segmentSplitRE.Split(input, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" || len(segment) > 60 {
			continue
		}
		if strings.Contains(segment, "@") || digitRE.MatchString(segment) {
			continue
		}
		name := NormalizeName(segment)
		if name == "" {
			continue
		}
		words := len(strings.Fields(name))
		if words >= 2 && words <= 4 {
			return name
		}
	}
	return ""
}

func extractService(input string) string {
	if v := extractLabeledValue(labeledServiceRE, input); v != "" {
		if slug := DetectServiceKeyword(v); slug != "" {
			return slug
		}
		return v
	}
	return DetectServiceKeyword(input)
}
