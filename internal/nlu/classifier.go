package nlu

import (
	"regexp"
	"strings"

	"voz/internal/domain"
)

// Guidance spoken back when a command is rejected or only partially understood.
const (
	HintTooShort = "Comando muito curto ou vazio"
	HintAlarm    = "Para definir um alarme, tente dizer: 'definir alarme para 8:30' ou 'acordar às 7:00'"
	HintMessage  = "Para enviar mensagem, tente: 'enviar mensagem para João dizendo olá' ou 'whatsapp com Maria'"
	HintOpen     = "Para abrir um aplicativo, tente: 'abrir calculadora' ou 'abrir câmera'"
	HintSearch   = "Para fazer uma pesquisa, tente: 'pesquisar sobre clima' ou 'procurar receita de bolo'"
	HintGeneric  = "Não entendi o comando."
)

// Closed command vocabulary, in normalized form.
var (
	stopWords = []string{"parar", "pare", "para", "desativar", "desativa", "desligar", "desliga"}

	openVerbs = []string{"abrir", "abre", "abra", "iniciar", "inicia", "executar", "executa", "lancar", "lanca"}

	appArticles = []string{"o", "a", "os", "as", "um", "uma", "uns", "umas", "do", "da", "dos", "das"}

	sendMessageTriggers = []string{
		"enviar mensagem",
		"envia mensagem",
		"manda mensagem",
		"mandar mensagem",
		"envia uma mensagem",
		"manda uma mensagem",
	}

	messageFillerWords = []string{"para", "pro", "pra", "ao", "a", "o", "as", "os", "pelo", "pela", "no", "na"}

	searchVerbs = []string{
		"pesquisar", "pesquisa", "procurar", "procura",
		"buscar", "busca", "procure", "busque",
		"pesquise", "quero saber sobre", "me fala sobre",
		"o que e", "quem e", "onde fica",
	}
)

var (
	chatOpenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^.*(?:whatsapp|conversa|chat)\s+(?:com|para|pro|pra)\s+.*$`),
		regexp.MustCompile(`^.*(?:abrir|abre|abra)\s+(?:whatsapp|conversa|chat)\s+(?:com|para|pro|pra)\s+.*$`),
		regexp.MustCompile(`^.*(?:conversar|falar)\s+(?:com|para|pro|pra)\s+.*\s+(?:no|pelo)\s+whatsapp.*$`),
	}

	chatStripPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:abrir|abre|abra)\s+(?:conversa|chat|whatsapp)\s+(?:com|para|pro|pra)\s+`),
		regexp.MustCompile(`(?:conversar|falar|mandar mensagem)\s+(?:com|para|pro|pra)\s+`),
		regexp.MustCompile(`whatsapp\s+(?:com|para|pro|pra)\s+`),
		regexp.MustCompile(`\s+no whatsapp$`),
	}

	contactCaptureRe = regexp.MustCompile(`(?:para|pro|para o|para a)\s+([^,]*?)\s+(?:no|pelo|via|usando|dizendo|falando)(?:\s|$)`)
	messageCaptureRe = regexp.MustCompile(`(?:dizendo|falando|a dizer|a dizer que) (.*)`)

	alarmTriggerPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^.*(?:definir|define|defina|colocar|coloca|coloque|criar|cria|crie)\s+(?:alarme|despertador)\s+(?:para|as|para as)\s+.*$`),
		regexp.MustCompile(`^.*(?:acordame|acordarme|me\s+acorda|me\s+acorde)\s+as\s+.*$`),
		regexp.MustCompile(`^.*(?:alarme|despertador)\s+(?:para|as|para as)\s+.*$`),
	}

	// Matched against the raw utterance: normalization strips the ':' separator.
	alarmTimeRe = regexp.MustCompile(`(\d{1,2})(?::|\s+e\s+|\s+)(\d{2})`)
)

// utterance carries both forms of the text through rule evaluation. Alarm
// time extraction is the only consumer of the raw form.
type utterance struct {
	raw  string
	norm string
}

// rule pairs a predicate over normalized text with the extractor that
// produces the intent's fields. Rules are evaluated in table order,
// first match wins.
type rule struct {
	name    string
	match   func(u utterance) bool
	extract func(u utterance) domain.Intent
}

var rules = []rule{
	{name: "stop", match: matchStop, extract: extractStop},
	{name: "open_chat", match: matchOpenChat, extract: extractOpenChat},
	{name: "send_message", match: matchSendMessage, extract: extractSendMessage},
	{name: "set_alarm", match: matchSetAlarm, extract: extractSetAlarm},
	{name: "search", match: matchSearch, extract: extractSearch},
	{name: "open_app", match: matchOpenApp, extract: extractOpenApp},
}

// Classify maps one utterance to exactly one Intent. Extraction failures
// degrade to IntentUnknown with a guidance hint, never an error, so callers
// always receive a well-formed intent.
func Classify(text string) domain.Intent {
	u := utterance{raw: text, norm: Normalize(text)}
	if len(u.norm) < 3 {
		return unknown(HintTooShort)
	}
	for _, r := range rules {
		if r.match(u) {
			return r.extract(u)
		}
	}
	return fallbackUnknown(u.norm)
}

// IsStop reports whether the text is exactly one of the stop words. Used by
// the dialogue controller to honor Stop from states where utterances are not
// reclassified as commands.
func IsStop(text string) bool {
	n := Normalize(text)
	for _, w := range stopWords {
		if n == w {
			return true
		}
	}
	return false
}

func unknown(hint string) domain.Intent {
	return domain.Intent{Kind: domain.IntentUnknown, Hint: hint}
}

func matchStop(u utterance) bool { return IsStop(u.norm) }

func extractStop(utterance) domain.Intent { return domain.Intent{Kind: domain.IntentStop} }

func matchOpenChat(u utterance) bool {
	for _, p := range chatOpenPatterns {
		if p.MatchString(u.norm) {
			return true
		}
	}
	return false
}

func extractOpenChat(u utterance) domain.Intent {
	contact := u.norm
	for _, p := range chatStripPatterns {
		contact = p.ReplaceAllString(contact, "")
	}
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return unknown(HintMessage)
	}
	return domain.Intent{Kind: domain.IntentOpenChat, Contact: contact}
}

func matchSendMessage(u utterance) bool {
	return containsAny(u.norm, sendMessageTriggers)
}

func extractSendMessage(u utterance) domain.Intent {
	channel := domain.ChannelWhatsApp
	if strings.Contains(u.norm, "mensagem") && !strings.Contains(u.norm, "whatsapp") {
		channel = domain.ChannelSMS
	}

	contactMatch := contactCaptureRe.FindStringSubmatch(u.norm)
	if contactMatch == nil {
		return unknown(HintMessage)
	}
	contact := strings.TrimSpace(stripWords(contactMatch[1], messageFillerWords))
	if contact == "" {
		return unknown(HintMessage)
	}

	messageMatch := messageCaptureRe.FindStringSubmatch(u.norm)
	if messageMatch == nil {
		return unknown(HintMessage)
	}
	message := strings.TrimSpace(messageMatch[1])
	if message == "" {
		return unknown(HintMessage)
	}

	return domain.Intent{
		Kind:    domain.IntentSendMessage,
		Channel: channel,
		Contact: contact,
		Message: message,
	}
}

func matchSetAlarm(u utterance) bool {
	for _, p := range alarmTriggerPatterns {
		if p.MatchString(u.norm) {
			return true
		}
	}
	return false
}

func extractSetAlarm(u utterance) domain.Intent {
	m := alarmTimeRe.FindStringSubmatch(u.raw)
	if m == nil {
		return unknown(HintAlarm)
	}
	hour := atoiSafe(m[1])
	minute := atoiSafe(m[2])
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return unknown(HintAlarm)
	}
	return domain.Intent{Kind: domain.IntentSetAlarm, Hour: hour, Minute: minute}
}

func matchSearch(u utterance) bool {
	for _, v := range searchVerbs {
		if strings.HasPrefix(u.norm, v) {
			return true
		}
	}
	return false
}

func extractSearch(u utterance) domain.Intent {
	for _, v := range searchVerbs {
		if strings.HasPrefix(u.norm, v) {
			query := strings.TrimSpace(strings.TrimPrefix(u.norm, v))
			if query == "" {
				return unknown(HintSearch)
			}
			return domain.Intent{Kind: domain.IntentSearch, Query: query}
		}
	}
	return unknown(HintSearch)
}

func matchOpenApp(u utterance) bool {
	// A WhatsApp contact command also contains an open verb; let the chat
	// and message rules own that shape.
	if strings.Contains(u.norm, "whatsapp") && (strings.Contains(u.norm, "com") || strings.Contains(u.norm, "para")) {
		return false
	}
	return containsAny(u.norm, openVerbs)
}

func extractOpenApp(u utterance) domain.Intent {
	name := u.norm
	for _, v := range openVerbs {
		name = strings.ReplaceAll(name, v, "")
	}
	name = strings.TrimSpace(stripWords(name, appArticles))
	if name == "" {
		return unknown(HintOpen)
	}
	return domain.Intent{Kind: domain.IntentOpenApp, AppName: name}
}

// fallbackUnknown picks a guidance hint from keyword presence when no rule
// fired at all.
func fallbackUnknown(norm string) domain.Intent {
	switch {
	case strings.Contains(norm, "alarme") || strings.Contains(norm, "despertador"):
		return unknown(HintAlarm)
	case strings.Contains(norm, "mensagem") || strings.Contains(norm, "whatsapp"):
		return unknown(HintMessage)
	case strings.Contains(norm, "abrir") || strings.Contains(norm, "abra"):
		return unknown(HintOpen)
	case strings.Contains(norm, "pesquisa") || strings.Contains(norm, "procura"):
		return unknown(HintSearch)
	default:
		return unknown(HintGeneric)
	}
}

func containsAny(text string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// stripWords removes the given words wherever they appear as whole
// space-delimited tokens, collapsing the remaining tokens back together.
func stripWords(text string, words []string) string {
	drop := make(map[string]struct{}, len(words))
	for _, w := range words {
		drop[w] = struct{}{}
	}
	fields := strings.Fields(text)
	kept := fields[:0]
	for _, f := range fields {
		if _, ok := drop[f]; ok {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	if len(s) == 0 {
		return -1
	}
	return n
}
