package nlu

import (
	"testing"

	"voz/internal/domain"
)

func TestClassifyTooShort(t *testing.T) {
	for _, in := range []string{"", "  ", "oi", "a!"} {
		got := Classify(in)
		if got.Kind != domain.IntentUnknown || got.Hint != HintTooShort {
			t.Fatalf("Classify(%q)=%+v, want unknown/too-short", in, got)
		}
	}
}

func TestClassifyStopExact(t *testing.T) {
	for _, in := range []string{"pare", "PARAR", "desliga", "Desativar"} {
		if got := Classify(in); got.Kind != domain.IntentStop {
			t.Fatalf("Classify(%q)=%+v, want stop", in, got)
		}
	}
	// "para" inside a longer command is a preposition, not a stop word.
	if got := Classify("definir alarme para 7:30"); got.Kind == domain.IntentStop {
		t.Fatalf("stop matched by containment, want exact match only")
	}
}

func TestStopBeatsOpenApp(t *testing.T) {
	// "desliga" is an exact stop word even though open-app matching is by
	// containment; the stop rule runs first.
	got := Classify("desliga")
	if got.Kind != domain.IntentStop {
		t.Fatalf("got %+v, want stop", got)
	}
}

func TestClassifyOpenApp(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abrir calculadora", "calculadora"},
		{"abra a câmera", "camera"},
		{"Abrir o Spotify", "spotify"},
		{"executar maps", "maps"},
	}
	for _, c := range cases {
		got := Classify(c.in)
		if got.Kind != domain.IntentOpenApp || got.AppName != c.want {
			t.Fatalf("Classify(%q)=%+v, want open_app %q", c.in, got, c.want)
		}
	}
}

func TestClassifyOpenAppSuppressedForWhatsAppContact(t *testing.T) {
	got := Classify("abrir whatsapp com joão")
	if got.Kind != domain.IntentOpenChat {
		t.Fatalf("got %+v, want open_chat", got)
	}
	if got.Contact != "joao" {
		t.Fatalf("contact=%q, want joao", got.Contact)
	}
}

func TestClassifyOpenChatVariants(t *testing.T) {
	cases := []struct {
		in      string
		contact string
	}{
		{"whatsapp com Maria", "maria"},
		{"abrir conversa com João Pedro", "joao pedro"},
		{"falar com Ana no whatsapp", "ana"},
	}
	for _, c := range cases {
		got := Classify(c.in)
		if got.Kind != domain.IntentOpenChat || got.Contact != c.contact {
			t.Fatalf("Classify(%q)=%+v, want open_chat contact=%q", c.in, got, c.contact)
		}
	}
}

func TestClassifySendMessage(t *testing.T) {
	got := Classify("enviar mensagem para João dizendo olá tudo bem")
	if got.Kind != domain.IntentSendMessage {
		t.Fatalf("got %+v, want send_message", got)
	}
	if got.Channel != domain.ChannelSMS {
		t.Fatalf("channel=%q, want sms (mensagem without whatsapp)", got.Channel)
	}
	if got.Contact != "joao" {
		t.Fatalf("contact=%q, want joao", got.Contact)
	}
	if got.Message != "ola tudo bem" {
		t.Fatalf("message=%q, want 'ola tudo bem'", got.Message)
	}
}

func TestClassifySendMessageWhatsAppChannel(t *testing.T) {
	got := Classify("enviar mensagem para Maria no whatsapp dizendo bom dia")
	if got.Kind != domain.IntentSendMessage || got.Channel != domain.ChannelWhatsApp {
		t.Fatalf("got %+v, want send_message via whatsapp", got)
	}
	if got.Contact != "maria" {
		t.Fatalf("contact=%q, want maria", got.Contact)
	}
	if got.Message != "bom dia" {
		t.Fatalf("message=%q, want 'bom dia'", got.Message)
	}
}

func TestClassifySendMessageFailsClosed(t *testing.T) {
	// Trigger fires but there is no contact/message capture: the whole rule
	// fails to unknown, never a partial intent.
	got := Classify("enviar mensagem agora")
	if got.Kind != domain.IntentUnknown {
		t.Fatalf("got %+v, want unknown", got)
	}
}

func TestClassifySetAlarm(t *testing.T) {
	got := Classify("definir alarme para 7:30")
	if got.Kind != domain.IntentSetAlarm || got.Hour != 7 || got.Minute != 30 {
		t.Fatalf("got %+v, want set_alarm 7:30", got)
	}

	got = Classify("acorda-me às 6:45")
	if got.Kind != domain.IntentSetAlarm || got.Hour != 6 || got.Minute != 45 {
		t.Fatalf("got %+v, want set_alarm 6:45", got)
	}

	got = Classify("criar despertador para as 9 e 15")
	if got.Kind != domain.IntentSetAlarm || got.Hour != 9 || got.Minute != 15 {
		t.Fatalf("got %+v, want set_alarm 9:15", got)
	}
}

func TestClassifySetAlarmOutOfRange(t *testing.T) {
	got := Classify("definir alarme para 25:99")
	if got.Kind != domain.IntentUnknown || got.Hint != HintAlarm {
		t.Fatalf("got %+v, want unknown with alarm hint", got)
	}
}

func TestClassifySearch(t *testing.T) {
	got := Classify("pesquisar receita de bolo")
	if got.Kind != domain.IntentSearch || got.Query != "receita de bolo" {
		t.Fatalf("got %+v, want search 'receita de bolo'", got)
	}

	got = Classify("o que é fotossíntese")
	if got.Kind != domain.IntentSearch || got.Query != "fotossintese" {
		t.Fatalf("got %+v, want search 'fotossintese'", got)
	}
}

func TestClassifyFallbackHints(t *testing.T) {
	cases := []struct {
		in   string
		hint string
	}{
		{"quero um alarme", HintAlarm},
		{"mensagem urgente", HintMessage},
		{"xyz qualquer coisa", HintGeneric},
	}
	for _, c := range cases {
		got := Classify(c.in)
		if got.Kind != domain.IntentUnknown || got.Hint != c.hint {
			t.Fatalf("Classify(%q)=%+v, want unknown hint %q", c.in, got, c.hint)
		}
	}
}
