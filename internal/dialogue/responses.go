package dialogue

import (
	"fmt"
	"strings"

	"voz/internal/domain"
)

// Fixed pt-PT response templates. The core produces no free-form language;
// everything spoken back comes from here.
const (
	respFarewell          = "Assistente desativado!"
	respListeningOverlay  = "Ouvindo..."
	respUnknownOverlay    = "Não entendi o comando"
	respInvalidNumber     = "Número inválido. Por favor, tente novamente."
	respNotANumberContact = "Não entendi o número. Por favor, diga apenas o número do contato desejado."
	respNotANumberApp     = "Não entendi o número. Por favor, diga apenas o número do aplicativo desejado."
	respManyApps          = "Encontrei vários aplicativos. Qual você quer abrir?"
	respManyContacts      = "Encontrei vários contatos. Qual você quer usar?"
	respManyContactsExact = "Encontrei vários contatos exatos. Qual você quer usar?"
	respContactLookupErr  = "Erro ao buscar contato"
)

var apologyPrefixes = []string{"Desculpe, ", "Ops, ", "Não entendi bem. ", "Hmm, "}

func notFoundMessage(intent domain.Intent, key string) string {
	if intent.Kind == domain.IntentOpenApp {
		return "Não encontrei o aplicativo " + key
	}
	return "Não encontrei o contato " + key
}

func confirmationMessage(intent domain.Intent, outcome domain.Outcome) string {
	switch intent.Kind {
	case domain.IntentOpenApp:
		return "Abrindo " + outcome.Label
	case domain.IntentOpenChat:
		return "Abrindo conversa com " + outcome.Label + " no WhatsApp"
	case domain.IntentSendMessage:
		if intent.Channel == domain.ChannelSMS {
			return "Enviando SMS para " + outcome.Label
		}
		return "Abrindo conversa no WhatsApp. Por favor, confirme o envio."
	case domain.IntentSetAlarm:
		return fmt.Sprintf("Alarme definido para %d:%02d", intent.Hour, intent.Minute)
	case domain.IntentSearch:
		return "Pesquisando por " + intent.Query
	default:
		return "Feito"
	}
}

func failureMessage(intent domain.Intent) string {
	switch intent.Kind {
	case domain.IntentOpenApp:
		return "Não consegui abrir o aplicativo " + intent.AppName
	case domain.IntentOpenChat:
		return "Não consegui abrir a conversa no WhatsApp"
	case domain.IntentSendMessage:
		if intent.Channel == domain.ChannelSMS {
			return "Não consegui enviar o SMS"
		}
		return "Não consegui abrir o WhatsApp"
	case domain.IntentSetAlarm:
		return "Não consegui definir o alarme"
	case domain.IntentSearch:
		return "Desculpe, não consegui realizar a pesquisa"
	default:
		return "Não consegui executar o comando"
	}
}

func lookupFailureMessage(intent domain.Intent) string {
	if intent.Kind == domain.IntentOpenApp {
		return "Não consegui abrir o aplicativo " + intent.AppName
	}
	return respContactLookupErr
}

func executedOverlay(intent domain.Intent, outcome domain.Outcome) string {
	switch intent.Kind {
	case domain.IntentSearch:
		return "Pesquisando: " + intent.Query
	case domain.IntentSetAlarm:
		return fmt.Sprintf("Alarme %d:%02d", intent.Hour, intent.Minute)
	default:
		return "Abrindo: " + outcome.Label
	}
}

// selectionOverlay renders the numbered choice list shown while a
// disambiguation answer is awaited. The numbering is the frozen candidate
// order.
func selectionOverlay(candidates []domain.Candidate) string {
	var b strings.Builder
	b.WriteString("Escolha um número:")
	for i, c := range candidates {
		b.WriteString(fmt.Sprintf("\n%d - %s", i+1, c.Label))
	}
	return b.String()
}
