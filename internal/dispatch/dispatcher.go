// Package dispatch turns resolved intents into terminal action requests.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"voz/internal/domain"
)

// ActionInvoker sends one action to a terminal and waits for its result.
type ActionInvoker interface {
	InvokeAction(ctx context.Context, terminalID, action string, args json.RawMessage) (domain.ActionResult, error)
}

// Action names understood by the terminals.
const (
	ActionOpenApp  = "open_app"
	ActionOpenURL  = "open_url"
	ActionSendSMS  = "send_sms"
	ActionSetAlarm = "set_alarm"
)

var phoneJunkRe = regexp.MustCompile(`[^0-9+]`)

type openAppArgs struct {
	Package string `json:"package"`
}

type openURLArgs struct {
	URL string `json:"url"`
}

type sendSMSArgs struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type setAlarmArgs struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Dispatcher maps each executable intent onto exactly one terminal action.
// WhatsApp chats and messages ride on wa.me URLs the way the search intent
// rides on a search URL; only SMS and alarms are native actions.
type Dispatcher struct {
	invoker ActionInvoker
}

func New(invoker ActionInvoker) *Dispatcher {
	return &Dispatcher{invoker: invoker}
}

func (d *Dispatcher) Execute(ctx context.Context, terminalID string, intent domain.Intent, target *domain.Candidate) (domain.Outcome, error) {
	action, args, err := buildAction(intent, target)
	if err != nil {
		return domain.Outcome{}, err
	}

	result, err := d.invoker.InvokeAction(ctx, terminalID, action, args)
	if err != nil {
		return domain.Outcome{OK: false, Label: targetLabel(target)}, err
	}
	return domain.Outcome{OK: result.OK, Label: targetLabel(target)}, nil
}

func buildAction(intent domain.Intent, target *domain.Candidate) (string, json.RawMessage, error) {
	switch intent.Kind {
	case domain.IntentOpenApp:
		if target == nil {
			return "", nil, fmt.Errorf("open_app requires a resolved app")
		}
		return ActionOpenApp, marshalArgs(openAppArgs{Package: target.Payload}), nil

	case domain.IntentOpenChat:
		if target == nil {
			return "", nil, fmt.Errorf("open_chat requires a resolved contact")
		}
		return ActionOpenURL, marshalArgs(openURLArgs{URL: waChatURL(target.Payload, "")}), nil

	case domain.IntentSendMessage:
		if target == nil {
			return "", nil, fmt.Errorf("send_message requires a resolved contact")
		}
		if intent.Channel == domain.ChannelSMS {
			return ActionSendSMS, marshalArgs(sendSMSArgs{
				Phone:   cleanPhone(target.Payload),
				Message: intent.Message,
			}), nil
		}
		return ActionOpenURL, marshalArgs(openURLArgs{URL: waChatURL(target.Payload, intent.Message)}), nil

	case domain.IntentSetAlarm:
		return ActionSetAlarm, marshalArgs(setAlarmArgs{Hour: intent.Hour, Minute: intent.Minute}), nil

	case domain.IntentSearch:
		return ActionOpenURL, marshalArgs(openURLArgs{URL: searchURL(intent.Query)}), nil

	default:
		return "", nil, fmt.Errorf("intent %q is not executable", intent.Kind)
	}
}

// waChatURL builds the wa.me deep link that opens the contact's chat, with
// the message prefilled when given. Sending still requires the user's tap.
func waChatURL(phone, message string) string {
	u := "https://wa.me/" + cleanPhone(phone)
	if message != "" {
		q := url.Values{}
		q.Set("text", message)
		u += "?" + q.Encode()
	}
	return u
}

func searchURL(query string) string {
	q := url.Values{}
	q.Set("q", query)
	return "https://www.google.com/search?" + q.Encode()
}

func cleanPhone(phone string) string {
	return phoneJunkRe.ReplaceAllString(phone, "")
}

func targetLabel(target *domain.Candidate) string {
	if target == nil {
		return ""
	}
	return target.Label
}

// marshalArgs never fails: every args struct is plain scalars.
func marshalArgs(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}
