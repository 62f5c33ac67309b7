package dispatch

import (
	"context"
	"encoding/json"
	"testing"

	"voz/internal/domain"
)

type recordedCall struct {
	terminalID string
	action     string
	args       json.RawMessage
}

type fakeInvoker struct {
	calls  []recordedCall
	result domain.ActionResult
	err    error
}

func (f *fakeInvoker) InvokeAction(_ context.Context, terminalID, action string, args json.RawMessage) (domain.ActionResult, error) {
	f.calls = append(f.calls, recordedCall{terminalID: terminalID, action: action, args: args})
	return f.result, f.err
}

func lastArgs(t *testing.T, f *fakeInvoker, into any) {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("no action invoked")
	}
	if err := json.Unmarshal(f.calls[len(f.calls)-1].args, into); err != nil {
		t.Fatalf("unmarshal args: %v", err)
	}
}

func TestExecuteOpenApp(t *testing.T) {
	invoker := &fakeInvoker{result: domain.ActionResult{OK: true}}
	d := New(invoker)

	target := &domain.Candidate{ID: "com.spotify.music", Label: "Spotify", Payload: "com.spotify.music"}
	out, err := d.Execute(context.Background(), "term-1", domain.Intent{Kind: domain.IntentOpenApp, AppName: "spotify"}, target)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.OK || out.Label != "Spotify" {
		t.Fatalf("outcome = %+v", out)
	}
	if got := invoker.calls[0].action; got != ActionOpenApp {
		t.Fatalf("action = %q, want %q", got, ActionOpenApp)
	}

	var args openAppArgs
	lastArgs(t, invoker, &args)
	if args.Package != "com.spotify.music" {
		t.Fatalf("package = %q", args.Package)
	}
}

func TestExecuteOpenChatBuildsWaLink(t *testing.T) {
	invoker := &fakeInvoker{result: domain.ActionResult{OK: true}}
	d := New(invoker)

	target := &domain.Candidate{ID: "c1", Label: "Maria", Payload: "+351 912 345 678"}
	_, err := d.Execute(context.Background(), "term-1", domain.Intent{Kind: domain.IntentOpenChat, Contact: "maria"}, target)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var args openURLArgs
	lastArgs(t, invoker, &args)
	if args.URL != "https://wa.me/+351912345678" {
		t.Fatalf("url = %q", args.URL)
	}
}

func TestExecuteWhatsAppMessagePrefillsText(t *testing.T) {
	invoker := &fakeInvoker{result: domain.ActionResult{OK: true}}
	d := New(invoker)

	target := &domain.Candidate{ID: "c1", Label: "Maria", Payload: "+351912345678"}
	intent := domain.Intent{
		Kind:    domain.IntentSendMessage,
		Channel: domain.ChannelWhatsApp,
		Contact: "maria",
		Message: "bom dia",
	}
	if _, err := d.Execute(context.Background(), "term-1", intent, target); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var args openURLArgs
	lastArgs(t, invoker, &args)
	if args.URL != "https://wa.me/+351912345678?text=bom+dia" {
		t.Fatalf("url = %q", args.URL)
	}
}

func TestExecuteSMSUsesNativeAction(t *testing.T) {
	invoker := &fakeInvoker{result: domain.ActionResult{OK: true}}
	d := New(invoker)

	target := &domain.Candidate{ID: "c1", Label: "Maria", Payload: "912-345-678"}
	intent := domain.Intent{
		Kind:    domain.IntentSendMessage,
		Channel: domain.ChannelSMS,
		Contact: "maria",
		Message: "chego tarde",
	}
	if _, err := d.Execute(context.Background(), "term-1", intent, target); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := invoker.calls[0].action; got != ActionSendSMS {
		t.Fatalf("action = %q, want %q", got, ActionSendSMS)
	}
	var args sendSMSArgs
	lastArgs(t, invoker, &args)
	if args.Phone != "912345678" || args.Message != "chego tarde" {
		t.Fatalf("args = %+v", args)
	}
}

func TestExecuteSetAlarm(t *testing.T) {
	invoker := &fakeInvoker{result: domain.ActionResult{OK: true}}
	d := New(invoker)

	intent := domain.Intent{Kind: domain.IntentSetAlarm, Hour: 7, Minute: 30}
	out, err := d.Execute(context.Background(), "term-1", intent, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !out.OK {
		t.Fatalf("outcome = %+v", out)
	}

	var args setAlarmArgs
	lastArgs(t, invoker, &args)
	if args.Hour != 7 || args.Minute != 30 {
		t.Fatalf("args = %+v", args)
	}
}

func TestExecuteSearchEncodesQuery(t *testing.T) {
	invoker := &fakeInvoker{result: domain.ActionResult{OK: true}}
	d := New(invoker)

	intent := domain.Intent{Kind: domain.IntentSearch, Query: "receita de bolo"}
	if _, err := d.Execute(context.Background(), "term-1", intent, nil); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var args openURLArgs
	lastArgs(t, invoker, &args)
	if args.URL != "https://www.google.com/search?q=receita+de+bolo" {
		t.Fatalf("url = %q", args.URL)
	}
}

func TestExecuteTargetlessOpenAppFails(t *testing.T) {
	d := New(&fakeInvoker{})
	if _, err := d.Execute(context.Background(), "term-1", domain.Intent{Kind: domain.IntentOpenApp}, nil); err == nil {
		t.Fatal("want error for missing target")
	}
}

func TestExecuteReportsTerminalFailure(t *testing.T) {
	invoker := &fakeInvoker{result: domain.ActionResult{OK: false, Error: "no alarm app"}}
	d := New(invoker)

	intent := domain.Intent{Kind: domain.IntentSetAlarm, Hour: 7, Minute: 0}
	out, _ := d.Execute(context.Background(), "term-1", intent, nil)
	if out.OK {
		t.Fatalf("outcome = %+v, want not OK", out)
	}
}
