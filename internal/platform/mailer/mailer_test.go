package mailer

import (
	"context"
	"strings"
	"testing"
)

func TestTemplateEngine_RenderBuiltIn(t *testing.T) {
	engine := NewTemplateEngine()

	subject, body, err := engine.Render("password-reset-otp", map[string]string{
		"name":        "Asha",
		"otp":         "482913",
		"ttl_minutes": "5",
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if subject != "Your password reset code" {
		t.Errorf("unexpected subject: %s", subject)
	}
	if !strings.Contains(body, "482913") {
		t.Errorf("expected otp in body, got %s", body)
	}
	if !strings.Contains(body, "5 minutes") {
		t.Errorf("expected ttl in body, got %s", body)
	}
}

func TestTemplateEngine_UnknownTemplate(t *testing.T) {
	engine := NewTemplateEngine()
	if _, _, err := engine.Render("no-such-template", nil); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestTemplateEngine_MissingKeysLeftAsIs(t *testing.T) {
	engine := NewTemplateEngine()
	_, body, err := engine.Render("password-reset-otp", map[string]string{"otp": "111111"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(body, "{{name}}") {
		t.Errorf("expected unbound placeholder left intact, got %s", body)
	}
}

func TestTemplateEngine_RegisterOverride(t *testing.T) {
	engine := NewTemplateEngine()
	engine.RegisterTemplate(Template{
		ID:      "password-reset-otp",
		Subject: "Code: {{otp}}",
		Body:    "{{otp}}",
	})

	subject, _, err := engine.Render("password-reset-otp", map[string]string{"otp": "123456"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if subject != "Code: 123456" {
		t.Errorf("unexpected subject: %s", subject)
	}
}

func TestMockEmailSender_RecordsCalls(t *testing.T) {
	mock := &MockEmailSender{}

	if err := mock.SendEmail(context.Background(), "a@example.com", "hi", "body"); err != nil {
		t.Fatalf("SendEmail() error: %v", err)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].To != "a@example.com" || calls[0].Subject != "hi" {
		t.Errorf("unexpected call: %+v", calls[0])
	}
}

func TestMockEmailSender_Failure(t *testing.T) {
	mock := &MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	err := mock.SendEmail(context.Background(), "a@example.com", "hi", "body")
	if err == nil || err.Error() != "smtp down" {
		t.Errorf("expected smtp down error, got %v", err)
	}
}
