package domain_test

import (
	"testing"

	"github.com/kiddoconnect/campaign-service/internal/domain"
)

func TestEventType_IsValid(t *testing.T) {
	for _, e := range []domain.EventType{domain.EventBirthday, domain.EventHoliday, domain.EventPromotion} {
		if !e.IsValid() {
			t.Errorf("expected %q to be valid", e)
		}
	}
	if domain.EventType("anniversary").IsValid() {
		t.Error("expected unknown event type to be invalid")
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	if domain.StatusPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	if !domain.StatusSent.IsTerminal() || !domain.StatusFailed.IsTerminal() {
		t.Error("sent and failed must be terminal")
	}
}

func TestTenant_FromIdentityFallbacks(t *testing.T) {
	name := "Front Desk"
	reply := "hello@happykids.example"

	t.Run("explicit values win", func(t *testing.T) {
		tn := domain.Tenant{BusinessName: "Happy Kids Gym", EmailFromName: &name, EmailReplyTo: &reply}
		if tn.FromName() != "Front Desk" {
			t.Errorf("from name = %q", tn.FromName())
		}
		if tn.ReplyTo() != reply {
			t.Errorf("reply-to = %q", tn.ReplyTo())
		}
	})

	t.Run("missing from-name falls back to business name", func(t *testing.T) {
		tn := domain.Tenant{BusinessName: "Happy Kids Gym"}
		if tn.FromName() != "Happy Kids Gym" {
			t.Errorf("from name = %q", tn.FromName())
		}
	})

	t.Run("missing reply-to falls back to default", func(t *testing.T) {
		empty := ""
		tn := domain.Tenant{BusinessName: "Happy Kids Gym", EmailReplyTo: &empty}
		if tn.ReplyTo() != domain.DefaultReplyTo {
			t.Errorf("reply-to = %q", tn.ReplyTo())
		}
	})
}

func TestRegisterRecipientRequest_Validate(t *testing.T) {
	valid := domain.RegisterRecipientRequest{
		APIKey:    "pk_live_abc",
		Email:     "dana@example.com",
		ChildName: "Ava",
		Birthdate: "2020-04-29",
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("missing api key", func(t *testing.T) {
		r := valid
		r.APIKey = ""
		if err := r.Validate(); err != domain.ErrAPIKeyRequired {
			t.Fatalf("expected ErrAPIKeyRequired, got %v", err)
		}
	})

	t.Run("missing child name", func(t *testing.T) {
		r := valid
		r.ChildName = ""
		if err := r.Validate(); err != domain.ErrNameRequired {
			t.Fatalf("expected ErrNameRequired, got %v", err)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		r := valid
		r.Email = ""
		if err := r.Validate(); err != domain.ErrEmailRequired {
			t.Fatalf("expected ErrEmailRequired, got %v", err)
		}
	})

	t.Run("malformed birthdate", func(t *testing.T) {
		r := valid
		r.Birthdate = "29/04/2020"
		if err := r.Validate(); err != domain.ErrInvalidBirthdate {
			t.Fatalf("expected ErrInvalidBirthdate, got %v", err)
		}
	})
}
