package assistant

import (
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMatch_BloodPressure(t *testing.T) {
	for i := 0; i < 10; i++ {
		rule, ok := General().Match("What's the blood pressure reading")
		if !ok {
			t.Fatal("expected a match")
		}
		if rule.Trigger != "blood pressure" || rule.Category != CategoryMedical {
			t.Fatalf("matched %+v", rule)
		}
	}
}

func TestMatch_FirstRuleWins(t *testing.T) {
	tests := []struct {
		kb      *KnowledgeBase
		input   string
		trigger string
		cat     Category
	}{
		{General(), "PAIN after medication", "pain", CategoryMedical},
		{General(), "drug interactions", "drug", CategoryMedication},
		{General(), "Shift Change report", "shift change", CategoryProcedure},
		{General(), "PPE for droplet", "ppe", CategoryProcedure},
		{General(), "patient safety", "safety", CategoryMedical},
		{Nursing(), "calculate a heparin dose", "calculate", CategoryMedical},
		{Nursing(), "blood pressure is high", "blood pressure", CategoryMedical},
		{Nursing(), "review the 5 rights", "5 rights", CategoryMedication},
		{Nursing(), "isolation gown", "isolation", CategoryProtocol},
		{Nursing(), "cardiac arrest in room 4", "cardiac arrest", CategoryProtocol},
		{Nursing(), "stage 2 pressure ulcer", "pressure ulcer", CategoryProcedure},
	}
	for _, tt := range tests {
		t.Run(tt.kb.Name+"/"+tt.input, func(t *testing.T) {
			rule, ok := tt.kb.Match(tt.input)
			if !ok {
				t.Fatal("expected a match")
			}
			if rule.Trigger != tt.trigger || rule.Category != tt.cat {
				t.Errorf("got trigger %q category %q, want %q %q", rule.Trigger, rule.Category, tt.trigger, tt.cat)
			}
		})
	}
}

func TestMatch_NoTrigger(t *testing.T) {
	if _, ok := General().Match("where is the break room"); ok {
		t.Error("expected no match")
	}
}

func TestGreeting(t *testing.T) {
	if g := General().Greeting(""); !strings.HasPrefix(g, "Hello Nurse!") {
		t.Errorf("general greeting = %q", g)
	}
	if g := Nursing().Greeting("Sarah Johnson"); !strings.Contains(g, "I see you're working with Sarah Johnson.") {
		t.Errorf("nursing greeting = %q", g)
	}
	if g := Nursing().Greeting(""); strings.Contains(g, "working with") {
		t.Errorf("nursing greeting without patient = %q", g)
	}
}

func TestResponder_FallbackIsDeterministicForSeed(t *testing.T) {
	a := NewResponder(rand.New(rand.NewSource(42)), zerolog.Nop())
	b := NewResponder(rand.New(rand.NewSource(42)), zerolog.Nop())
	for i := 0; i < 5; i++ {
		ra, err := a.Respond("general", "tell me something")
		if err != nil {
			t.Fatal(err)
		}
		rb, _ := b.Respond("general", "tell me something")
		if ra.Text != rb.Text {
			t.Fatalf("replies diverged at %d: %q vs %q", i, ra.Text, rb.Text)
		}
		if ra.Matched || ra.Category != CategoryGeneral {
			t.Errorf("fallback reply = %+v", ra)
		}
	}
}

func TestResponder_Respond(t *testing.T) {
	r := NewResponder(NewRand(1), zerolog.Nop())
	at := time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)
	r.SetClock(func() time.Time { return at })

	reply, err := r.Respond("nursing", "What's the blood pressure reading")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reply.Matched || reply.Category != CategoryMedical || !reply.Timestamp.Equal(at) {
		t.Errorf("unexpected reply: %+v", reply)
	}
	if _, err := r.Respond("nursing", "  "); err == nil {
		t.Error("expected error for empty message")
	}
	if _, err := r.Respond("cardiology", "hi"); err == nil {
		t.Error("expected error for unknown knowledge base")
	}
}

func TestResponder_KnowledgeBasesInOrder(t *testing.T) {
	r := NewResponder(NewRand(1), zerolog.Nop())
	kbs := r.KnowledgeBases()
	if len(kbs) != 2 || kbs[0].Name != "general" || kbs[1].Name != "nursing" {
		t.Errorf("unexpected knowledge bases: %v", kbs)
	}
}
