package model

import (
	"strings"
	"testing"
)

func validClaim() Claim {
	return Claim{
		Step:           "clear-3-rows",
		Kind:           KindState,
		Condition:      "score==30",
		FailurePattern: "score!=30",
		Severity:       SeverityMust,
	}
}

func TestClaim_Validate(t *testing.T) {
	if err := validClaim().Validate(); err != nil {
		t.Fatalf("expected valid claim, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Claim)
		want   string
	}{
		{"unknown kind", func(c *Claim) { c.Kind = "audio" }, "kind"},
		{"empty kind", func(c *Claim) { c.Kind = "" }, "kind"},
		{"unknown severity", func(c *Claim) { c.Severity = "CRITICAL" }, "severity"},
		{"empty severity", func(c *Claim) { c.Severity = "" }, "severity"},
		{"no condition", func(c *Claim) { c.Condition = "" }, "condition"},
		{"no failure pattern", func(c *Claim) { c.FailurePattern = "" }, "failure pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validClaim()
			tt.mutate(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error to mention %q, got %v", tt.want, err)
			}
		})
	}
}
