package service

import (
	"testing"

	"leadmarket_backend/internal/campaigns/repository"
)

func TestRenderTemplate(t *testing.T) {
	phone := "+31612345678"
	email := "anna@example.com"

	tests := []struct {
		name     string
		template string
		rec      repository.Recipient
		want     string
	}{
		{
			name:     "full substitution",
			template: "Hi {{first_name}}, we found a role for {{name}}. Reply to {{email}}.",
			rec:      repository.Recipient{FullName: "Anna de Vries", Phone: &phone, Email: &email},
			want:     "Hi Anna, we found a role for Anna de Vries. Reply to anna@example.com.",
		},
		{
			name:     "single-word name used as first name",
			template: "{{first_name}}",
			rec:      repository.Recipient{FullName: "Anna"},
			want:     "Anna",
		},
		{
			name:     "missing contact fields render empty",
			template: "Call {{phone}} or mail {{email}}",
			rec:      repository.Recipient{FullName: "Anna"},
			want:     "Call  or mail ",
		},
		{
			name:     "unknown placeholders stay intact",
			template: "Hello {{nickname}}",
			rec:      repository.Recipient{FullName: "Anna"},
			want:     "Hello {{nickname}}",
		},
		{
			name:     "no placeholders",
			template: "Plain message",
			rec:      repository.Recipient{FullName: "Anna"},
			want:     "Plain message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.template, tt.rec); got != tt.want {
				t.Errorf("RenderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}
