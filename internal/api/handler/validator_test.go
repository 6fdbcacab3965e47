package handler

import (
	"strings"
	"testing"
)

func TestValidator_ValidRequestPasses(t *testing.T) {
	v := NewValidator()
	req := serviceRequest{Name: "Haircut", Price: 150000, ImageURL: "https://example.com/haircut.png"}
	if err := v.Validate(&req); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		name string
		in   any
		want []string
	}{
		{
			name: "missing service fields",
			in:   &serviceRequest{},
			want: []string{"name is required", "price is required"},
		},
		{
			name: "non-positive price",
			in:   &serviceRequest{Name: "Haircut", Price: -5},
			want: []string{"price must be greater than 0"},
		},
		{
			name: "malformed image url",
			in:   &serviceRequest{Name: "Haircut", Price: 150000, ImageURL: "not-a-url"},
			want: []string{"image_url must be a valid URL"},
		},
		{
			name: "bad email and short password",
			in:   &registerRequest{FullName: "Alice", Email: "nope", Password: "abc"},
			want: []string{"email must be a valid email address", "password must be at least 6 characters"},
		},
		{
			name: "missing full name",
			in:   &registerRequest{Email: "alice@example.com", Password: "secret1"},
			want: []string{"full_name is required"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(tc.in)
			if err == nil {
				t.Fatalf("expected validation failure")
			}
			for _, want := range tc.want {
				if !strings.Contains(err.Error(), want) {
					t.Fatalf("message %q missing from %q", want, err.Error())
				}
			}
		})
	}
}
