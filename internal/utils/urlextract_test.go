package utils

import (
	"reflect"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "no urls",
			text: "just a plain sentence with nothing to click",
			want: nil,
		},
		{
			name: "single https url",
			text: "visit https://example.com/login for details",
			want: []string{"https://example.com/login"},
		},
		{
			name: "trailing punctuation trimmed",
			text: "go to http://evil.test/reset.",
			want: []string{"http://evil.test/reset"},
		},
		{
			name: "bare www host",
			text: "see www.example.org/promo now",
			want: []string{"www.example.org/promo"},
		},
		{
			name: "multiple urls keep order",
			text: "first http://a.test/1, then https://b.test/2; done",
			want: []string{"http://a.test/1", "https://b.test/2"},
		},
		{
			name: "url with query parameters",
			text: "click https://login.example.com/verify?user=bob&token=abc123",
			want: []string{"https://login.example.com/verify?user=bob&token=abc123"},
		},
		{
			name: "mixed case scheme",
			text: "open HTTPS://Example.COM/path",
			want: []string{"HTTPS://Example.COM/path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURLs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractURLs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
