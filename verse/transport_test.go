package verse

import "testing"

func TestDeriveDuplexURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		apiKey  string
		want    string
	}{
		{
			name:    "http base",
			baseURL: "http://node.example",
			apiKey:  "key-1",
			want:    "ws://node.example/ws?api_key=key-1",
		},
		{
			name:    "https base",
			baseURL: "https://node.example",
			apiKey:  "key-1",
			want:    "wss://node.example/ws?api_key=key-1",
		},
		{
			name:    "trailing slash stripped",
			baseURL: "https://node.example/",
			apiKey:  "key-1",
			want:    "wss://node.example/ws?api_key=key-1",
		},
		{
			name:    "repeated trailing slashes stripped",
			baseURL: "http://node.example///",
			apiKey:  "key-1",
			want:    "ws://node.example/ws?api_key=key-1",
		},
		{
			name:    "base path preserved",
			baseURL: "https://node.example/ledger",
			apiKey:  "key-1",
			want:    "wss://node.example/ledger/ws?api_key=key-1",
		},
		{
			name:    "api key escaped",
			baseURL: "http://node.example",
			apiKey:  "k&y 1",
			want:    "ws://node.example/ws?api_key=k%26y+1",
		},
		{
			name:    "surrounding whitespace trimmed",
			baseURL: "  http://node.example  ",
			apiKey:  "key-1",
			want:    "ws://node.example/ws?api_key=key-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := deriveDuplexURL(tt.baseURL, tt.apiKey)
			if got != tt.want {
				t.Fatalf("deriveDuplexURL(%q) = %q, want %q", tt.baseURL, got, tt.want)
			}
		})
	}
}
