package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetTokenValuesFromURL(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		url     string
		want    map[string]string
	}{
		{
			name:    "single terminal token",
			pattern: "/posts/{id}",
			url:     "/posts/42",
			want:    map[string]string{"id": "42"},
		},
		{
			name:    "two tokens with literal between",
			pattern: "/users/{userId}/posts/{postId}",
			url:     "/users/7/posts/42",
			want:    map[string]string{"userId": "7", "postId": "42"},
		},
		{
			name:    "token followed by literal suffix",
			pattern: "/posts/{id}/comments",
			url:     "/posts/42/comments",
			want:    map[string]string{"id": "42"},
		},
		{
			name:    "no tokens",
			pattern: "/about",
			url:     "/about",
			want:    map[string]string{},
		},
		{
			name:    "hyphenated value",
			pattern: "/tags/{slug}",
			url:     "/tags/go-web-framework",
			want:    map[string]string{"slug": "go-web-framework"},
		},
		{
			name:    "value contains the first byte of the following literal",
			pattern: "/p/{a}-x/{b}",
			url:     "/p/m-n-x/q",
			want:    map[string]string{"a": "m-n", "b": "q"},
		},
		{
			name:    "literal run between adjacent tokens",
			pattern: "/files/{dir}--{file}",
			url:     "/files/a-b--c",
			want:    map[string]string{"dir": "a-b", "file": "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetTokenValuesFromURL(tt.pattern, tt.url))
		})
	}
}
