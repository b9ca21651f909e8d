package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeThumbnailURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"data:image/svg+xml;base64,AAA", "data:image/svg+xml;base64,AAA"},
		{"/cached_images/a.jpg?v=1", "/cached_images/a.jpg"},
		{"https://i.animepahe.ru/posters/x.jpg?token=1", "https://i.animepahe.ru/posters/x.jpg"},
		{"HTTP://host/x.png", "HTTP://host/x.png"},
		{"posters/abc.jpg", "/cached_images/abc.jpg"},
		{"posters/abc/", "/cached_images/abc"},
		{"/", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeThumbnailURL(tt.in), "input %q", tt.in)
	}
}

func TestParseSummaries(t *testing.T) {
	items, total, err := parseSummaries([]byte(`{"results":[{"session":"a","genre":["Action","Drama"]}],"total":"7"}`))
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Action, Drama", items[0].Genre)

	items, total, err = parseSummaries([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, items)
	assert.Equal(t, -1, total)

	_, _, err = parseSummaries([]byte(`"oops"`))
	assert.Error(t, err)
}

func TestHTMLToText(t *testing.T) {
	assert.Equal(t, "", HTMLToText("  "))
	assert.Equal(t, "plain text", HTMLToText("plain text"))
	assert.Equal(t, "Line one\nLine two", HTMLToText("<div>Line   one</div><div>Line two</div>"))
	assert.Equal(t, "a\nb", HTMLToText("a<br/>b<script>x()</script>"))
}
