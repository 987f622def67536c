package router_test

import (
	"testing"

	"github.com/habiliai/mcpchat/router"
	"github.com/stretchr/testify/assert"
)

func TestPick(t *testing.T) {
	r := router.New(router.DefaultKeywordSets())

	tests := []struct {
		name  string
		input string
		want  router.Category
	}{
		{name: "search cue", input: "what's the latest news", want: router.CategorySearch},
		{name: "mail beats music", input: "send a song in email", want: router.CategoryMail},
		{name: "math cue", input: "calculate 2+2", want: router.CategoryMath},
		{name: "math symbol only", input: "3 * 7", want: router.CategoryMath},
		{name: "music cue", input: "Play something by my favourite ARTIST", want: router.CategoryMusic},
		{name: "case folded", input: "SEARCH for go generics", want: router.CategorySearch},
		{name: "search beats math", input: "search how to calculate tax", want: router.CategorySearch},
		{name: "no cue", input: "hello", want: router.CategoryDirect},
		{name: "empty", input: "", want: router.CategoryDirect},
		{name: "word boundary", input: "my address is private", want: router.CategoryDirect},
		{name: "plural mail", input: "any new emails from Bob?", want: router.CategoryMail},
		{name: "inflected search", input: "I was searching for flights", want: router.CategorySearch},
		{name: "inflected music", input: "what's playing right now", want: router.CategoryMusic},
		{name: "inflected math", input: "help me with solving equations", want: router.CategoryMath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Pick(tt.input))
		})
	}
}

func TestPick_CustomKeywords(t *testing.T) {
	r := router.New(router.KeywordSets{
		Mail:  []string{"Letter"},
		Music: []string{"letter", "tune"},
		Math:  []string{"how much"},
	})

	assert.Equal(t, router.CategoryMail, r.Pick("write a letter"))
	assert.Equal(t, router.CategoryMusic, r.Pick("hum a tune"))
	assert.Equal(t, router.CategoryMath, r.Pick("how much is 3 times 4"))
	assert.Equal(t, router.CategoryDirect, r.Pick("what's the latest news"))
}

func TestPick_Deterministic(t *testing.T) {
	r := router.New(router.DefaultKeywordSets())
	first := r.Pick("search my email for a song")
	for range 10 {
		assert.Equal(t, first, r.Pick("search my email for a song"))
	}
	assert.Equal(t, router.CategorySearch, first)
}

func TestParseCategory(t *testing.T) {
	c, ok := router.ParseCategory(" Mail ")
	assert.True(t, ok)
	assert.Equal(t, router.CategoryMail, c)

	_, ok = router.ParseCategory("weather")
	assert.False(t, ok)
}
