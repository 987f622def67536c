// Package router classifies a line of user text into the tool category that
// should answer it.
package router

import (
	"strings"
	"unicode"

	"github.com/habiliai/mcpchat/internal/stringslices"
)

type (
	Category string

	// KeywordSets holds the trigger words of every tool category.
	KeywordSets struct {
		Search []string `yaml:"search,omitempty" json:"search,omitempty"`
		Mail   []string `yaml:"mail,omitempty" json:"mail,omitempty"`
		Music  []string `yaml:"music,omitempty" json:"music,omitempty"`
		Math   []string `yaml:"math,omitempty" json:"math,omitempty"`
	}

	Router struct {
		ordered []keywordSet
	}

	keywordSet struct {
		category Category
		words    []string
		phrases  []string
	}
)

const (
	CategorySearch Category = "search"
	CategoryMail   Category = "mail"
	CategoryMusic  Category = "music"
	CategoryMath   Category = "math"
	// CategoryDirect sends the text to the language model.
	CategoryDirect Category = "direct"
)

// Categories lists the tool categories in priority order.
var Categories = []Category{CategorySearch, CategoryMail, CategoryMusic, CategoryMath}

func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategorySearch, CategoryMail, CategoryMusic, CategoryMath, CategoryDirect:
		return c, true
	}
	return "", false
}

func DefaultKeywordSets() KeywordSets {
	return KeywordSets{
		Search: []string{
			"search", "searches", "searching", "searched", "latest", "news", "web", "google", "googling",
			"look up", "looking up", "current", "today", "headline", "headlines",
		},
		Mail: []string{
			"email", "emails", "emailed", "emailing", "e-mail", "e-mails", "mail", "mails", "mailed",
			"gmail", "inbox", "inboxes", "mailbox", "mailboxes",
		},
		Music: []string{
			"song", "songs", "music", "spotify", "playlist", "playlists", "track", "tracks",
			"artist", "artists", "album", "albums", "play", "plays", "playing",
		},
		Math: []string{
			"calculate", "calculates", "calculating", "calculation", "calculations", "calculator",
			"math", "maths", "solve", "solving", "equation", "equations", "sum", "sums",
			"multiply", "multiplied", "divide", "divided", "plus", "minus", "+", "*", "/", "=",
		},
	}
}

// New builds a router. Alphanumeric keywords match whole words; keywords with
// spaces or symbols match as substrings.
func New(sets KeywordSets) *Router {
	r := &Router{}
	for _, c := range Categories {
		ks := keywordSet{category: c}
		for _, kw := range stringslices.Normalize(sets.get(c)) {
			if isWord(kw) {
				ks.words = append(ks.words, kw)
			} else {
				ks.phrases = append(ks.phrases, kw)
			}
		}
		r.ordered = append(r.ordered, ks)
	}
	return r
}

// Pick returns the first category, in priority order, with a keyword present
// in text, or CategoryDirect when none matches.
func (r *Router) Pick(text string) Category {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, ks := range r.ordered {
		if stringslices.Overlaps(ks.words, words) {
			return ks.category
		}
		for _, phrase := range ks.phrases {
			if strings.Contains(text, phrase) {
				return ks.category
			}
		}
	}

	return CategoryDirect
}

func (s KeywordSets) get(c Category) []string {
	switch c {
	case CategorySearch:
		return s.Search
	case CategoryMail:
		return s.Mail
	case CategoryMusic:
		return s.Music
	case CategoryMath:
		return s.Math
	}
	return nil
}

func isWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
