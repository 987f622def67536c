package config

import (
	"github.com/habiliai/mcpchat/router"
)

type RouterConfig struct {
	Keywords router.KeywordSets `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

func NewRouterConfig() *RouterConfig {
	return &RouterConfig{
		Keywords: router.DefaultKeywordSets(),
	}
}
