package demo

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/zjrosen/mvc/internal/facade"
	"github.com/zjrosen/mvc/internal/model"
)

// Greeting is one recorded greeting.
type Greeting struct {
	Name    string `yaml:"name" json:"name"`
	Message string `yaml:"message" json:"message"`
}

// GreetingProxy keeps the greetings sent on a core, oldest first.
type GreetingProxy struct {
	model.BaseProxy
	facade.Notifier
	salutation string
}

// NewGreetingProxy creates an empty GreetingProxy using salutation.
func NewGreetingProxy(salutation string) *GreetingProxy {
	if salutation == "" {
		salutation = "hello"
	}
	return &GreetingProxy{
		BaseProxy:  model.NewBaseProxy(GreetingProxyName, []Greeting(nil)),
		salutation: salutation,
	}
}

// History returns the recorded greetings.
func (p *GreetingProxy) History() []Greeting {
	history, _ := p.Data().([]Greeting)
	return append([]Greeting(nil), history...)
}

// Record builds and stores the greeting for name.
func (p *GreetingProxy) Record(name string) Greeting {
	g := Greeting{Name: name, Message: fmt.Sprintf("%s, %s", p.salutation, name)}
	p.SetData(append(p.History(), g))
	return g
}

// Clear forgets every greeting and announces it.
func (p *GreetingProxy) Clear(ctx context.Context) {
	p.SetData([]Greeting(nil))
	p.SendNotification(ctx, HistoryCleared, nil, "")
}

// NewDisplayNameProxy caches normalized display names. Names are loaded on
// first use by capitalizing each word.
func NewDisplayNameProxy() *model.CacheProxy[string] {
	return model.NewCacheProxy(DisplayNameProxy, model.CacheProxyConfig[string]{
		Loader: func(_ context.Context, key string) (string, error) {
			name := strings.Join(strings.Fields(key), " ")
			if name == "" {
				return "", fmt.Errorf("blank name")
			}
			runes := []rune(name)
			upNext := true
			for i, r := range runes {
				if upNext {
					runes[i] = unicode.ToUpper(r)
				}
				upNext = r == ' '
			}
			return string(runes), nil
		},
	})
}
