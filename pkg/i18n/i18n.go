package i18n

import (
	"embed"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed translations/active.*.toml
var localeFS embed.FS
var bundle *i18n.Bundle

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	for _, path := range []string{"translations/active.en.toml", "translations/active.ru.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			panic(err)
		}
	}
}

type C = i18n.LocalizeConfig
type M = i18n.Message

// T localizes c for lang, which may be a language tag or an Accept-Language header value.
func T(lang string, c C) string {
	s, _ := i18n.NewLocalizer(bundle, lang).Localize(&c)
	return s
}

// Text localizes a message whose id is its English text. Unknown messages are returned unchanged.
func Text(lang, s string) string {
	if s == "" {
		return s
	}
	return T(lang, C{DefaultMessage: &M{ID: s, Other: s}})
}
