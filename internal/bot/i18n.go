package bot

import (
	"embed"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-addressbook/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator renders bot replies in the selected language.
type Translator struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer

	// Languages lists the locale codes found in the embedded files.
	Languages []string
}

// NewTranslator loads the embedded locales and selects lang, falling back to English.
func NewTranslator(lang string) *Translator {
	t := &Translator{bundle: i18n.NewBundle(language.English)}
	t.bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := t.bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.Languages = append(t.Languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	t.SetLanguage(lang)
	return t
}

// SetLanguage switches the reply language.
func (t *Translator) SetLanguage(lang string) {
	if lang == "" {
		lang = config.DefaultLanguage
	}
	t.localizer = i18n.NewLocalizer(t.bundle, lang, config.DefaultLanguage)
}

// Msg translates key. Unknown keys come back verbatim.
func (t *Translator) Msg(key string, data map[string]any) string {
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{MessageID: key, TemplateData: data})
	if err != nil || msg == "" {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// EventSummary titles a calendar event. Age 0 is the day of birth.
// It returns "" when the key is missing so the builder can fall back.
func (t *Translator) EventSummary(name string, age int) string {
	key := config.TKeyEvtSummaryAge
	if age == 0 {
		key = config.TKeyEvtSummaryBirth
	}
	if msg := t.Msg(key, map[string]any{"Name": name, "Age": age}); msg != key {
		return msg
	}
	return ""
}
