// Package i18n translates the strings the picker shows.
//
// Usage:
//
//	i18n.Init("de")                                                       // at startup
//	i18n.T("tui.loading", "Loading...")                                   // simple string
//	i18n.Tf("tui.confirm.overwrite", "%s already exists. Overwrite?", n)  // with fmt args
//	i18n.Tn("tui.footer.selected", "{{.Count}} selected", "{{.Count}} selected", n) // plural
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

//go:embed locales/*.toml
var localeFS embed.FS

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	mu        sync.RWMutex
)

// Init initializes the i18n system with the given language tag.
// Falls back to English if the language is not available.
// Safe to call multiple times (e.g., after config reload).
func Init(lang string) {
	mu.Lock()
	defer mu.Unlock()

	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	// Load all available locale files from embedded FS.
	entries, _ := localeFS.ReadDir("locales")
	for _, e := range entries {
		_, _ = bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name())
	}

	localizer = i18n.NewLocalizer(bundle, lang, "en")
}

// T returns the localized string for the given message ID.
// The defaultMsg is used as the English fallback and is what
// goi18n extract picks up from source code.
func T(id string, defaultMsg string) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		return defaultMsg
	}

	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			Other: defaultMsg,
		},
	})
	if err != nil {
		return defaultMsg
	}
	return s
}

// Tf returns the localized string with fmt.Sprintf-style formatting.
// Use for strings with %d, %s, etc. placeholders.
func Tf(id string, defaultMsg string, args ...any) string {
	return fmt.Sprintf(T(id, defaultMsg), args...)
}

// Tn returns the localized string with pluralization.
// one/other use go template syntax with {{.Count}}.
func Tn(id string, one string, other string, count int) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()

	if l == nil {
		if count == 1 {
			return withCount(one, count)
		}
		return withCount(other, count)
	}

	s, err := l.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    id,
			One:   one,
			Other: other,
		},
		PluralCount:  count,
		TemplateData: map[string]int{"Count": count},
	})
	if err != nil {
		return withCount(other, count)
	}
	return s
}

func withCount(msg string, count int) string {
	return strings.ReplaceAll(msg, "{{.Count}}", strconv.Itoa(count))
}

// Available lists the embedded locales.
func Available() []string {
	entries, _ := localeFS.ReadDir("locales")
	var tags []string
	for _, e := range entries {
		tags = append(tags, strings.TrimSuffix(e.Name(), ".toml"))
	}
	return tags
}

// LangInfo describes an embedded locale.
type LangInfo struct {
	Tag         string
	Name        string // in its own language
	EnglishName string
	Active      bool
}

// Languages describes every embedded locale, marking the one whose base
// language matches active.
func Languages(active string) []LangInfo {
	activeBase, _ := language.Make(active).Base()
	var out []LangInfo
	for _, tag := range Available() {
		t := language.Make(tag)
		base, _ := t.Base()
		info := LangInfo{
			Tag:         tag,
			Name:        display.Self.Name(t),
			EnglishName: display.English.Tags().Name(t),
			Active:      base == activeBase,
		}
		if info.Name == "" {
			info.Name = tag
		}
		out = append(out, info)
	}
	return out
}

// Preview localizes id/default pairs in tag without touching the active
// locale. Before Init it returns the defaults.
func Preview(tag string, pairs [][2]string) []string {
	mu.RLock()
	b := bundle
	mu.RUnlock()

	out := make([]string, len(pairs))
	if b == nil {
		for i, p := range pairs {
			out[i] = p[1]
		}
		return out
	}
	l := i18n.NewLocalizer(b, tag, "en")
	for i, p := range pairs {
		s, err := l.Localize(&i18n.LocalizeConfig{
			DefaultMessage: &i18n.Message{ID: p[0], Other: p[1]},
		})
		if err != nil {
			s = p[1]
		}
		out[i] = s
	}
	return out
}

// ResolveLocale determines the active locale from env/config.
// Priority: PIKERU_LANG > configLang > LC_ALL/LANG > "en"
func ResolveLocale(configLang string) string {
	if v := os.Getenv("PIKERU_LANG"); v != "" {
		return v
	}
	if configLang != "" {
		return configLang
	}
	if v := os.Getenv("LC_ALL"); v != "" {
		return normalizeLocale(v)
	}
	if v := os.Getenv("LANG"); v != "" {
		return normalizeLocale(v)
	}
	return "en"
}

// normalizeLocale converts POSIX locale format to BCP 47.
// e.g., "zh_CN.UTF-8" -> "zh-CN", "en_US" -> "en-US"
func normalizeLocale(posix string) string {
	// Strip encoding suffix (.UTF-8, .utf8, etc.)
	for i, c := range posix {
		if c == '.' {
			posix = posix[:i]
			break
		}
	}
	// Replace underscore with hyphen
	result := make([]byte, len(posix))
	for i := range posix {
		if posix[i] == '_' {
			result[i] = '-'
		} else {
			result[i] = posix[i]
		}
	}
	return string(result)
}
