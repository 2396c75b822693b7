package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Translations map[string]string

var (
	locales       = make(map[string]Translations)
	defaultLocale = "en"
	mu            sync.RWMutex
)

// LoadTranslations reads <localePath>/<locale>/errors.yaml for every locale
// directory. Directories without the file are skipped.
func LoadTranslations(localePath, fallback string) error {
	mu.Lock()
	defer mu.Unlock()

	entries, err := os.ReadDir(localePath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		filePath := filepath.Join(localePath, locale, "errors.yaml")

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		var catalog struct {
			Errors Translations `yaml:"ERRORS"`
		}
		if err := yaml.Unmarshal(data, &catalog); err != nil {
			return fmt.Errorf("failed to parse %s: %w", filePath, err)
		}

		locales[locale] = catalog.Errors
	}

	if fallback != "" {
		defaultLocale = fallback
	}
	return nil
}

// Resolve picks the first supported locale from an Accept-Language header.
func Resolve(acceptLanguage string) string {
	mu.RLock()
	defer mu.RUnlock()

	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" {
			continue
		}
		if _, ok := locales[tag]; ok {
			return tag
		}
		base := strings.SplitN(tag, "-", 2)[0]
		if _, ok := locales[base]; ok {
			return base
		}
	}
	return defaultLocale
}

// Translate looks key up in locale, then in the default locale. Unknown keys
// are returned as is. Args are applied with fmt.Sprintf when present.
func Translate(locale, key string, args ...any) string {
	mu.RLock()
	defer mu.RUnlock()

	msg, ok := lookup(locale, key)
	if !ok && locale != defaultLocale {
		msg, ok = lookup(defaultLocale, key)
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func lookup(locale, key string) (string, bool) {
	trans, ok := locales[locale]
	if !ok {
		return "", false
	}
	val, ok := trans[key]
	return val, ok
}
