// Package i18n loads the per-locale message catalogs and resolves the active
// language of each request.
package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the on-disk shape of locales/<code>.yaml.
// Messages are keyed by their source text.
type CatalogFile struct {
	Name      string            `yaml:"name"`
	Direction string            `yaml:"direction"`
	Messages  map[string]string `yaml:"messages"`
}

// Locale is one loaded catalog.
type Locale struct {
	Code      string
	Name      string
	Direction string
	Path      string
	messages  map[string]string
}

// LocaleInfo summarises a catalog for the translations page.
type LocaleInfo struct {
	Code       string
	Name       string
	Direction  string
	Path       string
	Total      int
	Translated int
	Percent    int
}

// Bundle holds every configured locale.
type Bundle struct {
	fallback string
	locales  map[string]*Locale
	order    []string
}

// LoadDir reads every *.yaml file in dir. fallback must be among them.
func LoadDir(dir, fallback string) (*Bundle, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("list locale files: %w", err)
	}
	b := &Bundle{fallback: fallback, locales: make(map[string]*Locale)}
	for _, path := range paths {
		file, err := ReadCatalog(path)
		if err != nil {
			return nil, err
		}
		code := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		b.add(code, path, file)
	}
	if _, ok := b.locales[fallback]; !ok {
		return nil, fmt.Errorf("default language %q has no catalog in %s", fallback, dir)
	}
	return b, nil
}

// NewBundle builds a bundle from in-memory catalogs.
func NewBundle(fallback string, catalogs map[string]CatalogFile) *Bundle {
	b := &Bundle{fallback: fallback, locales: make(map[string]*Locale)}
	for code, file := range catalogs {
		b.add(code, "", file)
	}
	return b
}

func (b *Bundle) add(code, path string, file CatalogFile) {
	dir := file.Direction
	if dir == "" {
		dir = "ltr"
	}
	msgs := file.Messages
	if msgs == nil {
		msgs = map[string]string{}
	}
	b.locales[code] = &Locale{Code: code, Name: file.Name, Direction: dir, Path: path, messages: msgs}
	b.order = append(b.order, code)
	sort.Strings(b.order)
}

// Default is the fallback language code.
func (b *Bundle) Default() string {
	return b.fallback
}

// Codes lists the configured language codes in sorted order.
func (b *Bundle) Codes() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Has reports whether code is a configured locale.
func (b *Bundle) Has(code string) bool {
	_, ok := b.locales[code]
	return ok
}

// Direction returns "rtl" or "ltr" for code.
func (b *Bundle) Direction(code string) string {
	if l, ok := b.locales[code]; ok {
		return l.Direction
	}
	return "ltr"
}

// T translates msgid into lang. Missing or empty entries return msgid.
func (b *Bundle) T(lang, msgid string) string {
	if l, ok := b.locales[lang]; ok {
		if s := l.messages[msgid]; s != "" {
			return s
		}
	}
	return msgid
}

// Info describes every locale in code order.
func (b *Bundle) Info() []LocaleInfo {
	out := make([]LocaleInfo, 0, len(b.order))
	for _, code := range b.order {
		l := b.locales[code]
		info := LocaleInfo{Code: l.Code, Name: l.Name, Direction: l.Direction, Path: l.Path, Total: len(l.messages)}
		for _, v := range l.messages {
			if v != "" {
				info.Translated++
			}
		}
		if info.Total > 0 {
			info.Percent = info.Translated * 100 / info.Total
		}
		out = append(out, info)
	}
	return out
}

// ReadCatalog parses one catalog file.
func ReadCatalog(path string) (CatalogFile, error) {
	var file CatalogFile
	raw, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("read catalog %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return file, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return file, nil
}

// FillEmpty sets msgstr for entries that already exist with an empty value.
// Unknown msgids are left out, matching how catalogs are extracted from the
// templates first. It returns the msgids that were filled.
func FillEmpty(path string, entries map[string]string) ([]string, error) {
	file, err := ReadCatalog(path)
	if err != nil {
		return nil, err
	}
	var filled []string
	for msgid, msgstr := range entries {
		current, ok := file.Messages[msgid]
		if !ok || current != "" || msgstr == "" {
			continue
		}
		file.Messages[msgid] = msgstr
		filled = append(filled, msgid)
	}
	sort.Strings(filled)
	if len(filled) == 0 {
		return nil, nil
	}
	out, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("encode catalog %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return nil, fmt.Errorf("write catalog %s: %w", path, err)
	}
	return filled, nil
}
