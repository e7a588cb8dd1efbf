package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"cartable/internal/domain/models/tree"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFiles embed.FS

// DefaultLocale is the language the upstream content is authored in.
const DefaultLocale = "fr"

// Catalog resolves the user-visible labels the tree synthesizes itself
// (fallback names, sentinel labels, the root banner).
type Catalog struct {
	localizer *goi18n.Localizer
	tag       language.Tag
}

// NewCatalog loads the embedded catalogs and selects locale.
// Unknown locales fall back to French.
func NewCatalog(locale string) (*Catalog, error) {
	bundle := goi18n.NewBundle(language.French)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.Glob(localeFiles, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list locale files: %w", err)
	}
	for _, path := range files {
		if _, err := bundle.LoadMessageFileFS(localeFiles, path); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.French
	}

	return &Catalog{
		localizer: goi18n.NewLocalizer(bundle, tag.String(), DefaultLocale),
		tag:       tag,
	}, nil
}

// MustCatalog is NewCatalog for tests and static wiring; it panics on a broken embed.
func MustCatalog(locale string) *Catalog {
	c, err := NewCatalog(locale)
	if err != nil {
		panic(err)
	}
	return c
}

// Language returns the tag the catalog was built for.
func (c *Catalog) Language() language.Tag {
	return c.tag
}

func (c *Catalog) t(id string, data map[string]interface{}) string {
	msg, err := c.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}

func kindSuffix(kind tree.Kind) string {
	switch kind {
	case tree.KindProgression:
		return "Progression"
	case tree.KindSequence:
		return "Sequence"
	case tree.KindSession:
		return "Session"
	case tree.KindResource:
		return "Resource"
	}
	return ""
}

// RootName labels the root node.
func (c *Catalog) RootName() string {
	return c.t("RootName", nil)
}

// RootLoadError is the banner shown when the progression list cannot be fetched.
func (c *Catalog) RootLoadError() string {
	return c.t("RootLoadError", nil)
}

// Fallback names a record whose title is empty, e.g. "Séance 42".
func (c *Catalog) Fallback(kind tree.Kind, id string) string {
	suffix := kindSuffix(kind)
	if suffix == "" {
		return id
	}
	return c.t("Fallback"+suffix, map[string]interface{}{"ID": id})
}

// Loading labels the sentinel seeded under a container of the given kind.
func (c *Catalog) Loading(kind tree.Kind) string {
	return c.t("Loading"+kindSuffix(kind), nil)
}

// LoadError labels the sentinel placed under a container whose fetch failed.
func (c *Catalog) LoadError(kind tree.Kind) string {
	return c.t("Error"+kindSuffix(kind), nil)
}
