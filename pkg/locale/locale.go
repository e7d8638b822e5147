package locale

import (
	"log"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

const (
	DefaultLang       = "en"
	DefaultLocalePath = "locales/"
)

var bundleInstance *i18n.Bundle

var localeLanguages = make(map[string]string)

func InitLang(localePath, defaultLang string) {
	if localePath == "" {
		localePath = DefaultLocalePath
	}
	if defaultLang == "" {
		defaultLang = DefaultLang
	}
	bundleInstance = LoadTranslations(localePath, defaultLang)
}

func GetBundle() *i18n.Bundle {
	if bundleInstance == nil {
		InitLang("", "")
	}
	return bundleInstance
}

func GetLanguages() map[string]string {
	return localeLanguages
}

// LoadTranslations reads every active.<lang>.toml file in localePath into
// a fresh bundle. A missing directory is fine; the compiled-in english
// defaults always work.
func LoadTranslations(localePath, defaultLang string) *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	localeLanguages = make(map[string]string)
	localeLanguages[defaultLang] = language.Make(defaultLang).String()

	files, err := os.ReadDir(localePath)
	if err == nil {
		re := regexp.MustCompile(`^active\.(?P<lang>.*)\.toml$`)
		for _, file := range files {
			match := re.FindStringSubmatch(file.Name())
			if match == nil {
				continue
			}
			fileLang := match[re.SubexpIndex("lang")]
			if _, err := bundle.LoadMessageFile(path.Join(localePath, file.Name())); err != nil {
				log.Println(err)
				continue
			}
			localeLanguages[fileLang] = language.Make(fileLang).String()
			log.Printf("[Locale] Loaded language: %s", fileLang)
		}
	}

	bundleInstance = bundle
	return bundle
}

// LocalizeMessage renders a message in the given language (empty means
// the compiled default), substituting templateData. Lookup failures fall
// back to the message's own default text.
func LocalizeMessage(message *i18n.Message, templateData map[string]interface{}, lang string) string {
	if lang == "" {
		lang = DefaultLang
	}
	localizer := i18n.NewLocalizer(GetBundle(), lang)
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: message,
		TemplateData:   templateData,
	})
	if err != nil {
		log.Printf("[Locale] Warning: %s", err)
	}

	// go-i18n extract escapes newlines in toml files
	return strings.ReplaceAll(msg, "\\n", "\n")
}
