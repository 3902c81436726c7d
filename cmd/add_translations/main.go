package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"ajei/internal/config"
	"ajei/internal/i18n"
)

// branchTranslations fills the branches and brands sections of the landing page.
var branchTranslations = map[string]map[string]string{
	"ar": {
		"الفروع":            "الفروع",
		"العلامات التجارية": "العلامات التجارية",
	},
	"en": {
		"الفروع":            "Branches",
		"العلامات التجارية": "Our Brands",
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	dir := flag.String("dir", cfg.Site.LocaleDir, "directory holding <lang>.yaml catalogs")
	flag.Parse()

	for _, lang := range []string{"ar", "en"} {
		path := filepath.Join(*dir, lang+".yaml")
		filled, err := i18n.FillEmpty(path, branchTranslations[lang])
		if err != nil {
			log.Fatalf("Failed to update %s: %v", path, err)
		}
		fmt.Printf("Updated %s (%d entries)\n", path, len(filled))
		for _, msgid := range filled {
			fmt.Printf("  %s\n", msgid)
		}
	}
	fmt.Println("Translations added! Restart the server to load them.")
}
