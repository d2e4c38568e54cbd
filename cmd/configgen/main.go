package main

import (
	"flag"
	"log"

	"github.com/assetlink/assetlink/internal/config"
)

func main() {
	output := flag.String("output", "assetlink.toml", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "assetlink.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		if _, err := config.LoadClientConfig(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated client config at %s", *input)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote client config template to %s", *output)
}
