package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/stockpile/pkg/config"
)

// ExampleDefault demonstrates the default configuration.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Auto initialize: %v\n", cfg.Pool.AutoInitialize)
	fmt.Printf("Deactivate on return: %v\n", cfg.Pool.DeactivateOnReturn)
	fmt.Printf("Soak rounds: %d\n", cfg.Soak.Rounds)

	// Output:
	// Auto initialize: true
	// Deactivate on return: true
	// Soak rounds: 1000
}

// ExampleConfig_Validate shows how to validate a configuration before use.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Pool.PrewarmCount = 16
	cfg.Catalog = []config.CategoryConfig{
		{Key: "projectiles", Entries: []config.EntryConfig{{Key: "bullet", Prototype: "buffer", Size: 256}}},
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	fmt.Println("Configuration is valid!")

	cfg.Pool.PrewarmCount = -1
	fmt.Println(cfg.Validate())

	// Output:
	// Configuration is valid!
	// validation: pool.prewarm_count cannot be negative
}

// ExampleParse demonstrates decoding YAML over the defaults.
func ExampleParse() {
	cfg := config.Default()
	yamlData := []byte(`
name: arena
pool:
  prewarm_count: 4
catalog:
  - key: fx
    entries:
      - prototype: buffer
        size: 64
`)
	if err := config.Parse(yamlData, cfg); err != nil {
		log.Fatal(err)
	}

	fmt.Println(cfg.Name, cfg.Pool.PrewarmCount, cfg.Pool.DeactivateOnReturn, cfg.EntryCount())

	// Output:
	// arena 4 true 1
}
