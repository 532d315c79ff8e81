// Package config also documents the YAML layout a pool host reads.
//
// # File Layout
//
//	name: arena
//	pool:
//	  auto_initialize: true
//	  prewarm_count: 8
//	  deactivate_on_return: true
//	catalog:
//	  - key: projectiles
//	    entries:
//	      - key: bullet
//	        prototype: buffer
//	        size: 256
//	      - prototype: record   # key defaults to "record-16"
//	        size: 16
//	logging:
//	  level: info
//	metrics:
//	  enabled: true
//	  address: ":9090"
//
// # Loading
//
// Load and Save round-trip the file with gopkg.in/yaml.v3 and substitute
// ${VAR_NAME} references from the environment:
//
//	cfg := config.Default()
//	err := config.Load("pool.yaml", cfg)
//
// LoadViper reads the same file through Viper and additionally applies
// STOCKPILE_* environment overrides, with "." in a key replaced by "_":
//
//	STOCKPILE_POOL_PREWARM_COUNT=32 stockpile soak --config pool.yaml
//
// # Validation
//
// Validate checks ranges only. Catalog cleanup (dropping entries without a
// prototype, defaulting keys, ordering) is done by the catalog package when
// the pool manifest is built.
package config
