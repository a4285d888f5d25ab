/*
Package config loads bus settings from files and the environment.

# Overview

Settings captures the knobs a deployment may want to change without touching
code: how handler failures affect dispatch, how subscription ids are
generated, whether panics are recovered, and which observability features are
enabled.

	s := config.Default()
	s.DispatchPolicy = "continue"

# File Loading

Load settings from YAML or JSON files. Keys that are absent keep their
default values:

	s, err := config.FromFile("newsflash.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	// Or load from bytes
	s, err = config.FromYAML(yamlBytes)
	s, err = config.FromJSON(jsonBytes)

A YAML file looks like:

	dispatch_policy: continue
	id_scheme: uuid
	recover_panics: true
	metrics: true
	tracing: false
	log_level: debug

# Environment Overrides

FromEnv overlays NEWSFLASH_* variables on top of existing settings:

	NEWSFLASH_DISPATCH_POLICY=abort
	NEWSFLASH_ID_SCHEME=counter
	NEWSFLASH_RECOVER_PANICS=false
	NEWSFLASH_METRICS=true
	NEWSFLASH_TRACING=true
	NEWSFLASH_LOG_LEVEL=info

Variables that are unset leave the corresponding field untouched.
*/
package config
