// Package config provides layered configuration resolution.
//
// Values merge with clear precedence:
//  1. Environment variables (highest priority)
//  2. Local config (.agentflow.yaml in the project directory)
//  3. Global config (~/.config/agentflow/config.yaml)
//  4. Built-in defaults (lowest priority)
//
// Each resolved value tracks its source, so tooling can answer "where did
// this setting come from".
//
// # Basic Usage
//
//	settings, err := config.LoadSettings(".")
//	fmt.Println(settings.BaseURL)
//
// Or work with raw keys:
//
//	resolver := config.NewResolver(config.ResolverConfig{
//	    EnvPrefix: "AGENTFLOW_",
//	    Defaults:  config.DefaultSettings(),
//	})
//	cfg := resolver.Resolve()
//	fmt.Println(cfg.Get("base_url"), cfg.Source("base_url"))
//
// # Environment Variables
//
// With EnvPrefix "AGENTFLOW_", key "base_url" maps to AGENTFLOW_BASE_URL.
// OLLAMA_BASE_URL is additionally honored for the backend base URL when
// no higher-priority source sets it.
package config
