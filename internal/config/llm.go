package config

import "os"

// LLMConfig holds the hosted backend address and credentials plus the
// language pair used by round-trip evaluation. The self-hosted endpoint is
// not configured here: it lives in the settings store so it can be changed
// live.
type LLMConfig struct {
	HostedBaseURL    string
	HostedAPIKey     string
	SourceLanguage   string
	PivotLanguage    string
	TranslationModel string
	JudgeModel       string
}

func NewLLMConfig() *LLMConfig {
	cfg := &LLMConfig{
		HostedBaseURL:    os.Getenv("OPENROUTER_API_URL"),
		HostedAPIKey:     os.Getenv("OPENROUTER_API_KEY"),
		SourceLanguage:   os.Getenv("SOURCE_LANGUAGE"),
		PivotLanguage:    os.Getenv("PIVOT_LANGUAGE"),
		TranslationModel: os.Getenv("TRANSLATION_MODEL"),
		JudgeModel:       os.Getenv("JUDGE_MODEL"),
	}
	if cfg.HostedBaseURL == "" {
		cfg.HostedBaseURL = "https://openrouter.ai/api"
	}
	if cfg.SourceLanguage == "" {
		cfg.SourceLanguage = "Dutch"
	}
	if cfg.PivotLanguage == "" {
		cfg.PivotLanguage = "English"
	}
	if cfg.TranslationModel == "" {
		cfg.TranslationModel = "openai/gpt-4.1"
	}
	if cfg.JudgeModel == "" {
		cfg.JudgeModel = "openai/gpt-4.1"
	}
	return cfg
}
