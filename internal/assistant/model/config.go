package model

// ================ Config ================

// ExtractorModelConfig drives the LLM fallback tier of the numeric extractor.
type ExtractorModelConfig struct {
	Model       string  `envconfig:"EXTRACTOR_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"EXTRACTOR_MAX_TOKENS" default:"50"`
	Temperature float32 `envconfig:"EXTRACTOR_TEMPERATURE" default:"0.1"`
}

// IntentModelConfig drives the intent classifier.
type IntentModelConfig struct {
	Model       string  `envconfig:"INTENT_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"INTENT_MAX_TOKENS" default:"20"`
	Temperature float32 `envconfig:"INTENT_TEMPERATURE" default:"0.1"`
}

// SessionConfig covers per-session behaviour of the engine.
type SessionConfig struct {
	// Region selects the electricity emission factor; unknown keys fall back
	// to the global default factor.
	Region string `envconfig:"REGION" default:"default"`
	// LogFile is the array-valued JSON file completed sessions are appended to.
	LogFile string `envconfig:"SESSION_LOG_FILE" default:"sessions_log.json"`
	// TranscriptTTL bounds how long Redis keeps a session transcript.
	TranscriptTTL string `envconfig:"TRANSCRIPT_TTL" default:"24h"`
}
