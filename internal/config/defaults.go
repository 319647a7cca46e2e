package config

const (
	// DefaultAIModel is the analysis model used when none is configured.
	DefaultAIModel = "claude-sonnet-4-5"
	// DefaultAIEndpoint is the Anthropic Messages API endpoint.
	DefaultAIEndpoint = "https://api.anthropic.com/v1/messages"
	// DefaultAPIKeyEnv is the environment variable read for the API key.
	DefaultAPIKeyEnv = "ANTHROPIC_API_KEY"
	// DefaultLogTailLines is the default --tail for pod log streams.
	DefaultLogTailLines = 100
)

// GetDefaultConfig returns the built-in configuration, before any user
// or project overlay is applied.
func GetDefaultConfig() PodscopeConfig {
	return PodscopeConfig{
		GlobalSettings: GlobalSettings{
			LogLevel: "info",
		},
		AI: AIConfig{
			Model:     DefaultAIModel,
			Endpoint:  DefaultAIEndpoint,
			MaxTokens: 1024,
			APIKeyEnv: DefaultAPIKeyEnv,
		},
		Logs: LogsConfig{
			TailLines: DefaultLogTailLines,
			Follow:    boolPtr(true),
		},
	}
}

func boolPtr(b bool) *bool { return &b }
