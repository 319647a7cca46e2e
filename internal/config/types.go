package config

// PodscopeConfig is the top-level configuration structure for podscope.
type PodscopeConfig struct {
	GlobalSettings GlobalSettings `yaml:"globalSettings"`
	AI             AIConfig       `yaml:"ai"`
	Logs           LogsConfig     `yaml:"logs"`
	Kube           KubeConfig     `yaml:"kube"`
}

// GlobalSettings holds application-wide knobs.
type GlobalSettings struct {
	LogLevel string `yaml:"logLevel,omitempty"` // "debug", "info", "warn", "error"
}

// AIConfig configures the analysis service client.
type AIConfig struct {
	Model     string `yaml:"model,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	MaxTokens int    `yaml:"maxTokens,omitempty"`
	// APIKeyEnv names the environment variable holding the API key.
	// The key itself is never stored in config files.
	APIKeyEnv string `yaml:"apiKeyEnv,omitempty"`
}

// LogsConfig sets the defaults for the pod log stream.
type LogsConfig struct {
	TailLines int64 `yaml:"tailLines,omitempty"`
	// Follow is a pointer so an explicit "follow: false" overlay can be
	// told apart from an absent field during merging.
	Follow *bool `yaml:"follow,omitempty"`
}

// FollowEnabled returns the follow flag, defaulting to true.
func (l LogsConfig) FollowEnabled() bool {
	if l.Follow == nil {
		return true
	}
	return *l.Follow
}

// KubeConfig configures kubeconfig discovery.
type KubeConfig struct {
	// ConfigDir is the directory scanned for kubeconfig files.
	// Defaults to ~/.kube.
	ConfigDir string `yaml:"configDir,omitempty"`
}
