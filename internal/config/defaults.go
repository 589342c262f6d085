package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Timezone:     "Asia/Singapore",
			DefaultWeeks: 3,
			KeywordID:    2,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			MaxPreviewLimit: 200,
		},
		Flows: FlowsConfig{
			SearchTopics: []string{},
		},
	}
}
