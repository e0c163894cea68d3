package pantryassistant

// Config is decoded from the environment with envdecode.
type Config struct {
	APIURL     string `env:"API_URL,default=http://localhost:8000"`
	SOCKSProxy string `env:"SOCKS_PROXY"`

	Voice VoiceConfig
	Share ShareConfig

	CommandLogDir string `env:"COMMAND_LOG_DIR,default=logs"`
}

// VoiceConfig selects the external speech engines. An empty CaptureCommand
// means speech capture is unavailable and the client runs text-only.
type VoiceConfig struct {
	CaptureCommand string  `env:"VOICE_CAPTURE_CMD"`
	SpeakCommand   string  `env:"VOICE_SPEAK_CMD,default=espeak-ng"`
	Language       string  `env:"VOICE_LANG,default=en-US"`
	Rate           float64 `env:"VOICE_RATE,default=0.9"`
}

type ShareConfig struct {
	SlackWebhookURL string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `env:"SLACK_CHANNEL,default=#groceries"`
}
