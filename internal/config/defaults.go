package config

const (
	defaultConfigPath = "~/.config/voicedecoder/config.toml"
	projectConfigName = "voicedecoder.toml"

	defaultStateDir = "~/.local/share/voicedecoder"
	defaultLogDir   = "~/.local/share/voicedecoder/logs"
	// openai-whisper caches weights here unless told otherwise.
	defaultModelDir = "~/.cache/whisper"

	defaultModel            = "medium"
	defaultSilenceThreshold = 1.2
	defaultServerBind       = "127.0.0.1:7860"
)

// DefaultDirectFormats lists the container extensions the recognizer reads
// without a conversion pass.
var DefaultDirectFormats = []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".m4a"}

// Environment overrides applied after the file is decoded.
const (
	EnvFFmpeg      = "VOICEDECODER_FFMPEG"
	EnvFFprobe     = "VOICEDECODER_FFPROBE"
	EnvWhisper     = "VOICEDECODER_WHISPER"
	EnvModelDir    = "VOICEDECODER_MODEL_DIR"
	EnvServerToken = "VOICEDECODER_SERVER_TOKEN"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	formats := make([]string, len(DefaultDirectFormats))
	copy(formats, DefaultDirectFormats)
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			ModelDir: defaultModelDir,
			LogDir:   defaultLogDir,
		},
		Tools: Tools{
			FFmpeg:    "ffmpeg",
			FFprobe:   "ffprobe",
			Whisper:   "whisper",
			NvidiaSMI: "nvidia-smi",
		},
		Transcription: Transcription{
			Model:            defaultModel,
			DirectFormats:    formats,
			SilenceThreshold: defaultSilenceThreshold,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
	}
}
