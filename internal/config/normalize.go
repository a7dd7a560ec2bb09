package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnvOverrides()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{EnvFFmpeg, &c.Tools.FFmpeg},
		{EnvFFprobe, &c.Tools.FFprobe},
		{EnvWhisper, &c.Tools.Whisper},
		{EnvModelDir, &c.Paths.ModelDir},
		{EnvServerToken, &c.Server.Token},
	}
	for _, o := range overrides {
		if value, ok := os.LookupEnv(o.env); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ModelDir) == "" {
		c.Paths.ModelDir = defaultModelDir
	}
	if c.Paths.ModelDir, err = expandPath(c.Paths.ModelDir); err != nil {
		return fmt.Errorf("paths.model_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() error {
	defaults := Default().Tools
	tools := []struct {
		key      string
		target   *string
		fallback string
	}{
		{"tools.ffmpeg", &c.Tools.FFmpeg, defaults.FFmpeg},
		{"tools.ffprobe", &c.Tools.FFprobe, defaults.FFprobe},
		{"tools.whisper", &c.Tools.Whisper, defaults.Whisper},
		{"tools.nvidia_smi", &c.Tools.NvidiaSMI, defaults.NvidiaSMI},
	}
	for _, tool := range tools {
		value := strings.TrimSpace(*tool.target)
		if value == "" {
			value = tool.fallback
		}
		if strings.ContainsAny(value, `/\`) || strings.HasPrefix(value, "~") {
			expanded, err := expandPath(value)
			if err != nil {
				return fmt.Errorf("%s: %w", tool.key, err)
			}
			value = expanded
		}
		*tool.target = value
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.ToLower(strings.TrimSpace(c.Transcription.Model))
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultModel
	}
	c.Transcription.Language = strings.TrimSpace(c.Transcription.Language)
	if c.Transcription.SilenceThreshold == 0 {
		c.Transcription.SilenceThreshold = defaultSilenceThreshold
	}
	c.Transcription.DirectFormats = normalizeExtensions(c.Transcription.DirectFormats)
	if len(c.Transcription.DirectFormats) == 0 {
		c.Transcription.DirectFormats = append([]string(nil), DefaultDirectFormats...)
	}
}

// normalizeExtensions lowercases, adds the leading dot, and drops duplicates.
func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
