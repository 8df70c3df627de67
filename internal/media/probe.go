// internal/media/probe.go
package media

import (
	"github.com/floostack/transcoder/ffmpeg"

	"github.com/evostudios/StableScraper/internal/utils"
)

// FfprobeProber answers stream questions via ffprobe.
type FfprobeProber struct {
	ffmpegPath  string
	ffprobePath string
}

// NewFfprobeProber creates a prober around the configured binaries.
func NewFfprobeProber(ffmpegPath, ffprobePath string) *FfprobeProber {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FfprobeProber{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// HasAudioStream reports whether the file at path contains at least one
// audio stream.
func (p *FfprobeProber) HasAudioStream(path string) (bool, error) {
	metadata, err := ffmpeg.
		New(&ffmpeg.Config{
			FfmpegBinPath:  p.ffmpegPath,
			FfprobeBinPath: p.ffprobePath,
		}).
		Input(path).
		GetMetadata()
	if err != nil {
		return false, utils.WrapError(utils.ErrCodeNormalizationFailed, "ffprobe inspection failed", err).
			WithContext("path", path)
	}

	for _, stream := range metadata.GetStreams() {
		if stream.GetCodecType() == "audio" {
			return true, nil
		}
	}
	return false, nil
}
