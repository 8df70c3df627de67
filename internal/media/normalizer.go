// internal/media/normalizer.go
package media

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/floostack/transcoder/ffmpeg"

	"github.com/evostudios/StableScraper/internal/utils"
)

// Prober inspects a media file's streams.
type Prober interface {
	HasAudioStream(path string) (bool, error)
}

// AudioNormalizer extracts a video's audio track to a 16 kHz mono MP3,
// the layout downstream transcription expects.
type AudioNormalizer struct {
	ffmpegPath  string
	ffprobePath string
	prober      Prober
	logger      utils.Logger
}

// NewAudioNormalizer creates a normalizer around the ffmpeg and ffprobe
// binaries. A nil prober disables the audio-stream checks.
func NewAudioNormalizer(ffmpegPath, ffprobePath string, prober Prober, logger utils.Logger) *AudioNormalizer {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = utils.NewLogger()
	}
	return &AudioNormalizer{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		prober:      prober,
		logger:      logger,
	}
}

// Normalize transcodes videoPath's audio track and returns the path of
// the resulting MP3, which sits next to the input with the extension
// swapped.
func (n *AudioNormalizer) Normalize(ctx context.Context, videoPath string) (string, error) {
	if n.prober != nil {
		hasAudio, err := n.prober.HasAudioStream(videoPath)
		if err != nil {
			return "", err
		}
		if !hasAudio {
			return "", utils.NewError(utils.ErrCodeNormalizationFailed, "video carries no audio stream").
				WithContext("path", videoPath)
		}
	}

	outputPath := audioOutputPath(videoPath)

	skipVideo := true
	overwrite := true
	audioRate := 16000
	audioChannels := 1
	var quality uint32

	opts := &ffmpeg.Options{
		SkipVideo:     &skipVideo,
		Overwrite:     &overwrite,
		AudioRate:     &audioRate,
		AudioChannels: &audioChannels,
		Qscale:        &quality,
	}

	n.logger.WithFields(map[string]interface{}{
		"input":  videoPath,
		"output": outputPath,
	}).Debug("normalizing audio")

	// With progress reporting disabled, Start blocks until ffmpeg
	// exits and returns its error.
	_, err := ffmpeg.
		New(&ffmpeg.Config{
			FfmpegBinPath:  n.ffmpegPath,
			FfprobeBinPath: n.ffprobePath,
		}).
		Input(videoPath).
		Output(outputPath).
		WithContext(&ctx).
		Start(opts)
	if err != nil {
		return "", utils.WrapError(utils.ErrCodeNormalizationFailed, "ffmpeg transcode failed", err).
			WithContext("input", videoPath)
	}

	if n.prober != nil {
		hasAudio, err := n.prober.HasAudioStream(outputPath)
		if err != nil {
			return "", err
		}
		if !hasAudio {
			return "", utils.NewError(utils.ErrCodeNormalizationFailed, "normalized output carries no audio stream").
				WithContext("path", outputPath)
		}
	}

	return outputPath, nil
}

// audioOutputPath swaps the input's extension for .mp3.
func audioOutputPath(videoPath string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
}
