package ffmpegtemplate

import (
	"fmt"
	"strings"
)

// AudioBuilder builds an audio-only re-encode template.
type AudioBuilder struct {
	codec      string
	bitrate    string
	sampleRate int
	channels   int
	priority   int
}

// NewAudioBuilder creates an audio template builder with common defaults.
func NewAudioBuilder() *AudioBuilder {
	return &AudioBuilder{
		codec:      "libopus",
		bitrate:    "128k",
		sampleRate: 48000,
		channels:   2,
		priority:   PriorityNormal,
	}
}

func (a *AudioBuilder) SetCodec(codec string) *AudioBuilder   { a.codec = codec; return a }
func (a *AudioBuilder) SetBitrate(bitrate string) *AudioBuilder {
	a.bitrate = bitrate
	return a
}
func (a *AudioBuilder) SetSampleRate(rate int) *AudioBuilder { a.sampleRate = rate; return a }
func (a *AudioBuilder) SetChannels(channels int) *AudioBuilder {
	a.channels = channels
	return a
}
func (a *AudioBuilder) SetPriority(p int) *AudioBuilder { a.priority = p; return a }

// Template returns the shell command template for this profile.
func (a *AudioBuilder) Template() string {
	args := []string{"$FFMPEG", "-i", "$INPUT", "-vn"}

	args = append(args, "-c:a", a.codec)
	if a.bitrate != "" {
		args = append(args, "-b:a", a.bitrate)
	}
	if a.sampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", a.sampleRate))
	}
	if a.channels > 0 {
		args = append(args, "-ac", fmt.Sprintf("%d", a.channels))
	}

	args = append(args, "-y", "$OUTPUT")
	return strings.Join(args, " ")
}

func (a *AudioBuilder) Priority() int { return a.priority }
