package ffmpegtemplate

import (
	"fmt"
	"strings"
)

// VideoBuilder builds a full-file video re-encode template: codec, rate
// control, preset, and an optional scale filter. It carries none of the
// chunk/time-range trimming a multi-chunk transcoding pipeline would need —
// the Encode Manager hands each job's whole source to one process.
type VideoBuilder struct {
	codec      string
	crf        int
	bitrate    string
	preset     string
	resolution string
	frameRate  int
	priority   int
	extraArgs  []string
}

// NewVideoBuilder creates a video template builder with common defaults.
func NewVideoBuilder() *VideoBuilder {
	return &VideoBuilder{
		codec:    "libx264",
		crf:      23,
		preset:   "medium",
		priority: PriorityNormal,
	}
}

func (v *VideoBuilder) SetCodec(codec string) *VideoBuilder     { v.codec = codec; return v }
func (v *VideoBuilder) SetCRF(crf int) *VideoBuilder            { v.crf = crf; return v }
func (v *VideoBuilder) SetBitrate(bitrate string) *VideoBuilder { v.bitrate = bitrate; return v }
func (v *VideoBuilder) SetPreset(preset string) *VideoBuilder   { v.preset = preset; return v }
func (v *VideoBuilder) SetResolution(res string) *VideoBuilder  { v.resolution = res; return v }
func (v *VideoBuilder) SetFrameRate(fps int) *VideoBuilder      { v.frameRate = fps; return v }
func (v *VideoBuilder) SetPriority(p int) *VideoBuilder         { v.priority = p; return v }
func (v *VideoBuilder) AddExtraArgs(args ...string) *VideoBuilder {
	v.extraArgs = append(v.extraArgs, args...)
	return v
}

// Template returns the shell command template for this profile.
func (v *VideoBuilder) Template() string {
	args := []string{"$FFMPEG", "-i", "$INPUT"}

	if v.resolution != "" {
		args = append(args, "-vf", fmt.Sprintf("scale=%s", v.resolution))
	}

	args = append(args, "-c:v", v.codec)
	if v.bitrate != "" {
		args = append(args, "-b:v", v.bitrate)
	} else if v.crf >= 0 {
		args = append(args, "-crf", fmt.Sprintf("%d", v.crf))
	}
	if v.preset != "" {
		args = append(args, "-preset", v.preset)
	}
	if v.frameRate > 0 {
		args = append(args, "-r", fmt.Sprintf("%d", v.frameRate))
	}

	args = append(args, "-c:a", "copy")
	args = append(args, v.extraArgs...)
	args = append(args, "-y", "$OUTPUT")

	return strings.Join(args, " ")
}

func (v *VideoBuilder) Priority() int { return v.priority }
