package config

import "encodemgr/ffmpegtemplate"

// defaultProfiles returns the built-in encoder profiles, generated through
// ffmpegtemplate rather than written out as literal command strings.
func defaultProfiles() []EncodeProfile {
	h264 := ffmpegtemplate.NewVideoBuilder().
		SetCodec("libx264").
		SetCRF(23).
		SetPreset("medium")

	opus := ffmpegtemplate.NewAudioBuilder().
		SetCodec("libopus").
		SetBitrate("128k")

	return []EncodeProfile{
		{
			Name:   "h264",
			Cmd:    h264.Template(),
			Suffix: ".mp4",
			Rate:   2.0,
		},
		{
			Name:   "audio-only",
			Cmd:    opus.Template(),
			Suffix: ".opus",
			Rate:   1.5,
		},
	}
}
