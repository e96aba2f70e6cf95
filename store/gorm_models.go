package store

// recordedRow is the GORM model backing the recorded table. Field names
// map to snake_case columns via GORM's default naming strategy.
type recordedRow struct {
	ID                 int64 `gorm:"primaryKey"`
	Name               string
	Description        string
	Extended           string
	VideoType          string
	VideoResolution    string
	VideoStreamContent string
	VideoComponentType string
	AudioSamplingRate  string
	AudioComponentType string
	ChannelID          string
	Genre1             string
	Genre2             string
	Genre3             string
	SubGenre1          string
	SubGenre2          string
	SubGenre3          string
	DurationSeconds    float64
}

func (recordedRow) TableName() string { return "recorded" }

func (r recordedRow) toRecord() *Record {
	return &Record{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		Extended:           r.Extended,
		VideoType:          r.VideoType,
		VideoResolution:    r.VideoResolution,
		VideoStreamContent: r.VideoStreamContent,
		VideoComponentType: r.VideoComponentType,
		AudioSamplingRate:  r.AudioSamplingRate,
		AudioComponentType: r.AudioComponentType,
		ChannelID:          r.ChannelID,
		Genre1:             r.Genre1,
		Genre2:             r.Genre2,
		Genre3:             r.Genre3,
		SubGenre1:          r.SubGenre1,
		SubGenre2:          r.SubGenre2,
		SubGenre3:          r.SubGenre3,
		DurationSeconds:    r.DurationSeconds,
	}
}

// videoFileRow is the GORM model backing the video_file table.
type videoFileRow struct {
	ID   int64 `gorm:"primaryKey"`
	Path string
}

func (videoFileRow) TableName() string { return "video_file" }

func (v videoFileRow) toVideo() *Video {
	return &Video{ID: v.ID, Path: v.Path}
}
