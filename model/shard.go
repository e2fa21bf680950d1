package model

// ShardOverview describes one exported shard file.
type ShardOverview struct {
	Filename   string
	FirstPath  string
	LastPath   string
	NumSamples int
}

type MidiMetadata struct {
	Artist  string
	Release string
	Title   string
	Year    uint
}
