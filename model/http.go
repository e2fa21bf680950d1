package model

type StatsResponse struct {
	NumFiles   int  `json:"numFiles"`
	NumSamples int  `json:"numSamples"`
	Length     int  `json:"length"`
	Paired     bool `json:"paired"`
}

type SampleResponse struct {
	TokenizedSample
	Metadata *MidiMetadata `json:"metadata,omitempty"`
}

type PairResponse struct {
	TokenizedSamplePair
	MetadataA *MidiMetadata `json:"metadataA,omitempty"`
	MetadataB *MidiMetadata `json:"metadataB,omitempty"`
}
