package model

// Exit codes returned by the tool.
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitNetworkError      = 2
	ExitInvalidInput      = 3
	ExitMissingDependency = 4
)

// Subtitle file formats the tool can write.
const (
	SubFormatSRT = "srt"
	SubFormatVTT = "vtt"
)
