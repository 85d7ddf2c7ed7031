package downloader

import "time"

// Region identifies one of the firmware image regions the negotiation
// sequence transfers, in order.
type Region int

const (
	// RegionHeadArea is the image head area, sent to offset 0
	RegionHeadArea Region = iota

	// RegionAuxcode is the auxiliary code region
	RegionAuxcode

	// RegionParamArea is the parameter (bootreg) area
	RegionParamArea

	// RegionBoot is the full boot image, sent to offset 0
	RegionBoot
)

func (r Region) String() string {
	switch r {
	case RegionHeadArea:
		return "head area"
	case RegionAuxcode:
		return "auxcode"
	case RegionParamArea:
		return "param area"
	case RegionBoot:
		return "boot image"
	default:
		return "unknown region"
	}
}

// Progress contains information about a running region transfer.
// Passed to ProgressCallback after each acknowledged data frame.
type Progress struct {
	// Region is the region being transferred
	Region Region

	// BytesSent counts acknowledged image bytes (padding excluded)
	BytesSent int

	// TotalBytes is the unpadded region size
	TotalBytes int

	// Percentage is the completion percentage (0.0 to 100.0)
	Percentage float64

	// Elapsed is the time since the region transfer started
	Elapsed time.Duration
}

// ProgressCallback is called after each acknowledged data frame and once
// more when the tail frame is acknowledged. Implementations should return
// quickly: the transfer blocks while the callback runs.
type ProgressCallback func(Progress)
