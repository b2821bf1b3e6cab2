package featureflag

type Flag string

const (
	// Decodes the encoded output file and compares it with the map content.
	FlagVerifyRoundTrip Flag = "VERIFY_ROUND_TRIP"

	// Keeps the quadtree as built by inserts instead of collapsing
	// underfilled branches.
	FlagDisableBalance Flag = "DISABLE_BALANCE"

	FlagDisableFrameStream Flag = "DISABLE_FRAME_STREAM"
	FlagDisableSnapshot    Flag = "DISABLE_SNAPSHOT"
)

var knownFlags = map[Flag]struct{}{
	FlagVerifyRoundTrip:    {},
	FlagDisableBalance:     {},
	FlagDisableFrameStream: {},
	FlagDisableSnapshot:    {},
}
