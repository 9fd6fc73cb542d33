package acquire

import "github.com/willibrandon/gonuget-acquire/feed"

// MagicUnlistingDate is the sentinel publish date a feed reports for an
// unlisted package. Defined once in feed.MagicUnlistingDate, since the
// metadata parser needs it to compute PackageMetadata.Unlisted directly;
// this alias keeps the name where the data-model description expects it.
var MagicUnlistingDate = feed.MagicUnlistingDate

// IsLocalSentinel reports whether downloadURL is the local adapter's
// "no download required" sentinel for name (downloadURL == name). A
// dedicated LocalFile(path) variant would be the better design; this
// helper exists only to keep every sentinel comparison in one place
// until that migration happens.
func IsLocalSentinel(name, downloadURL string) bool {
	return downloadURL == name
}
