package archivehandler

import "errors"

// ErrExtraction reports a failure unpacking or installing an archive.
// acquire wraps this the same way it wraps its own sentinel errors, but
// archivehandler cannot import acquire (acquire imports archivehandler),
// so it keeps its own copy.
var ErrExtraction = errors.New("archivehandler: archive extraction error")
