package protocol

import "errors"

// MaxLineBytes is the default inbound frame limit in bytes, terminator
// included. A connection that exceeds it receives MaxLengthErrorText
// rather than being disconnected.
const MaxLineBytes = 1024

// ErrLineTooLong describes an inbound line that exceeds its configured
// maximum length. The chatserver frame reader does not return it; it
// reports that case through its tooLong result instead.
var ErrLineTooLong = errors.New("protocol: line exceeds maximum length")

// MaxLengthErrorText is the exact wire text a connection handler emits
// when an inbound line exceeds the maximum length.
const MaxLengthErrorText = "ERROR max length reached"
