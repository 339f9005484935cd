package ibmmq

import "bytes"

// xmlMarker is the leading byte sequence a payload normalizer looks for
// when trimming protocol framing, per spec.md §9 "XML-payload extraction
// (optional)".
var xmlMarker = []byte("<?xml")

// Normalizer trims any bytes preceding the payload, used to strip
// transport framing (e.g. RFH2 headers) ahead of the XML body. The default
// Identity normalizer passes the payload through unchanged.
type Normalizer func(payload []byte) []byte

// Identity is the default normalizer: no transformation.
func Identity(payload []byte) []byte { return payload }

// ExtractXML trims any leading bytes before the first "<?xml" declaration.
// If no marker is found, the payload is returned unchanged — the source
// repo's behavior when a message carries no XML framing to strip.
func ExtractXML(payload []byte) []byte {
	idx := bytes.Index(payload, xmlMarker)
	if idx <= 0 {
		return payload
	}
	return payload[idx:]
}

// normalizerFor selects the payload normalizer for a receiver_mode value,
// per SPEC_FULL.md §11's mode-selector supplement.
func normalizerFor(receiverMode string) Normalizer {
	switch receiverMode {
	case "rfh2":
		return ExtractXML
	default:
		return Identity
	}
}
