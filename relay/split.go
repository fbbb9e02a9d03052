package relay

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"a2apipe/internal/metrics"
)

// RecoveryErrorText is returned by Recover when no text can be salvaged from
// a blob of relayed envelopes. Surfacing an explicit error string keeps
// downstream stages from ever treating raw protocol JSON as prose, which
// would silently corrupt their output.
const RecoveryErrorText = "ERROR: Unable to extract research content from message. Please provide research text directly."

// boundarySentinel marks object boundaries during splitting. Three characters,
// not expected to occur inside legitimate envelope values.
const boundarySentinel = "|||"

// textFieldPattern is the last-resort lenient scan for text values. It is not
// a parser; it misses escaped quotes and matches only simple string fields.
var textFieldPattern = regexp.MustCompile(`"text":\s*"([^"]+)"`)

// Split breaks a blob that may contain multiple JSON objects concatenated
// without separators into individual candidate strings. This happens when an
// upstream relay forwards raw envelopes instead of extracted text: the
// envelopes, joined character by character, produce runs of adjacent "}{"
// boundaries.
//
// The split only activates when the blob contains the statusUpdate marker, a
// cheap guard against mangling ordinary text. It is a heuristic rather than a
// JSON tokenizer: order-preserving and correct as long as no legitimate
// string value inside an envelope contains the exact substring "}{".
func Split(blob string) []string {
	if !strings.Contains(blob, StatusUpdateMarker) {
		return []string{blob}
	}
	return strings.Split(strings.ReplaceAll(blob, "}{", "}"+boundarySentinel+"{"), boundarySentinel)
}

// Recoverer re-extracts text from blobs of relayed raw envelopes, with
// leveled logging and counters instead of the ad-hoc prints this logic tends
// to accrete.
type Recoverer struct {
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewRecoverer creates a Recoverer. Both arguments may be nil.
func NewRecoverer(logger *zap.Logger, collector *metrics.Collector) *Recoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recoverer{logger: logger, metrics: collector}
}

// Recover returns blob unchanged when it carries no statusUpdate marker.
// Otherwise it splits the blob into envelope candidates and extracts each
// independently; candidate parse failures are logged and skipped, never
// fatal. If no candidate yields text it falls back to a lenient regex scan
// for "text" fields joined by single spaces, and as a last resort returns
// RecoveryErrorText.
func (r *Recoverer) Recover(blob string) string {
	if !strings.Contains(blob, StatusUpdateMarker) {
		return blob
	}

	candidates := Split(blob)
	r.metrics.RecordFallback("split")
	r.logger.Debug("relayed envelopes detected, splitting",
		zap.Int("blob_chars", len(blob)),
		zap.Int("candidates", len(candidates)),
	)

	var chunks []string
	for i, candidate := range candidates {
		text, matched := Extract(candidate)
		if !matched {
			r.metrics.RecordCandidate("failed")
			r.logger.Debug("candidate parse failed", zap.Int("index", i))
			continue
		}
		r.metrics.RecordCandidate("parsed")
		if text != "" {
			chunks = append(chunks, text)
		}
	}

	if len(chunks) > 0 {
		result := strings.TrimSpace(strings.Join(chunks, ""))
		r.logger.Debug("recovered text from envelopes",
			zap.Int("chunks", len(chunks)),
			zap.Int("chars", len(result)),
		)
		return result
	}

	if matches := textFieldPattern.FindAllStringSubmatch(blob, -1); len(matches) > 0 {
		r.metrics.RecordFallback("regex")
		values := make([]string, 0, len(matches))
		for _, m := range matches {
			values = append(values, m[1])
		}
		r.logger.Warn("envelope split yielded nothing, used lenient text scan",
			zap.Int("fields", len(values)),
		)
		return strings.Join(values, " ")
	}

	r.metrics.RecordFallback("sentinel")
	r.logger.Warn("unable to recover any text from relayed envelopes",
		zap.Int("blob_chars", len(blob)),
	)
	return RecoveryErrorText
}
