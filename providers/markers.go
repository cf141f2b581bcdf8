package providers

import (
	"regexp"

	"go.uber.org/zap"
)

// IndexRange is a half-open [Start,End) byte range into a transcript.
type IndexRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var (
	hostHeaderRe      = regexp.MustCompile(hostHeaderPattern)
	headerSeparatorRe = regexp.MustCompile(`\r\n\r\n|\n\n`)
)

// FindHostHeaderRange locates the Host header in the sent transcript.
// Returns false when the transcript contains no host header.
func FindHostHeaderRange(sent []byte) (IndexRange, bool) {
	loc := hostHeaderRe.FindIndex(sent)
	if loc == nil {
		return IndexRange{}, false
	}
	return IndexRange{Start: loc[0], End: loc[1]}, true
}

// FindFieldRanges resolves a provider's field markers against the received
// transcript and returns the byte ranges to commit and disclose. Markers
// that do not match are skipped: a transcript is allowed to omit optional
// fields, and disclosure of an absent field is simply not requested.
func FindFieldRanges(received []byte, p Provider) []IndexRange {
	tpl, ok := registry[p]
	if !ok {
		return nil
	}

	headerLen, body := splitResponse(received)

	var ranges []IndexRange
	for _, marker := range tpl.markers {
		switch {
		case marker.Regex != "":
			re, err := regexp.Compile(marker.Regex)
			if err != nil {
				logger.Warn("invalid field marker regex",
					zap.String("marker", marker.Name),
					zap.Error(err))
				continue
			}
			loc := re.FindIndex(body)
			if loc == nil {
				continue
			}
			ranges = append(ranges, IndexRange{
				Start: headerLen + loc[0],
				End:   headerLen + loc[1],
			})
			logger.Debug("resolved field marker",
				zap.String("marker", marker.Name),
				zap.Int("start", headerLen+loc[0]),
				zap.Int("end", headerLen+loc[1]))

		case marker.JSONPath != "":
			found, err := jsonValueRanges(body, marker.JSONPath)
			if err != nil {
				logger.Debug("jsonpath marker did not resolve",
					zap.String("marker", marker.Name),
					zap.Error(err))
				continue
			}
			for _, r := range found {
				ranges = append(ranges, IndexRange{
					Start: headerLen + r.Start,
					End:   headerLen + r.End,
				})
			}
		}
	}
	return ranges
}

// splitResponse separates an HTTP response transcript into its header
// section and body, returning the header length and the body bytes. When no
// separator is found the whole transcript is treated as body.
func splitResponse(response []byte) (int, []byte) {
	loc := headerSeparatorRe.FindIndex(response)
	if loc == nil {
		return 0, response
	}
	return loc[1], response[loc[1]:]
}
