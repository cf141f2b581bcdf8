package providers

import (
	"fmt"
	"strconv"
	"strings"

	gojson "github.com/coreos/go-json"
	jp "github.com/reclaimprotocol/jsonpathplus-go"
)

// jsonValueRanges resolves a JSONPath marker to exact byte ranges inside a
// JSON document:
// 1) Evaluate the JSONPath with jsonpathplus-go to get concrete node paths
// 2) Parse the document into a Node tree with byte offsets (coreos/go-json)
// 3) Walk the Node tree per result path and return the exact byte ranges
func jsonValueRanges(doc []byte, jsonPathExpr string) ([]IndexRange, error) {
	results, err := jp.Query(jsonPathExpr, string(doc))
	if err != nil {
		return nil, fmt.Errorf("JSONPath query failed: %v", err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("jsonPath not found")
	}

	var root gojson.Node
	if err := gojson.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("failed to parse JSON for offsets: %v", err)
	}

	ranges := make([]IndexRange, 0, len(results))
	for _, r := range results {
		node, err := walkNode(&root, pathSegments(r.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %v", r.Path, err)
		}
		// Node.Start/End are byte offsets into the original document; End is
		// inclusive, Go ranges are exclusive on end.
		start, end := node.Start, node.End+1
		if start < 0 || end > len(doc) || start > end {
			return nil, fmt.Errorf("invalid range computed for path %q: [%d,%d)", r.Path, start, end)
		}
		ranges = append(ranges, IndexRange{Start: start, End: end})
	}
	return ranges, nil
}

// pathSegments converts a JSONPath like $.a[1].b to segments ["a","1","b"].
func pathSegments(path string) []string {
	p := strings.TrimPrefix(path, "$")
	p = strings.TrimPrefix(p, ".")
	if p == "" {
		return nil
	}
	var segments []string
	var cur strings.Builder
	inBracket := false
	for _, r := range p {
		switch r {
		case '.':
			if !inBracket {
				if cur.Len() > 0 {
					segments = append(segments, cur.String())
					cur.Reset()
				}
				continue
			}
		case '[':
			if cur.Len() > 0 {
				segments = append(segments, cur.String())
				cur.Reset()
			}
			inBracket = true
			continue
		case ']':
			if inBracket {
				seg := strings.Trim(cur.String(), "'\"")
				cur.Reset()
				inBracket = false
				segments = append(segments, seg)
				continue
			}
		}
		cur.WriteRune(r)
	}
	if cur.Len() > 0 {
		segments = append(segments, cur.String())
	}
	return segments
}

// walkNode follows the given segments through a coreos/go-json Node tree.
func walkNode(node *gojson.Node, segments []string) (*gojson.Node, error) {
	cur := node
	for i, seg := range segments {
		switch v := cur.Value.(type) {
		case map[string]gojson.Node:
			next, ok := v[seg]
			if !ok {
				return nil, fmt.Errorf("object key %q not found at segment %d", seg, i)
			}
			cur = &next
		case []gojson.Node:
			idx, err := strconv.Atoi(seg)
			if err != nil {
				return nil, fmt.Errorf("invalid array index %q at segment %d", seg, i)
			}
			if idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("array index %d out of bounds at segment %d", idx, i)
			}
			cur = &v[idx]
		default:
			return nil, fmt.Errorf("cannot traverse into %T at segment %d", v, i)
		}
	}
	return cur, nil
}
