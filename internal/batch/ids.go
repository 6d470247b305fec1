package batch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseIDs parses a parameter that can be either a single id or an array of ids.
// Ids may be JSON numbers or numeric strings, and a string holding a JSON array
// is accepted too.
func ParseIDs(param interface{}, paramName string) ([]int64, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	switch v := param.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		if strings.HasPrefix(s, "[") {
			var items []interface{}
			if err := json.Unmarshal([]byte(s), &items); err != nil {
				return nil, fmt.Errorf("%s is not a valid JSON array: %w", paramName, err)
			}
			return ParseIDs(items, paramName)
		}
		id, err := parseID(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", paramName, err)
		}
		return []int64{id}, nil
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result := make([]int64, 0, len(v))
		for i, item := range v {
			id, err := parseID(item)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", paramName, i, err)
			}
			result = append(result, id)
		}
		return result, nil
	default:
		id, err := parseID(v)
		if err != nil {
			return nil, fmt.Errorf("%s must be an id or array of ids", paramName)
		}
		return []int64{id}, nil
	}
}

func parseID(v interface{}) (int64, error) {
	var id int64
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer id", x)
		}
		id = int64(x)
	case int:
		id = int64(x)
	case int64:
		id = x
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer id", x.String())
		}
		id = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer id", x)
		}
		id = n
	default:
		return 0, fmt.Errorf("unsupported id type %T", v)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id must be positive, got %d", id)
	}
	return id, nil
}

// Summary is the outcome of a batched write, as reported to MCP clients.
type Summary struct {
	Requested int     `json:"requested"`
	Applied   int     `json:"applied"`
	IDs       []int64 `json:"ids,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// NewSummary builds a Summary from the result of a batched write. A nil err
// means every requested record was applied.
func NewSummary(requested int, ids []int64, err error) Summary {
	s := Summary{Requested: requested, IDs: ids}
	if err != nil {
		s.Applied = Applied(err)
		s.Error = err.Error()
	} else {
		s.Applied = requested
	}
	return s
}

// Format returns the summary as indented JSON.
func (s Summary) Format() string {
	jsonBytes, _ := json.MarshalIndent(s, "", "  ")
	return string(jsonBytes)
}
