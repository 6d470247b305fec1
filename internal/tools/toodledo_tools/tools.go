package toodledo_tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/toodledo/internal/codec"
	"github.com/teemow/toodledo/internal/server"
	"github.com/teemow/toodledo/internal/toodledo"
	"github.com/teemow/toodledo/internal/tools/common"
)

const accountDescription = "Account name (default: 'default'). Used to manage multiple Toodledo accounts."

// RegisterToodledoTools registers all Toodledo tools with the MCP server.
// Tools that change data are skipped when readOnly is set.
func RegisterToodledoTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if s == nil || sc == nil {
		return fmt.Errorf("mcp server and server context are required")
	}

	for _, register := range []func(*mcpserver.MCPServer, *server.ServerContext, bool){
		registerAccountTools,
		registerTaskTools,
		registerFolderTools,
		registerContextTools,
	} {
		register(s, sc, readOnly)
	}
	return nil
}

// addTool registers handler under the tool's name with instrumentation.
func addTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, handler common.ToolHandler) {
	s.AddTool(tool, mcpserver.ToolHandlerFunc(common.InstrumentedToolHandler(tool.Name, sc, handler)))
}

// clientFromArgs returns the client of the account named in args.
func clientFromArgs(sc *server.ServerContext, args map[string]interface{}) (*toodledo.Client, string, error) {
	account := common.GetAccountFromArgs(args)
	client, err := sc.ClientForAccount(account)
	if err != nil {
		return nil, account, err
	}
	return client, account, nil
}

// parseTime accepts RFC 3339 timestamps, YYYY-MM-DD dates and unix seconds.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := codec.ParseDate(s); err == nil {
		return d.Noon(), nil
	}
	var unix int64
	if _, err := fmt.Sscan(s, &unix); err == nil && unix > 0 {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%q is not an RFC 3339 time, YYYY-MM-DD date or unix timestamp", s)
}

// decodeRecords decodes a tool argument holding one record, an array of
// records, or a JSON string of either.
func decodeRecords[E any](param interface{}, paramName string) ([]E, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var data []byte
	if s, ok := param.(string); ok {
		data = []byte(strings.TrimSpace(s))
	} else {
		var err error
		if data, err = json.Marshal(param); err != nil {
			return nil, fmt.Errorf("%s: %w", paramName, err)
		}
	}
	if len(data) > 0 && data[0] == '{' {
		data = append(append([]byte{'['}, data...), ']')
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var records []E
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%s is not a valid record list: %w", paramName, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", paramName)
	}
	return records, nil
}

func taskIDs(tasks []toodledo.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		if id, ok := t.ID.Get(); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func taskTitles(tasks []toodledo.Task) []string {
	titles := make([]string, 0, len(tasks))
	for _, t := range tasks {
		if title, ok := t.Title.Get(); ok {
			titles = append(titles, title)
		}
	}
	return titles
}
