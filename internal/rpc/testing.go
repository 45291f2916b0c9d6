package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool invokes one registered handler directly, bypassing the stdio
// transport — the same in-process shortcut the teacher's MCP package uses
// for fast handler tests.
func (s *Server) CallTool(name string, args map[string]any) (string, bool, error) {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return "", false, err
	}
	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      name,
			Arguments: argsJSON,
		},
	}

	var handler func(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error)
	switch name {
	case "read_symbol":
		handler = s.handleReadSymbol
	case "find_usages":
		handler = s.handleFindUsages
	case "call_hierarchy":
		handler = s.handleCallHierarchy
	case "repo_map":
		handler = s.handleRepoMap
	case "propagation_checklist":
		handler = s.handlePropagationChecklist
	case "slice":
		handler = s.handleSlice
	case "vector_search":
		handler = s.handleVectorSearch
	case "checkpoint_save":
		handler = s.handleCheckpointSave
	case "checkpoint_list":
		handler = s.handleCheckpointList
	case "checkpoint_delete":
		handler = s.handleCheckpointDelete
	case "checkpoint_compare":
		handler = s.handleCheckpointCompare
	case "inspect":
		handler = s.handleInspect
	default:
		return "", false, fmt.Errorf("unknown tool: %s", name)
	}

	res, err := handler(context.Background(), req)
	if err != nil {
		return "", false, err
	}
	text := ""
	if len(res.Content) > 0 {
		if tc, ok := res.Content[0].(*mcp.TextContent); ok {
			text = tc.Text
		}
	}
	return text, res.IsError, nil
}
