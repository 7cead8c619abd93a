package mcpserver

import "context"

// Handler executes a tool call. The returned value is serialized as the
// tool's text content; a non-nil error produces an isError result
// rather than a protocol failure.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool describes a callable tool exposed over the MCP endpoint.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Handler     Handler
}

// toolDescriptor is the wire form returned by tools/list.
type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// contentBlock is a single element of a tool result's content array.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// toolResult is the wire form returned by tools/call.
type toolResult struct {
	Content []contentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

func textResult(text string, isErr bool) toolResult {
	return toolResult{
		Content: []contentBlock{{Type: "text", Text: text}},
		IsError: isErr,
	}
}
