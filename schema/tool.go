package schema

import (
	"github.com/viant/mcp-protocol/schema"
)

// Descriptor holds the static metadata of the single tool a bridge instance
// advertises. It is built once from configuration and read-only thereafter.
type Descriptor struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Tool renders the descriptor as an MCP tool. Every invocation carries an
// action identifier plus an optional structured payload; additional argument
// keys are passed through to the webhook untouched.
func (d *Descriptor) Tool() schema.Tool {
	description := d.Description
	return schema.Tool{
		Name:        d.Name,
		Description: &description,
		InputSchema: schema.ToolInputSchema{
			Type: "object",
			Properties: schema.ToolInputSchemaProperties{
				"action": {
					"type":        "string",
					"description": "Short action identifier understood by the webhook (e.g. 'send_email').",
				},
				"payload": {
					"type":        "object",
					"description": "Details needed to execute the action.",
				},
			},
			Required: []string{"action"},
		},
	}
}
