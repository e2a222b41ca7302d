package ui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/xdamman/stripe-mcp-fridge/internal/cli/types"
)

var (
	// Tree node styles
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)  // Cyan
	paramStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))             // Blue
	keyStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))            // Gray
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true) // Pink

	// Summary box style
	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1)
)

// RenderToolTree renders the tool catalog as a tree
func RenderToolTree(tools []types.ToolDefinition) string {
	if len(tools) == 0 {
		emptyMsg := keyStyle.Render("No tools available")
		return emptyMsg
	}

	var output string
	for i, t := range tools {
		output += buildToolNode(t).String()
		if i < len(tools)-1 {
			output += "\n"
		}
	}

	return output
}

// buildToolNode creates a tree node for a tool
func buildToolNode(t types.ToolDefinition) *tree.Tree {
	toolTree := tree.New().Root(toolStyle.Render(t.Name))

	if t.Description != "" {
		toolTree.Child(formatKeyValue("Description:", t.Description))
	}

	params := schemaParameters(t.Parameters)
	if len(params) == 0 {
		toolTree.Child(keyStyle.Render("(no parameters)"))
		return toolTree
	}

	paramsTree := tree.New().Root(keyStyle.Render("Parameters:"))
	for _, p := range params {
		label := paramStyle.Render(p.name)
		if p.typ != "" {
			label += " " + keyStyle.Render(p.typ)
		}
		if p.required {
			label += " " + highlightStyle.Render("required")
		}
		if p.description != "" {
			label = fmt.Sprintf("%s  %s", label, keyStyle.Render(p.description))
		}
		paramsTree.Child(label)
	}
	toolTree.Child(paramsTree)

	return toolTree
}

// schemaParam is one parameter extracted from a tool's JSON Schema
type schemaParam struct {
	name        string
	typ         string
	description string
	required    bool
}

// schemaParameters extracts parameter entries from a JSON Schema object.
// Schemas the tool server hands out are object-shaped with a properties map.
func schemaParameters(schema map[string]interface{}) []schemaParam {
	if schema == nil {
		return nil
	}

	properties, ok := schema["properties"].(map[string]interface{})
	if !ok {
		return nil
	}

	requiredSet := make(map[string]bool)
	if required, ok := schema["required"].([]interface{}); ok {
		for _, r := range required {
			if name, ok := r.(string); ok {
				requiredSet[name] = true
			}
		}
	}

	var params []schemaParam
	for name, raw := range properties {
		p := schemaParam{name: name, required: requiredSet[name]}
		if prop, ok := raw.(map[string]interface{}); ok {
			if t, ok := prop["type"].(string); ok {
				p.typ = t
			}
			if d, ok := prop["description"].(string); ok {
				p.description = d
			}
		}
		params = append(params, p)
	}

	// Map iteration order is random
	sort.Slice(params, func(i, j int) bool { return params[i].name < params[j].name })

	return params
}

// formatKeyValue formats a key-value pair
func formatKeyValue(key, value string) string {
	return fmt.Sprintf("%s %s",
		keyStyle.Render(key),
		value,
	)
}

// RenderToolSummary renders a summary line for the catalog listing
func RenderToolSummary(count int) string {
	label := "tools"
	if count == 1 {
		label = "tool"
	}

	summary := fmt.Sprintf("Total: %s %s",
		highlightStyle.Render(fmt.Sprintf("%d", count)),
		keyStyle.Render(label),
	)

	return summaryStyle.Render(summary)
}
