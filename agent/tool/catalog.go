package tool

import (
	"fmt"
	"strings"

	contractx "github.com/jagoss/tesis-umpe-supermarket-stock-prediction/agent/contract"
)

// Catalog routes a decided action to the tool registered under its name.
// It is immutable after construction: tools are never added or removed
// mid-conversation, so concurrent turns may share one Catalog freely.
type Catalog struct {
	tools map[string]contractx.Tool
	order []string
}

func NewCatalog(tools ...contractx.Tool) (*Catalog, error) {
	c := &Catalog{tools: make(map[string]contractx.Tool, len(tools))}

	for _, t := range tools {
		if t == nil {
			return nil, fmt.Errorf("%w: nil tool", contractx.ErrValidation)
		}
		name := strings.TrimSpace(t.Name())
		if name == "" {
			return nil, fmt.Errorf("%w: tool with empty name", contractx.ErrValidation)
		}
		if _, exists := c.tools[name]; exists {
			return nil, fmt.Errorf("%w: duplicate tool name %q", contractx.ErrValidation, name)
		}
		c.tools[name] = t
		c.order = append(c.order, name)
	}

	return c, nil
}

// Select performs an exact-name lookup. A miss is a terminal ErrUnknownTool:
// mapping it to a default tool would mask a decider/catalog mismatch.
func (c *Catalog) Select(name string) (contractx.Tool, error) {
	t, ok := c.tools[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", contractx.ErrUnknownTool, name)
	}
	return t, nil
}

// Descriptors lists the catalog for the decider, in registration order.
func (c *Catalog) Descriptors() []contractx.ToolDescriptor {
	descriptors := make([]contractx.ToolDescriptor, 0, len(c.order))
	for _, name := range c.order {
		descriptors = append(descriptors, contractx.ToolDescriptor{
			Name:        name,
			Description: c.tools[name].Description(),
		})
	}
	return descriptors
}

func (c *Catalog) Len() int {
	return len(c.order)
}
