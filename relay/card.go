package relay

// Capability describes one capability advertised on an agent card.
type Capability struct {
	// Name is the unique identifier for this capability.
	Name string `json:"name"`
	// Description is a human-readable description of the capability.
	Description string `json:"description"`
}

// AgentCard is the capability document an agent serves at
// /.well-known/agent.json. Name and Description are the only fields callers
// rely on; everything else is advisory.
type AgentCard struct {
	// Name is the unique identifier for this agent.
	Name string `json:"name"`
	// Description is a human-readable description of the agent's purpose.
	Description string `json:"description"`
	// URL is the base endpoint where this agent can be reached.
	URL string `json:"url,omitempty"`
	// Version is the agent's version string.
	Version string `json:"version,omitempty"`
	// Capabilities lists what this agent offers.
	Capabilities []Capability `json:"capabilities,omitempty"`
	// Metadata holds extra key-value pairs for extensibility.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewAgentCard creates an AgentCard with the required fields.
func NewAgentCard(name, description, url, version string) *AgentCard {
	return &AgentCard{
		Name:        name,
		Description: description,
		URL:         url,
		Version:     version,
	}
}

// AddCapability appends a capability to the card.
func (c *AgentCard) AddCapability(name, description string) *AgentCard {
	c.Capabilities = append(c.Capabilities, Capability{Name: name, Description: description})
	return c
}

// SetMetadata sets a metadata key-value pair.
func (c *AgentCard) SetMetadata(key, value string) *AgentCard {
	if c.Metadata == nil {
		c.Metadata = make(map[string]string)
	}
	c.Metadata[key] = value
	return c
}

// Validate checks that the card carries the fields discovery consumers need.
func (c *AgentCard) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if c.Description == "" {
		return ErrMissingDescription
	}
	return nil
}
