package domain

// ModelPricing holds per-token prices as reported by the hosted backend.
// Self-hosted models report "0".
type ModelPricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// ModelDescriptor is the uniform description of an invocable model,
// normalized from either backend's list response
type ModelDescriptor struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	ContextLength int          `json:"contextLength"`
	Pricing       ModelPricing `json:"pricing"`

	// GGUF metadata, present only for self-hosted search results
	Quantization string   `json:"quantization,omitempty"`
	Author       string   `json:"author,omitempty"`
	Downloads    int      `json:"downloads,omitempty"`
	Likes        int      `json:"likes,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	IsSplit      bool     `json:"isSplit,omitempty"`
	Filename     string   `json:"filename,omitempty"`
}

// BackendConfig is the resolved invocation target for a single call.
// Resolution happens per call, not once at startup, so a live configuration
// change applies to models not yet started.
type BackendConfig struct {
	SelfHosted bool
	BaseURL    string
	APIKey     string
}
