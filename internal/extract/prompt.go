// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/messai-quality/pkg/types"
)

// extractionPromptTmpl is the prompt sent to the model for each abstract.
var extractionPromptTmpl = template.Must(template.New("extraction").Parse(`You are a bioelectrochemical systems research assistant. Read the following paper abstract and extract technical metadata.

Fields:
- system_type: one of "MFC" (microbial fuel cell), "MEC" (microbial electrolysis cell), "MDC" (microbial desalination cell), "MES" (microbial electrosynthesis), "BES" (other bioelectrochemical system), or null if not stated
- power_output: maximum power density in mW/m² as a number, converted if reported in other units, or null
- efficiency: coulombic efficiency in percent as a number, or null
- anode_materials: list of anode materials (e.g. "carbon cloth", "graphite brush")
- cathode_materials: list of cathode materials
- organism_types: list of microorganisms or inocula (e.g. "Geobacter sulfurreducens", "mixed culture")

Only report values stated in the abstract. Respond with a single JSON object with exactly these fields and no other text.

Example response:
{"system_type": "MFC", "power_output": 2400, "efficiency": 45.5, "anode_materials": ["graphite brush"], "cathode_materials": ["carbon cloth with Pt"], "organism_types": ["mixed culture"]}

Abstract:
{{.Abstract}}
`))

// DefaultOllamaURL is the default Ollama server address.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaBackend calls a local Ollama server to extract metadata from an
// abstract.
type OllamaBackend struct {
	// BaseURL is the server address; empty selects DefaultOllamaURL.
	BaseURL   string
	Model     string
	UserAgent string
	Client    *http.Client
}

// NewOllamaBackend builds a backend from the extraction settings.
func NewOllamaBackend(cfg types.ExtractionConfig) *OllamaBackend {
	return &OllamaBackend{
		BaseURL:   cfg.Endpoint,
		Model:     cfg.Model,
		UserAgent: cfg.UserAgent,
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// ollamaRequest is the request body for the Ollama generate API.
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

// ollamaResponse is the non-streaming response from the generate API.
type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Extract sends the extraction prompt for one abstract and decodes the
// model's JSON answer.
func (o *OllamaBackend) Extract(ctx context.Context, abstract string) (Metadata, error) {
	prompt, err := renderPrompt(abstract)
	if err != nil {
		return Metadata{}, fmt.Errorf("rendering prompt: %w", err)
	}

	bodyBytes, err := json.Marshal(ollamaRequest{
		Model:  o.Model,
		Prompt: prompt,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return Metadata{}, fmt.Errorf("marshaling request: %w", err)
	}

	base := strings.TrimRight(o.BaseURL, "/")
	if base == "" {
		base = DefaultOllamaURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/generate", bytes.NewReader(bodyBytes))
	if err != nil {
		return Metadata{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Metadata{}, fmt.Errorf("Ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return Metadata{}, fmt.Errorf("decoding Ollama response: %w", err)
	}
	if oResp.Error != "" {
		return Metadata{}, fmt.Errorf("Ollama error: %s", oResp.Error)
	}
	if strings.TrimSpace(oResp.Response) == "" {
		return Metadata{}, fmt.Errorf("Ollama returned an empty response")
	}

	var meta Metadata
	if err := json.Unmarshal([]byte(oResp.Response), &meta); err != nil {
		return Metadata{}, fmt.Errorf("parsing model JSON: %w", err)
	}
	return meta, nil
}

// renderPrompt executes the extraction prompt template for an abstract.
func renderPrompt(abstract string) (string, error) {
	var buf bytes.Buffer
	if err := extractionPromptTmpl.Execute(&buf, struct{ Abstract string }{Abstract: abstract}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
