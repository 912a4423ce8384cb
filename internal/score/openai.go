// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"

	"github.com/pdiddy/digest-engine/internal/httputil"
)

// openaiEmbedBase is the OpenAI embeddings endpoint. Declared as a var so
// tests can substitute an httptest server.
var openaiEmbedBase = "https://api.openai.com/v1/embeddings"

const defaultEmbedModel = "text-embedding-3-small"

// EmbeddingOracle implements Oracle against the OpenAI embeddings API,
// scoring similarity as the cosine of the two embedding vectors.
// Embeddings are cached per text for the lifetime of the oracle, so the
// topic strings are embedded once per run rather than once per document.
type EmbeddingOracle struct {
	Client *http.Client
	APIKey string
	Model  string

	mu    sync.Mutex
	cache map[string][]float64
}

// NewEmbeddingOracle returns an oracle using the given HTTP client and
// API key. Model defaults to text-embedding-3-small when empty.
func NewEmbeddingOracle(client *http.Client, apiKey, model string) *EmbeddingOracle {
	if model == "" {
		model = defaultEmbedModel
	}
	return &EmbeddingOracle{
		Client: client,
		APIKey: apiKey,
		Model:  model,
		cache:  make(map[string][]float64),
	}
}

// Name returns the oracle identifier.
func (o *EmbeddingOracle) Name() string { return "openai_embeddings" }

// Similarity embeds both texts and returns their cosine similarity.
func (o *EmbeddingOracle) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := o.embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := o.embed(ctx, b)
	if err != nil {
		return 0, err
	}
	return cosine(va, vb), nil
}

func (o *EmbeddingOracle) embed(ctx context.Context, text string) ([]float64, error) {
	o.mu.Lock()
	if v, ok := o.cache[text]; ok {
		o.mu.Unlock()
		return v, nil
	}
	o.mu.Unlock()

	body, err := json.Marshal(embedRequest{Model: o.Model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("encoding embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiEmbedBase, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	resp, err := httputil.DoWithRetry(ctx, o.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("embeddings API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned HTTP %d", resp.StatusCode)
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("parsing embeddings response: %w", err)
	}
	if len(er.Data) == 0 || len(er.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings API returned no vector")
	}

	v := er.Data[0].Embedding
	o.mu.Lock()
	o.cache[text] = v
	o.mu.Unlock()
	return v, nil
}

// cosine returns the cosine similarity of two vectors, or 0 when either
// has zero norm or the lengths differ.
func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// OpenAI embeddings API JSON structures.
type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}
