package encoder

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// infinityProvider drives a michaelfeil/infinity server, which is the usual
// way to serve OpenCLIP-family models behind an HTTP API. Text goes through
// the OpenAI-compatible /embeddings route (use the "openai" provider for
// that); this provider covers the image route, which accepts data URIs.
type infinityConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"api_key"`
}

type infinityProvider struct {
	baseURL string
	apiKey  string
}

type infinityImageRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type infinityEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *infinityProvider) Name() string {
	return "infinity"
}

func (p *infinityProvider) EmbedImages(ctx context.Context, model string, images [][]byte) ([][]float32, error) {
	if p.baseURL == "" {
		return nil, ErrUnavailable
	}
	input := make([]string, 0, len(images))
	for _, img := range images {
		mime := http.DetectContentType(img)
		input = append(input, "data:"+mime+";base64,"+base64.StdEncoding.EncodeToString(img))
	}
	endpoint := strings.TrimRight(p.baseURL, "/") + "/embeddings_image"
	data, err := json.Marshal(infinityImageRequest{Model: model, Input: input})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("infinity request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out infinityEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Data) != len(images) {
		return nil, fmt.Errorf("infinity returned %d embeddings for %d inputs", len(out.Data), len(images))
	}
	sort.Slice(out.Data, func(i, j int) bool { return out.Data[i].Index < out.Data[j].Index })
	vectors := make([][]float32, 0, len(out.Data))
	for _, item := range out.Data {
		vectors = append(vectors, item.Embedding)
	}
	return vectors, nil
}

func createInfinityImageFactory(args interface{}) (IImageProvider, error) {
	cfg := &infinityConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("infinity base_url is required")
	}
	provider := &infinityProvider{
		baseURL: strings.TrimSpace(cfg.BaseURL),
		apiKey:  strings.TrimSpace(cfg.APIKey),
	}
	return provider, nil
}

func init() {
	RegisterImage("infinity", createInfinityImageFactory)
}
