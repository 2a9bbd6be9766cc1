package solana

import (
	"context"
	"fmt"

	"sol-volume-bot/internal/api"
	"sol-volume-bot/internal/types"
)

// getAssetResponse is the DAS getAsset shape, trimmed to the fields we read.
type getAssetResponse struct {
	Result struct {
		ID      string `json:"id"`
		Content struct {
			Metadata struct {
				Name   string `json:"name"`
				Symbol string `json:"symbol"`
			} `json:"metadata"`
			Links struct {
				Image string `json:"image"`
			} `json:"links"`
		} `json:"content"`
		TokenInfo struct {
			Decimals int    `json:"decimals"`
			Supply   uint64 `json:"supply"`
		} `json:"token_info"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// TokenInfo resolves mint metadata through the DAS getAsset method. Not every
// RPC provider serves DAS; providers are tried in order until one answers.
func (c *Client) TokenInfo(ctx context.Context, mint string) (*types.TokenInfo, error) {
	client := api.NewClient(api.WithLogging(false))
	body := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "token-info",
		"method":  "getAsset",
		"params":  map[string]string{"id": mint},
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		resp, err := client.POST(ctx, endpoint, body)
		if err != nil {
			lastErr = err
			continue
		}
		var out getAssetResponse
		if err := resp.ParseJSON(&out); err != nil {
			lastErr = err
			continue
		}
		if out.Error != nil {
			lastErr = fmt.Errorf("getAsset: %s", out.Error.Message)
			continue
		}
		if out.Result.ID == "" {
			lastErr = fmt.Errorf("getAsset: empty result for %s", mint)
			continue
		}
		return &types.TokenInfo{
			Name:     out.Result.Content.Metadata.Name,
			Symbol:   out.Result.Content.Metadata.Symbol,
			Decimals: uint8(out.Result.TokenInfo.Decimals),
			Supply:   out.Result.TokenInfo.Supply,
			LogoURI:  out.Result.Content.Links.Image,
		}, nil
	}
	return nil, fmt.Errorf("token info unavailable for %s: %w", mint, lastErr)
}
