package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sol-volume-bot/internal/api"
	"sol-volume-bot/internal/interfaces"
	"sol-volume-bot/internal/types"
)

const defaultBaseURL = "https://quote-api.jup.ag/v6"

// Venue is the Jupiter v6 aggregator client.
type Venue struct {
	client  *api.Client
	baseURL string
}

var _ interfaces.SwapVenue = (*Venue)(nil)

func New() *Venue {
	return NewWithBaseURL(defaultBaseURL)
}

func NewWithBaseURL(baseURL string) *Venue {
	return &Venue{
		client: api.NewClient(
			api.WithTimeout(30*time.Second),
			api.WithHeader("Accept", "application/json"),
		),
		baseURL: baseURL,
	}
}

type quoteResponse struct {
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
	Error      string `json:"error"`
}

// Quote fetches an executable route for swapping amount of inputMint into
// outputMint. amount is in the input mint's smallest unit.
func (v *Venue) Quote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (*types.SwapQuote, error) {
	q := url.Values{}
	q.Set("inputMint", inputMint)
	q.Set("outputMint", outputMint)
	q.Set("amount", strconv.FormatUint(amount, 10))
	q.Set("slippageBps", strconv.Itoa(slippageBps))

	resp, err := v.client.GET(ctx, v.baseURL+"/quote?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("jupiter quote: status %d: %s", resp.StatusCode, resp.String())
	}

	var parsed quoteResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, fmt.Errorf("jupiter quote: parse: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("jupiter quote: %s", parsed.Error)
	}

	inAmount, err := strconv.ParseUint(parsed.InAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: inAmount %q: %w", parsed.InAmount, err)
	}
	outAmount, err := strconv.ParseUint(parsed.OutAmount, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("jupiter quote: outAmount %q: %w", parsed.OutAmount, err)
	}

	return &types.SwapQuote{
		InputMint:   parsed.InputMint,
		OutputMint:  parsed.OutputMint,
		InAmount:    inAmount,
		OutAmount:   outAmount,
		SlippageBps: slippageBps,
		Raw:         json.RawMessage(resp.Body),
	}, nil
}

type swapRequest struct {
	QuoteResponse    json.RawMessage `json:"quoteResponse"`
	UserPublicKey    string          `json:"userPublicKey"`
	WrapAndUnwrapSol bool            `json:"wrapAndUnwrapSol"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
	Error           string `json:"error"`
}

// BuildSwapTransaction exchanges the quote for a serialized unsigned
// transaction payable by signerAddress. SOL is wrapped and unwrapped
// automatically so workers only ever hold native balance.
func (v *Venue) BuildSwapTransaction(ctx context.Context, quote *types.SwapQuote, signerAddress string) ([]byte, error) {
	req := swapRequest{
		QuoteResponse:    quote.Raw,
		UserPublicKey:    signerAddress,
		WrapAndUnwrapSol: true,
	}
	resp, err := v.client.POST(ctx, v.baseURL+"/swap", req)
	if err != nil {
		return nil, fmt.Errorf("jupiter swap: %w", err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("jupiter swap: status %d: %s", resp.StatusCode, resp.String())
	}

	var parsed swapResponse
	if err := resp.ParseJSON(&parsed); err != nil {
		return nil, fmt.Errorf("jupiter swap: parse: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("jupiter swap: %s", parsed.Error)
	}
	if parsed.SwapTransaction == "" {
		return nil, fmt.Errorf("jupiter swap: empty transaction in response")
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.SwapTransaction)
	if err != nil {
		return nil, fmt.Errorf("jupiter swap: decode transaction: %w", err)
	}
	return raw, nil
}
