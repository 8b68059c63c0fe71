package httpclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stablecoin_monitor/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const upstreamDEXScreener = "dexscreener"

// DEXScreenerClient fetches trading pairs from the DEX Screener API.
type DEXScreenerClient interface {
	// GetTokenPairsByAddresses returns every pair that has one of tokenAddresses as base or quote.
	GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]PairData, error)
}

type dexScreenerClient struct {
	http                *fasthttp.Client
	baseURL             string
	timeout             time.Duration
	logger              *zap.Logger
	maxTokensPerRequest int
}

// NewDEXScreenerClient creates a DEXScreenerClient. The API accepts at most 30 addresses per
// call, which is also the default for maxTokensPerRequest.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, logger *zap.Logger, maxTokensPerRequest int) DEXScreenerClient {
	if maxTokensPerRequest <= 0 {
		maxTokensPerRequest = 30
	}
	return &dexScreenerClient{
		http:                &fasthttp.Client{Name: "stablecoin_monitor"},
		baseURL:             strings.TrimRight(baseURL, "/"),
		timeout:             timeout,
		logger:              logger.Named("dexscreener"),
		maxTokensPerRequest: maxTokensPerRequest,
	}
}

func (c *dexScreenerClient) GetTokenPairsByAddresses(ctx context.Context, dexscreenerChainID string, tokenAddresses []string) ([]PairData, error) {
	switch {
	case len(tokenAddresses) == 0:
		return nil, fmt.Errorf("no token addresses given")
	case len(tokenAddresses) > c.maxTokensPerRequest:
		return nil, fmt.Errorf("%d token addresses exceed the limit of %d per request", len(tokenAddresses), c.maxTokensPerRequest)
	}

	url := fmt.Sprintf("%s/tokens/v1/%s/%s", c.baseURL, dexscreenerChainID, strings.Join(tokenAddresses, ","))
	started := time.Now()
	body, err := c.get(ctx, url)
	metrics.ObserveUpstream(upstreamDEXScreener, started, err)
	if err != nil {
		c.logger.Error("DEX Screener request failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}

	pairs, err := decodePairs(body)
	if err != nil {
		c.logger.Error("Undecodable DEX Screener response", zap.String("url", url), zap.ByteString("body", body), zap.Error(err))
		return nil, fmt.Errorf("decode DEX Screener response: %w", err)
	}
	c.logger.Debug("DEX Screener pairs fetched",
		zap.String("chain", dexscreenerChainID),
		zap.Int("tokens", len(tokenAddresses)),
		zap.Int("pairs", len(pairs)))
	return pairs, nil
}

// get performs a GET bounded by the client timeout or the context deadline, whichever is sooner.
func (c *dexScreenerClient) get(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %d", url, code)
	}
	// resp is released on return
	return append([]byte(nil), resp.Body()...), nil
}

// decodePairs accepts both the bare array returned by /tokens/v1 and the older
// {"pairs": [...]} / {"pair": {...}} object shapes.
func decodePairs(body []byte) ([]PairData, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var pairs []PairData
		if err := json.Unmarshal(body, &pairs); err != nil {
			return nil, err
		}
		return pairs, nil
	}

	var wrapped DEXTokenPair
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, err
	}
	pairs := wrapped.Pairs
	if wrapped.Pair != nil {
		pairs = append(pairs, *wrapped.Pair)
	}
	return pairs, nil
}
