package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/nutlock/nutlock/cashu"
	"github.com/nutlock/nutlock/cashu/nuts/nut01"
	"github.com/nutlock/nutlock/cashu/nuts/nut02"
	"github.com/nutlock/nutlock/cashu/nuts/nut03"
	"github.com/nutlock/nutlock/cashu/nuts/nut06"
	"github.com/nutlock/nutlock/cashu/nuts/nut07"
)

func (m *Mint) GetMintInfo(ctx context.Context) (*nut06.MintInfo, error) {
	resp, err := m.get(ctx, m.url+"/v1/info")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var mintInfo nut06.MintInfo
	if err := decodeResponse(resp, &mintInfo); err != nil {
		return nil, err
	}
	return &mintInfo, nil
}

func (m *Mint) GetAllKeysets(ctx context.Context) (*nut02.GetKeysetsResponse, error) {
	resp, err := m.get(ctx, m.url+"/v1/keysets")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var keysetsRes nut02.GetKeysetsResponse
	if err := decodeResponse(resp, &keysetsRes); err != nil {
		return nil, err
	}
	return &keysetsRes, nil
}

func (m *Mint) GetKeysetById(ctx context.Context, id string) (*nut01.GetKeysResponse, error) {
	resp, err := m.get(ctx, m.url+"/v1/keys/"+id)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var keysetRes nut01.GetKeysResponse
	if err := decodeResponse(resp, &keysetRes); err != nil {
		return nil, err
	}
	return &keysetRes, nil
}

func (m *Mint) PostSwap(ctx context.Context, swapRequest nut03.PostSwapRequest) (*nut03.PostSwapResponse, error) {
	resp, err := m.httpPost(ctx, m.url+"/v1/swap", swapRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var swapResponse nut03.PostSwapResponse
	if err := decodeResponse(resp, &swapResponse); err != nil {
		return nil, err
	}
	return &swapResponse, nil
}

func (m *Mint) PostCheckProofState(ctx context.Context, stateRequest nut07.PostCheckStateRequest) (
	*nut07.PostCheckStateResponse, error) {

	resp, err := m.httpPost(ctx, m.url+"/v1/checkstate", stateRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var stateResponse nut07.PostCheckStateResponse
	if err := decodeResponse(resp, &stateResponse); err != nil {
		return nil, err
	}
	return &stateResponse, nil
}

func (m *Mint) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return m.do(req)
}

func (m *Mint) httpPost(ctx context.Context, url string, body any) (*http.Response, error) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return m.do(req)
}

func (m *Mint) do(req *http.Request) (*http.Response, error) {
	m.logger.Debug("mint request", slog.String("method", req.Method), slog.String("url", req.URL.String()))

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	return parse(resp)
}

func parse(response *http.Response) (*http.Response, error) {
	if response.StatusCode == http.StatusBadRequest {
		defer response.Body.Close()
		var errResponse cashu.Error
		err := json.NewDecoder(response.Body).Decode(&errResponse)
		if err != nil {
			return nil, fmt.Errorf("could not decode error response from mint: %v", err)
		}
		return nil, errResponse
	}

	if response.StatusCode != http.StatusOK {
		defer response.Body.Close()
		body, err := io.ReadAll(response.Body)
		if err != nil {
			return nil, err
		}
		return nil, &httpError{StatusCode: response.StatusCode, Body: string(body)}
	}

	return response, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("mint returned status %v: %s", e.StatusCode, e.Body)
}

func decodeResponse(resp *http.Response, v any) error {
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error reading response from mint: %v", err)
	}
	return nil
}
