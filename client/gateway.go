package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Gateway 远端 API 访问。token 为空表示匿名请求。
// out 为 nil 时忽略 data。
type Gateway interface {
	Get(ctx context.Context, token, path string, q url.Values, out any) error
	Post(ctx context.Context, token, path string, body, out any) error
}

// APIError 服务端返回的业务错误，原样透出
type APIError struct {
	Status int
	Code   int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Code, e.Msg)
}

// 与服务端 response 包保持一致的业务码
const (
	CodeSuccess          = 0
	CodeParamError       = 10001
	CodeUserNotFound     = 10002
	CodePasswordError    = 10003
	CodeTokenInvalid     = 10004
	CodePermissionDeny   = 10005
	CodeNotFound         = 10006
	CodeConflict         = 10007
	CodeAlreadyProcessed = 10008
	CodeInternalError    = 99999
)

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// HTTPGateway 通过 {code,msg,data} 信封访问 /api/v1 接口
type HTTPGateway struct {
	BaseURL string
	HTTP    *http.Client
}

// NewHTTPGateway baseURL 例如 http://localhost:6789/api/v1
func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGateway) Get(ctx context.Context, token, path string, q url.Values, out any) error {
	u := g.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return g.do(req, token, out)
}

func (g *HTTPGateway) Post(ctx context.Context, token, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return g.do(req, token, out)
}

func (g *HTTPGateway) do(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	hc := g.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Debug().Int("status", resp.StatusCode).Str("path", req.URL.Path).Msg("non-envelope response")
		return &APIError{Status: resp.StatusCode, Code: CodeInternalError, Msg: strings.TrimSpace(string(raw))}
	}
	if env.Code != CodeSuccess {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}
