// Package deeplink 把推送/WS 通知里的 url 交给界面导航。
// 导航未就绪时只保留最后一个待跳转的 url。
package deeplink

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Navigator 真正执行跳转
type Navigator func(url string)

type Router struct {
	mu      sync.Mutex
	nav     Navigator
	pending string
}

func NewRouter() *Router {
	return &Router{}
}

// Handle 就绪则立即跳转，否则覆盖待跳转 url
func (r *Router) Handle(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	r.mu.Lock()
	nav := r.nav
	if nav == nil {
		if r.pending != "" {
			log.Debug().Str("dropped", r.pending).Str("url", url).Msg("deeplink pending replaced")
		}
		r.pending = url
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	nav(url)
}

// SetReady 安装导航并把待跳转 url 冲刷一次；nav 为 nil 表示重新进入未就绪
func (r *Router) SetReady(nav Navigator) {
	r.mu.Lock()
	r.nav = nav
	if nav == nil {
		r.mu.Unlock()
		return
	}
	url := r.pending
	r.pending = ""
	r.mu.Unlock()
	if url != "" {
		nav(url)
	}
}

// Pending 当前待跳转 url
func (r *Router) Pending() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// ParsePayload 从通知 payload 里取 url：先看顶层 url，再看 data.url
func ParsePayload(b []byte) (string, bool) {
	var p struct {
		URL  string `json:"url"`
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return "", false
	}
	if p.URL != "" {
		return p.URL, true
	}
	if p.Data.URL != "" {
		return p.Data.URL, true
	}
	return "", false
}
