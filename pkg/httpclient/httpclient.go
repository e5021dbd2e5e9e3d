package httpclient

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"familycal/pkg/config"
)

type HTTPClient interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client http.Client с пулом соединений и таймаутами из config.HTTPClient
type Client struct {
	http      *http.Client
	transport *http.Transport
	userAgent string
}

func NewClient(cfg config.HTTPClient) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		ExpectContinueTimeout: cfg.ExpectContinueTimeout,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		DisableKeepAlives:     !cfg.KeepAlives,
		ForceAttemptHTTP2:     true,
	}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Client{
		http:      &http.Client{Transport: transport, Timeout: cfg.ClientTimeout},
		transport: transport,
		userAgent: cfg.UserAgent,
	}
}

// Do выполняет запрос в рамках ctx, проставляя User-Agent и Accept, если их нет
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return c.http.Do(req)
}

// CloseIdle закрывает простаивающие соединения пула при остановке сервиса
func (c *Client) CloseIdle() {
	c.transport.CloseIdleConnections()
}
