package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by outbound API calls. The timeout has to outlast a
// Telegram long poll (30s) plus transfer time.
var HTTPClient = &http.Client{
	Timeout: 45 * time.Second,
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}
