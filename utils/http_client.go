package utils

import (
	"net/http"
	"time"
)

// NewHTTPClient vraća klijenta sa timeout-om za pozive ka eksternim servisima.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
	}
}
