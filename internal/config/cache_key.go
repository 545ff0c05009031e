package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// LoginRateKey returns the counter key for login attempts from one source within one window.
func (r *CacheKeyStruct) LoginRateKey(sourceIP string, window int64) string {
	return fmt.Sprintf("ratelimit:login:%s:%d", sourceIP, window)
}

var CacheKey = NewCacheKeyStruct()
