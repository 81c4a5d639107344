// Copyright 2026 billkhiz-bit
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// LimitConfig 单个 Provider 的限流配置
type LimitConfig struct {
	RequestsPerMinute float64 // 每分钟请求数，<=0 不限
	MaxConcurrent     int     // 最大并发请求数，<=0 不限
}

// RateLimiter Provider 维度的限流器：RPS + 并发控制
type RateLimiter struct {
	mu       sync.RWMutex
	limiters map[string]*providerLimiter
	defaults LimitConfig
}

type providerLimiter struct {
	requestLimiter *rate.Limiter
	semaphore      chan struct{}
}

// NewRateLimiter 创建限流器；defaults 应用于未单独配置的 Provider
func NewRateLimiter(configs map[string]LimitConfig, defaults LimitConfig) *RateLimiter {
	l := &RateLimiter{
		limiters: make(map[string]*providerLimiter),
		defaults: defaults,
	}
	for provider, config := range configs {
		l.limiters[provider] = newProviderLimiter(config)
	}
	return l
}

func newProviderLimiter(config LimitConfig) *providerLimiter {
	pl := &providerLimiter{}
	if config.RequestsPerMinute > 0 {
		rps := config.RequestsPerMinute / 60.0
		burst := int(rps * 2)
		if burst < 1 {
			burst = 1
		}
		pl.requestLimiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if config.MaxConcurrent > 0 {
		pl.semaphore = make(chan struct{}, config.MaxConcurrent)
	}
	return pl
}

// get 取 Provider 对应的 limiter，缺失时按默认配置懒创建
func (l *RateLimiter) get(provider string) *providerLimiter {
	l.mu.RLock()
	pl, ok := l.limiters[provider]
	l.mu.RUnlock()
	if ok {
		return pl
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if pl, ok = l.limiters[provider]; ok {
		return pl
	}
	pl = newProviderLimiter(l.defaults)
	l.limiters[provider] = pl
	return pl
}

// Wait 阻塞到允许发起一次请求；随 ctx 取消
func (l *RateLimiter) Wait(ctx context.Context, provider string) error {
	pl := l.get(provider)
	if pl.semaphore != nil {
		select {
		case pl.semaphore <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if pl.requestLimiter != nil {
		if err := pl.requestLimiter.Wait(ctx); err != nil {
			if pl.semaphore != nil {
				<-pl.semaphore
			}
			return err
		}
	}
	return nil
}

// Release 请求结束后释放并发额度
func (l *RateLimiter) Release(provider string) {
	pl := l.get(provider)
	if pl.semaphore != nil {
		select {
		case <-pl.semaphore:
		default:
		}
	}
}
