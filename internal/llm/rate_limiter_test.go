package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_UnlimitedByDefault(t *testing.T) {
	l := NewRateLimiter(nil, LimitConfig{})
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(ctx, "ollama"))
		l.Release("ollama")
	}
}

func TestRateLimiter_MaxConcurrent(t *testing.T) {
	l := NewRateLimiter(map[string]LimitConfig{
		"openai": {MaxConcurrent: 1},
	}, LimitConfig{})

	require.NoError(t, l.Wait(context.Background(), "openai"))

	// 第二个并发请求应被卡住，直到第一个释放
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx, "openai")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	l.Release("openai")
	require.NoError(t, l.Wait(context.Background(), "openai"))
	l.Release("openai")
}

func TestRateLimiter_RequestsPerMinute(t *testing.T) {
	// 60 rpm = 1 rps，burst 2：第三个请求要等
	l := NewRateLimiter(map[string]LimitConfig{
		"anthropic": {RequestsPerMinute: 60},
	}, LimitConfig{})

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "anthropic"))
	require.NoError(t, l.Wait(ctx, "anthropic"))

	shortCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(shortCtx, "anthropic")
	assert.Error(t, err, "burst exhausted, third request should block")
}

func TestRateLimiter_PerProviderIsolation(t *testing.T) {
	l := NewRateLimiter(map[string]LimitConfig{
		"openai": {MaxConcurrent: 1},
	}, LimitConfig{})

	require.NoError(t, l.Wait(context.Background(), "openai"))
	// 其他 Provider 不受 openai 并发额度影响
	require.NoError(t, l.Wait(context.Background(), "gemini"))
	l.Release("openai")
	l.Release("gemini")
}

func TestRateLimitedClient_PassThrough(t *testing.T) {
	inner := &staticClient{reply: "ok"}
	c := NewRateLimitedClient(inner, NewRateLimiter(nil, LimitConfig{}))

	out, err := c.Generate("p", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, inner.Model(), c.Model())
	assert.Equal(t, inner.Provider(), c.Provider())
}

func TestRateLimitedClient_NilLimiter(t *testing.T) {
	c := NewRateLimitedClient(&staticClient{reply: "ok"}, nil)
	out, err := c.GenerateWithContext(context.Background(), "p", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

// staticClient 测试用固定回复客户端
type staticClient struct {
	reply string
}

func (s *staticClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return s.reply, nil
}

func (s *staticClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	return s.reply, nil
}

func (s *staticClient) Model() string    { return "static" }
func (s *staticClient) Provider() string { return "static" }
