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

package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"

	apihttp "github.com/billkhiz-bit/desktop-automation-agent/internal/api/http"
	"github.com/billkhiz-bit/desktop-automation-agent/internal/api/http/middleware"
)

// App API 服务应用
type App struct {
	bootstrap *Bootstrap
	hertz     *server.Hertz
}

// NewApp 创建 API 服务应用
func NewApp(b *Bootstrap) *App {
	return &App{bootstrap: b}
}

// Run 启动 HTTP 服务；阻塞直到服务退出
func (a *App) Run() error {
	cfg := a.bootstrap.Config

	// 把 Hertz 框架日志并入统一的 slog 输出
	levelVar := &slog.LevelVar{}
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		levelVar.Set(slog.LevelDebug)
	case "warn":
		levelVar.Set(slog.LevelWarn)
	case "error":
		levelVar.Set(slog.LevelError)
	default:
		levelVar.Set(slog.LevelInfo)
	}
	hlog.SetLogger(hertzslog.NewLogger(hertzslog.WithLevel(levelVar)))

	handler := apihttp.NewHandler(a.bootstrap.Orchestrator, cfg, a.bootstrap.Logger)
	router := apihttp.NewRouter(handler, middleware.NewMiddleware())
	router.SetMetricsEnabled(cfg.Monitoring.Prometheus.Enable)

	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	a.hertz = router.Build(addr)

	a.bootstrap.Logger.Info("API 服务启动", "addr", addr)
	return a.hertz.Run()
}

// Shutdown 优雅关闭 HTTP 服务
func (a *App) Shutdown(ctx context.Context) error {
	if a.hertz == nil {
		return nil
	}
	return a.hertz.Shutdown(ctx)
}
