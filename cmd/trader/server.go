package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"kalshitrader/conf"
	"kalshitrader/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

// Router 加载路由，使用侧提供接口，实现侧需要实现该接口
type Router interface {
	Load(engine *gin.Engine)
}

// Lifecycle 随 HTTP 服务启停的后台组件（调度器、外部连接）
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop()
	Close() error
}

// Server 交易服务：先启动调度，再监听看板接口，退出时按相反顺序释放
type Server struct {
	config       *conf.Config
	app          Lifecycle
	routers      []Router
	pingInterval time.Duration
}

func NewServer(c *conf.Config, app Lifecycle, rs ...Router) *Server {
	return &Server{
		config:       c,
		app:          app,
		routers:      rs,
		pingInterval: time.Second,
	}
}

// Run 阻塞到 ctx 取消或收到 SIGINT/SIGTERM
func (s *Server) Run(ctx context.Context) error {
	// 设置gin启动模式，必须在创建gin实例之前
	if s.config.Mode != "" {
		gin.SetMode(s.config.Mode)
	}
	g := gin.New()
	for _, r := range s.routers {
		r.Load(g)
	}

	ln, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return multierr.Append(fmt.Errorf("listen on %s: %w", s.config.Listen, err), s.app.Close())
	}
	if err := s.app.Start(ctx); err != nil {
		_ = ln.Close()
		return multierr.Append(fmt.Errorf("start scheduler: %w", err), s.app.Close())
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           g,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()
	go s.selfCheck(ctx, pingURL(ln.Addr()))

	var runErr error
	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("serve on %s: %w", s.config.Listen, err)
		}
		s.app.Stop()
	case <-ctx.Done():
		logger.Info("server shutdown", logger.Pair("listen", s.config.Listen))
		// 先停调度再排空请求，不等待进行中的评估
		s.app.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("server shutdown: %w", err)
		}
	}

	runErr = multierr.Append(runErr, s.app.Close())
	logger.Info("server stopped", logger.Pair("listen", s.config.Listen))
	return runErr
}

func (s *Server) selfCheck(ctx context.Context, url string) {
	err := waitReady(ctx, url, s.config.MaxPingCount, s.pingInterval)
	if err == nil {
		logger.Info("server started", logger.Pair("listen", s.config.Listen))
		return
	}
	if ctx.Err() == nil {
		logger.Fatal("server no response", logger.Pair("url", url), logger.Err(err))
	}
}

// pingURL 监听地址可能是 :port 或 0.0.0.0，自检统一走 localhost
func pingURL(addr net.Addr) string {
	_, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/ping"
	}
	return "http://" + net.JoinHostPort("localhost", port) + "/ping"
}

// waitReady 轮询 /ping 直到返回 200
func waitReady(ctx context.Context, url string, maxCount int, interval time.Duration) error {
	client := &http.Client{Timeout: interval}
	for i := 1; i <= maxCount; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		logger.Infof("等待服务在线, 已尝试 %d 次，最多 %d 次", i, maxCount)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return fmt.Errorf("服务启动失败，%s", url)
}
