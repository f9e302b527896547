package main

import (
	"context"
	"flag"
	"log"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"kalshitrader/cmd/trader"
	"kalshitrader/conf"
	"kalshitrader/internal/dao/query"
	"kalshitrader/internal/middleware"
	"kalshitrader/pkg/db"
	"kalshitrader/pkg/logger"
)

// 启动交易服务和看板接口

func main() {
	configPath := flag.String("config", "conf/config.yaml", "config file path")
	flag.Parse()

	// 加载配置文件
	if err := conf.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	appCfg := conf.AppConfig
	logger.InitLogger(&appCfg.Log, appCfg.AppName)

	// 金额字段以数字输出
	decimal.MarshalJSONWithoutQuotes = true

	// 初始化数据库
	datasource, err := db.Init(db.Config{
		Driver:    appCfg.Db.Driver,
		DSN:       appCfg.Db.DSN,
		User:      appCfg.Db.Username,
		Password:  appCfg.Db.Password,
		Host:      appCfg.Db.Host,
		Port:      appCfg.Db.Port,
		DBName:    appCfg.Db.DbName,
		SSLMode:   appCfg.Db.SSLMode,
		ParseTime: true,
	})
	if err != nil {
		logger.Fatal("init database failed", logger.Err(err))
	}
	if appCfg.Db.Migrate {
		if err := query.AutoMigrate(datasource); err != nil {
			logger.Fatal("auto migrate failed", logger.Err(err))
		}
	}

	ctx := context.Background()
	app, err := api.InitApp(ctx, &appCfg, datasource)
	if err != nil {
		logger.Fatal("init app failed", logger.Err(err))
	}

	// 创建并启动服务，退出时先停调度再关闭连接
	srv := api.NewServer(&appCfg, app, middleware.NewMiddleware(), app.Router())
	if err := multierr.Combine(srv.Run(ctx), db.Close()); err != nil {
		logger.Error("server exited with error", logger.Err(err))
	}
	_ = logger.Sync()
}
