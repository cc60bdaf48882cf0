package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/signal-testbed/clock"
	"github.com/tsinghua-fib-lab/signal-testbed/detector"
	"github.com/tsinghua-fib-lab/signal-testbed/statevector"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/config"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/logger"
)

const (
	selfName = "detector" // 本程序在测试平台中的名字
)

var (
	// 配置文件路径，文件不存在时使用默认配置
	configPath = flag.String("config", "config.yml", "config file path")
	// 状态RPC监听地址，设置为空则不提供RPC
	statusAddr = flag.String("listen", "", "status RPC listening address (empty means disabled), e.g. :51102")
	// syncer地址，为空则独立运行
	syncerAddr = flag.String("syncer", "", "syncer address (empty means standalone mode)")
	logLevel   = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", selfName)
)

func main() {
	flag.Parse()
	if err := logger.Setup(*logLevel); err != nil {
		log.Panic(err)
	}
	c, err := config.Load(*configPath)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	mode, err := statevector.ParseMode(c.Detector.Mode)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("using agent address %s", c.Agent.Addr())

	clk := clock.New(clock.DefaultDT)
	if *statusAddr != "" {
		sidecar := syncer.NewSidecar(selfName, *statusAddr, *syncerAddr)
		clk.Register(sidecar)
		go func() {
			if err := sidecar.Serve(); err != nil {
				log.Errorf("status RPC stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := detector.NewClient(detector.Options{
		Addr:     c.Agent.Addr(),
		Mode:     mode,
		Interval: c.Detector.Interval,
		Clock:    clk,
	})
	if err := client.Run(ctx); err != nil {
		log.Errorf("detector stopped: %v", err)
	}
}
