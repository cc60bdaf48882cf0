package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/signal-testbed/controller"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/config"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/logger"
)

var (
	configPath = flag.String("config", "config.yml", "config file path")
	logLevel   = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "signal")
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
	log.Infof("using controller address %s", c.Controller.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := controller.NewServer(controller.Options{
		Addr:           c.Controller.Addr(),
		ReadBufferSize: c.Controller.ReadBuffer,
		MaxHandlers:    c.Controller.MaxHandlers,
	})
	if err := s.ListenAndServe(ctx); err != nil {
		log.Panicf("controller stopped: %v", err)
	}
}
