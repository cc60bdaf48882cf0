package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/signal-testbed/agent"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/config"
	"github.com/tsinghua-fib-lab/signal-testbed/utils/logger"
)

var (
	configPath = flag.String("config", "config.yml", "config file path")
	logLevel   = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "agent-main")
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
	policy, err := agent.NewPolicy(c.Policy.Name, c.Policy.Seed)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}

	a, err := agent.New(agent.Options{
		Addr:           c.Agent.Addr(),
		ControllerAddr: c.Controller.Addr(),
		Policy:         policy,
		MinGreen:       c.Policy.MinGreen,
		Yellow:         c.Policy.Yellow,
		PhaseLights:    c.Policy.PhaseLights,
	})
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	log.Infof("policy %s, forwarding lights to %s", c.Policy.Name, c.Controller.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.ListenAndServe(ctx); err != nil {
		log.Panicf("agent stopped: %v", err)
	}
}
