package controller

import "github.com/sirupsen/logrus"

// log 信号机模块的日志记录器
var log = logrus.WithField("module", "controller")
