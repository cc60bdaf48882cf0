// 日志初始化，所有进程共用同一套格式与级别选项
package logger

import (
	"fmt"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

var (
	// Levels 命令行可选的日志级别
	Levels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
)

// Setup 设置全局日志格式与级别
// 功能：统一设置logrus的easy formatter，输出形如 [module] [time] [level] msg
// 参数：level-日志级别名称，需为Levels中的键
// 返回：级别名称非法时返回错误
func Setup(level string) error {
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	l, ok := Levels[level]
	if !ok {
		return fmt.Errorf("log.level must be one of %v", lo.Keys(Levels))
	}
	logrus.SetLevel(l)
	return nil
}
