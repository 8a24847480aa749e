package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"AuthQ/config"
	"AuthQ/core/sms"
	"AuthQ/logger"
	"AuthQ/mq"

	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "启动短信任务worker",
	Long:  `消费后台队列中的短信任务并调用阿里云短信网关下发`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		logger.InitLogger(logger.Config{
			Level:      cfg.LogLevel,
			OutputPath: cfg.LogPath,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		})

		client, err := sms.NewClient(cfg)
		if err != nil {
			logger.Fatal("短信客户端创建失败", logger.ErrorField(err))
		}

		conn, err := mq.Dial(cfg.AMQPURL)
		if err != nil {
			logger.Fatal("RabbitMQ连接失败", logger.ErrorField(err))
		}
		defer conn.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		logger.Info("短信worker启动", logger.String("queue", mq.SMSQueue))

		err = mq.ConsumeSMS(ctx, conn, func(job mq.SMSJob) error {
			resp, err := client.Send(job.Phone, job.SignName, job.TemplateCode, job.TemplateParams)
			if err != nil {
				return err
			}
			logger.Info("短信发送成功",
				logger.String("phone", job.Phone),
				logger.String("template", job.TemplateCode),
				logger.String("bizId", resp.BizId))
			return nil
		})
		if err != nil && ctx.Err() == nil {
			logger.Fatal("短信worker异常退出", logger.ErrorField(err))
		}

		logger.Info("短信worker已停止")
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
