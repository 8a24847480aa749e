package cmd

import (
	"context"
	"fmt"
	"time"

	"AuthQ/config"
	"AuthQ/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "测试Redis连接",
	Long:  `连接Redis并执行一次读写删除，验证缓存服务可用`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		client, err := db.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		key := "authq:healthcheck"
		if err := client.Set(ctx, key, "ok", time.Minute).Err(); err != nil {
			return fmt.Errorf("set failed: %w", err)
		}
		val, err := client.Get(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("get failed: %w", err)
		}
		if val != "ok" {
			return fmt.Errorf("unexpected value: %s", val)
		}
		if err := client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("del failed: %w", err)
		}

		fmt.Printf("Redis OK (%s)\n", cfg.RedisAddr())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
