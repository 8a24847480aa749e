package cmd

import (
	"fmt"
	"os"

	"AuthQ/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "authq",
	Short: "AuthQ is an authentication web backend.",
	Long:  `AuthQ 提供用户登录/注册 API 服务，短信通知通过后台队列异步下发`,
	Run: func(cmd *cobra.Command, args []string) {
		// 默认行为等同于 `authq server`
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
