package cmd

import (
	"AuthQ/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动AuthQ服务器",
	Long:  `启动AuthQ的HTTP服务器，提供用户认证API服务`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
