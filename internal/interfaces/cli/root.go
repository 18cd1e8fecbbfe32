// Package cli 实现 kbctl：知识库管理命令行
package cli

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/comparo/backend/internal/infrastructure/config"
)

// 环境变量
const (
	EnvServerURL = "COMPARO_SERVER"
	defaultURL   = "http://localhost:19970"
)

var (
	serverURL  string
	adminToken string
	timeout    time.Duration

	// apiClient 在 PersistentPreRunE 中按参数创建
	apiClient *Client
)

var rootCmd = &cobra.Command{
	Use:           "kbctl",
	Short:         "Manage the comparator knowledge base",
	Long:          `kbctl ingests, lists and deletes knowledge base documents and checks system readiness.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if serverURL == "" {
			return errors.New("server URL is required")
		}
		apiClient = NewClient(serverURL, adminToken, timeout)
		return nil
	},
}

func init() {
	defaultServer := os.Getenv(EnvServerURL)
	if defaultServer == "" {
		defaultServer = defaultURL
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultServer, "Server base URL")
	rootCmd.PersistentFlags().StringVarP(&adminToken, "token", "t", os.Getenv(config.EnvAdminToken), "Admin token")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "Request timeout")
}

// Execute 运行根命令
func Execute() error {
	return rootCmd.Execute()
}
