package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/comparo/backend/internal/infrastructure/config"
	"github.com/comparo/backend/internal/infrastructure/secrets"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage locally stored secrets",
	Long:  `Secrets are encrypted in the server data directory and read at startup when the environment does not provide them.`,
}

var secretSetCmd = &cobra.Command{
	Use:   "set [name] [value]",
	Short: "Store a secret (supported: openai-key)",
	Args:  cobra.ExactArgs(2),
	// 只操作本地数据目录，不需要服务端
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runSecretSet,
}

// secretDataDir 为空时使用服务端数据目录
var secretDataDir string

// 命令行名称到存储键
var secretNames = map[string]string{
	"openai-key": secrets.OpenAIKeyName,
}

func init() {
	secretSetCmd.Flags().StringVar(&secretDataDir, "data-dir", "", "Data directory (defaults to the server data directory)")

	secretCmd.AddCommand(secretSetCmd)
	rootCmd.AddCommand(secretCmd)
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	key, ok := secretNames[args[0]]
	if !ok {
		return fmt.Errorf("unknown secret %q", args[0])
	}

	dir := secretDataDir
	if dir == "" {
		dir = config.GetDataDir()
	}
	store, err := secrets.NewStore(dir)
	if err != nil {
		return fmt.Errorf("failed to open secret store: %w", err)
	}
	if err := store.Set(key, args[1]); err != nil {
		return fmt.Errorf("failed to store secret: %w", err)
	}
	cmd.Printf("Stored %s in %s\n", args[0], dir)
	return nil
}
