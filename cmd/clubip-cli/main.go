// clubip-cli：在终端执行与 API 相同的 IPv4 查询
package main

import (
	"os"
	"path/filepath"

	"clubip-api/internal/cli"
	"clubip-api/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	logger.Setup()
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
