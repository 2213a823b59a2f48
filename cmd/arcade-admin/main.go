// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"time"

	"github.com/go-arcade/arcade-admin/internal/engine/bootstrap"
	"github.com/go-arcade/arcade-admin/internal/engine/config"
	"github.com/go-arcade/arcade-admin/pkg/http/jwt"
	"github.com/go-arcade/arcade-admin/pkg/log"
	"github.com/go-arcade/arcade-admin/pkg/version"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "arcade-admin",
	Short: "arcade admin serves hierarchical role and data permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP api",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bootstrap 初始化应用
		app, cleanup, err := bootstrap.Bootstrap(configFile, initApp)
		if err != nil {
			return err
		}
		// 启动应用并等待退出信号
		bootstrap.Run(app, cleanup)
		return nil
	},
}

var rebuildAncestors bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, cleanup, err := initMigrator(configFile)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()
		return m.Run(ctx, rebuildAncestors)
	},
}

var tokenUserId uint64

// tokenCmd 为指定用户签发访问令牌，便于本地调试
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenUserId == 0 {
			return fmt.Errorf("--user is required")
		}
		conf, err := config.LoadConfigFile(configFile)
		if err != nil {
			return err
		}
		auth := conf.Http.Auth
		aToken, rToken, err := jwt.GenToken(tokenUserId, []byte(auth.SecretKey), auth.AccessExpire, auth.RefreshExpire)
		if err != nil {
			return err
		}
		log.Debugw("token issued", "userId", tokenUserId, "expire", auth.AccessExpire)
		fmt.Fprintf(cmd.OutOrStdout(), "access:  %s\nrefresh: %s\n", aToken, rToken)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "conf", "c", "conf.d/config.toml", "conf file path, e.g. -c ./conf.d/config.toml")
	migrateCmd.Flags().BoolVar(&rebuildAncestors, "rebuild-ancestors", false, "recompute every dept ancestor path after migrating")
	tokenCmd.Flags().Uint64Var(&tokenUserId, "user", 0, "user id the token is issued for")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, version.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
