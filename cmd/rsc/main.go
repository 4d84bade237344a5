/*
 * @Author: kamalyes 501893067@qq.com
 * @Date: 2026-10-16 20:11:37
 * @LastEditors: kamalyes 501893067@qq.com
 * @LastEditTime: 2026-10-19 14:02:26
 * @FilePath: \go-rsc\cmd\rsc\main.go
 * @Description: rsc 命令行入口
 *
 * Copyright (c) 2026 by kamalyes, All Rights Reserved.
 */
package main

import (
	"fmt"
	"os"

	"github.com/kamalyes/go-rsc"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "rsc",
	Short:         "断线自动重连的 WebSocket 客户端",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "打印版本号",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "rsc", rsc.Version)
	},
}

func init() {
	rootCmd.AddCommand(newConnectCmd())
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
