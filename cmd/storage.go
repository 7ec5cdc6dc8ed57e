package cmd

import (
	"fmt"
	"sort"

	"mediagate/storage"

	"github.com/spf13/cobra"
)

var (
	storagePrefix    string
	storageStats     bool
	storageRecursive bool
)

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "对象存储桶查看",
	Long:  `查看对象存储桶中的文件，支持按前缀列出文件、递归显示目录结构和统计信息。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		fmt.Printf("对象存储配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			return err
		}
		if _, err := store.Authorize(ctx); err != nil {
			return fmt.Errorf("无法连接到对象存储: %w", err)
		}

		if storageStats {
			stats, err := store.Stats(ctx, storagePrefix)
			if err != nil {
				return err
			}
			fmt.Printf("\n存储桶: %s\n", stats.Bucket)
			fmt.Printf("文件总数: %d\n", stats.TotalObjects)
			fmt.Printf("总大小: %s\n", storage.FormatSize(stats.TotalSize))
			if !stats.LastModified.IsZero() {
				fmt.Printf("最后修改: %s\n", stats.LastModified.Format("2006-01-02 15:04:05"))
			}
			kinds := make([]string, 0, len(stats.ByKind))
			for kind := range stats.ByKind {
				kinds = append(kinds, kind)
			}
			sort.Strings(kinds)
			for _, kind := range kinds {
				fmt.Printf("  %-6s %d\n", kind, stats.ByKind[kind])
			}
			return nil
		}

		objects, err := store.List(ctx, storagePrefix, storageRecursive)
		if err != nil {
			return err
		}
		fmt.Printf("\n前缀 %q 下共 %d 个对象:\n", storagePrefix, len(objects))
		for _, obj := range objects {
			fmt.Printf("  %-60s %10s  %s\n", obj.Key, storage.FormatSize(obj.Size), obj.LastModified.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(storageCmd)

	storageCmd.Flags().StringVarP(&storagePrefix, "prefix", "p", "", "按前缀过滤文件")
	storageCmd.Flags().BoolVarP(&storageStats, "stats", "s", false, "显示存储桶统计信息")
	storageCmd.Flags().BoolVarP(&storageRecursive, "recursive", "r", false, "递归显示目录结构")

	storageCmd.Example = `  # 列出所有文件
  mediagate storage

  # 递归列出某个前缀下的文件
  mediagate storage -r -p "covers/"

  # 显示存储桶统计信息
  mediagate storage -s`
}
