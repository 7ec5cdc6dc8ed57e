package cmd

import (
	"fmt"

	"mediagate/core/cleanup"
	"mediagate/repository"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "删除引用了不存在文件的专辑和歌曲记录",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := cleanup.NewService(repository.NewAlbumRepository(a.db), a.store, a.cache)
		report, err := svc.CleanupOrphans(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("专辑: 检查 %d, 删除 %d\n", report.AlbumsChecked, report.AlbumsRemoved)
		fmt.Printf("歌曲: 检查 %d, 删除 %d\n", report.TracksChecked, report.TracksRemoved)
		for _, e := range report.Errors {
			fmt.Println("  错误:", e)
		}
		return report.Err()
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
