package cmd

import (
	"fmt"

	"mediagate/db"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "创建或更新数据库表",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := db.Migrate(a.db); err != nil {
			return err
		}
		fmt.Println("数据库迁移完成")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
